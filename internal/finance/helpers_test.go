package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(amount string, t core.TransactionType, category string, when time.Time) core.Transaction {
	return core.Transaction{
		ID:       core.NewID(),
		Amount:   dec(amount),
		Type:     t,
		Category: category,
		Date:     when,
	}
}

// scenario is the two-transaction January 2024 ledger used across tests.
func scenario() []core.Transaction {
	return []core.Transaction{
		tx("100", core.Income, "Salary", date(2024, 1, 15)),
		tx("40", core.Expense, "Food", date(2024, 1, 20)),
	}
}
