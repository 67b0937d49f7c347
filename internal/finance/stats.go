package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// QuickStats are the headline figures shown above the transaction list.
type QuickStats struct {
	WeekIncome    decimal.Decimal       `json:"weekIncome"`
	WeekExpenses  decimal.Decimal       `json:"weekExpenses"`
	WeekNet       decimal.Decimal       `json:"weekNet"`
	YearIncome    decimal.Decimal       `json:"yearIncome"`
	YearExpenses  decimal.Decimal       `json:"yearExpenses"`
	YearNet       decimal.Decimal       `json:"yearNet"`
	AverageAmount decimal.Decimal       `json:"averageAmount"`
	TopCategory   *core.CategorySummary `json:"topCategory,omitempty"`
	Count         int                   `json:"count"`
}

func ComputeQuickStats(txs []core.Transaction, now time.Time) QuickStats {
	weekRange, _ := core.PeriodRange(core.Weekly, now)
	yearRange, _ := core.PeriodRange(core.Yearly, now)
	week := ComputeTotals(FilterByRange(txs, weekRange))
	year := ComputeTotals(FilterByRange(txs, yearRange))

	s := QuickStats{
		WeekIncome:    week.Income,
		WeekExpenses:  week.Expenses,
		WeekNet:       week.Balance,
		YearIncome:    year.Income,
		YearExpenses:  year.Expenses,
		YearNet:       year.Balance,
		AverageAmount: decimal.Zero,
		Count:         len(txs),
	}
	if len(txs) > 0 {
		sum := decimal.Zero
		for _, tx := range txs {
			sum = sum.Add(tx.Amount)
		}
		s.AverageAmount = sum.Div(decimal.NewFromInt(int64(len(txs)))).Round(2)
	}
	if top := SummarizeByCategory(txs, core.Expense); len(top) > 0 {
		s.TopCategory = &top[0]
	}
	return s
}
