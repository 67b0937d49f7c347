package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// LedgerRow is a transaction with the balance after it was applied.
type LedgerRow struct {
	core.Transaction
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// RunningBalance orders txs by date ascending and accumulates income minus
// expenses.
func RunningBalance(txs []core.Transaction) []LedgerRow {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rows := make([]LedgerRow, 0, len(sorted))
	balance := decimal.Zero
	for _, tx := range sorted {
		if tx.Type == core.Income {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
		rows = append(rows, LedgerRow{Transaction: tx, RunningBalance: balance})
	}
	return rows
}
