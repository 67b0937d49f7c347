package finance

import (
	"time"

	"fintrack/internal/core"
)

// AllMonths selects every transaction in FilterByMonth.
const AllMonths = "all"

// FilterByMonth restricts txs to the calendar month named by selector
// (YYYY-MM), judged on each transaction's own calendar date. The selector
// "all" returns txs unchanged. A malformed selector returns
// core.ErrInvalidMonthKey.
func FilterByMonth(txs []core.Transaction, selector string) ([]core.Transaction, error) {
	if selector == AllMonths {
		return txs, nil
	}
	if _, err := core.ParseMonthKey(selector, time.UTC); err != nil {
		return nil, err
	}
	out := []core.Transaction{}
	for _, tx := range txs {
		if core.MonthKey(tx.Date) == selector {
			out = append(out, tx)
		}
	}
	return out, nil
}

// FilterByRange keeps transactions dated within r.
func FilterByRange(txs []core.Transaction, r core.Range) []core.Transaction {
	out := []core.Transaction{}
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByType keeps transactions of type t.
func FilterByType(txs []core.Transaction, t core.TransactionType) []core.Transaction {
	out := []core.Transaction{}
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}
