package finance

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type SortField string

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
)

// Query narrows and orders a transaction list. Zero values disable a filter;
// the default order is newest first.
type Query struct {
	Text      string
	Type      core.TransactionType
	Month     string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	SortBy    SortField
	Ascending bool
}

// Search applies q to txs and returns a new slice.
func Search(txs []core.Transaction, q Query) ([]core.Transaction, error) {
	src := txs
	if q.Month != "" {
		var err error
		if src, err = FilterByMonth(txs, q.Month); err != nil {
			return nil, err
		}
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]core.Transaction, 0, len(src))
	for _, tx := range src {
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if q.MinAmount != nil && tx.Amount.LessThan(*q.MinAmount) {
			continue
		}
		if q.MaxAmount != nil && tx.Amount.GreaterThan(*q.MaxAmount) {
			continue
		}
		if text != "" && !matchesText(tx, text) {
			continue
		}
		out = append(out, tx)
	}

	less := lessFunc(q.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out, nil
}

func matchesText(tx core.Transaction, text string) bool {
	if strings.Contains(strings.ToLower(tx.Description), text) ||
		strings.Contains(strings.ToLower(tx.Category), text) {
		return true
	}
	for _, tag := range tx.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	return false
}

func lessFunc(field SortField) func(a, b core.Transaction) bool {
	switch field {
	case SortByAmount:
		return func(a, b core.Transaction) bool { return a.Amount.LessThan(b.Amount) }
	case SortByCategory:
		return func(a, b core.Transaction) bool { return core.CategoryKey(a.Category) < core.CategoryKey(b.Category) }
	}
	return func(a, b core.Transaction) bool { return a.Date.Before(b.Date) }
}
