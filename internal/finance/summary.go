package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

// SummarizeByCategory groups transactions of type t by category and returns
// the totals sorted by descending amount. Categories are grouped by
// core.CategoryKey; each summary carries the first spelling seen.
func SummarizeByCategory(txs []core.Transaction, t core.TransactionType) []core.CategorySummary {
	index := make(map[string]int)
	var out []core.CategorySummary
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		key := core.CategoryKey(tx.Category)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.CategorySummary{Category: core.DisplayCategory(tx.Category)})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Count++
	}
	for i := range out {
		out[i].AvgAmount = out[i].Amount.Div(decimal.NewFromInt(int64(out[i].Count))).Round(2)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if out == nil {
		return []core.CategorySummary{}
	}
	return out
}

// SummarizeByMonth buckets transactions by YYYY-MM of their own date and
// returns the buckets in ascending month order.
func SummarizeByMonth(txs []core.Transaction) []core.MonthlyData {
	buckets := make(map[string]*core.MonthlyData)
	for _, tx := range txs {
		key := core.MonthKey(tx.Date)
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthlyData{Month: key}
			buckets[key] = b
		}
		switch tx.Type {
		case core.Income:
			b.Income = b.Income.Add(tx.Amount)
		case core.Expense:
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
	}
	out := make([]core.MonthlyData, 0, len(buckets))
	for _, b := range buckets {
		b.Balance = b.Income.Sub(b.Expenses)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// AvailableMonths lists the distinct month keys present, newest first.
func AvailableMonths(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	months := []string{}
	for _, tx := range txs {
		key := core.MonthKey(tx.Date)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Totals is the income, expense and net of a transaction set.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
	Count    int             `json:"count"`
}

func ComputeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	t.Count = len(txs)
	return t
}
