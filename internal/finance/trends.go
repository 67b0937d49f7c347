package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendThreshold is the month-over-month change, in percent, beyond which a
// category counts as rising or falling.
const trendThreshold = 10.0

// SpendingTrend compares one expense category between the month containing
// now and the month before.
type SpendingTrend struct {
	Category  string          `json:"category"`
	ThisMonth decimal.Decimal `json:"thisMonth"`
	LastMonth decimal.Decimal `json:"lastMonth"`
	Change    float64         `json:"change"`
	Trend     Trend           `json:"trend"`
}

// ComputeSpendingTrends returns one entry per expense category seen in either
// month, sorted by this month's spend descending. Change is 0 when last month
// had no spend in the category.
func ComputeSpendingTrends(txs []core.Transaction, now time.Time) []SpendingTrend {
	cur := core.MonthRange(now)
	prev := core.MonthRange(cur.Start.AddDate(0, -1, 0))

	index := make(map[string]int)
	out := []SpendingTrend{}
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		inCur, inPrev := cur.Contains(tx.Date), prev.Contains(tx.Date)
		if !inCur && !inPrev {
			continue
		}
		key := core.CategoryKey(tx.Category)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, SpendingTrend{Category: core.DisplayCategory(tx.Category)})
		}
		if inCur {
			out[i].ThisMonth = out[i].ThisMonth.Add(tx.Amount)
		} else {
			out[i].LastMonth = out[i].LastMonth.Add(tx.Amount)
		}
	}

	for i := range out {
		t := &out[i]
		if t.LastMonth.IsPositive() {
			t.Change = percent(t.ThisMonth.Sub(t.LastMonth), t.LastMonth)
		}
		switch {
		case t.Change > trendThreshold:
			t.Trend = TrendUp
		case t.Change < -trendThreshold:
			t.Trend = TrendDown
		default:
			t.Trend = TrendStable
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ThisMonth.GreaterThan(out[j].ThisMonth)
	})
	return out
}
