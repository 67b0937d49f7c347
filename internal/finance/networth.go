package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// NetWorth totals assets against liabilities.
type NetWorth struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"netWorth"`
	// MonthlyDebtPayments is the sum of liability minimum payments.
	MonthlyDebtPayments decimal.Decimal `json:"monthlyDebtPayments"`
}

func ComputeNetWorth(assets []core.Asset, liabilities []core.Liability) NetWorth {
	var nw NetWorth
	for _, a := range assets {
		nw.Assets = nw.Assets.Add(a.Value)
	}
	for _, l := range liabilities {
		nw.Liabilities = nw.Liabilities.Add(l.Amount)
		nw.MonthlyDebtPayments = nw.MonthlyDebtPayments.Add(l.MinimumPayment)
	}
	nw.NetWorth = nw.Assets.Sub(nw.Liabilities)
	return nw
}

// RecordSnapshot adds today's net worth to history, replacing any entry from
// the same calendar day, and returns the history sorted by date.
func RecordSnapshot(history []core.NetWorthEntry, nw NetWorth, now time.Time) []core.NetWorthEntry {
	today := core.StartOfDay(now)
	out := make([]core.NetWorthEntry, 0, len(history)+1)
	for _, e := range history {
		if core.StartOfDay(e.Date.In(now.Location())).Equal(today) {
			continue
		}
		out = append(out, e)
	}
	out = append(out, core.NetWorthEntry{
		Date:        now,
		Assets:      nw.Assets,
		Liabilities: nw.Liabilities,
		NetWorth:    nw.NetWorth,
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
