package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Alert thresholds on the unclamped spent/amount percentage.
const (
	WarningThreshold  = 80.0
	ExceededThreshold = 100.0
)

// BudgetStatus is the spend of one budget or spending limit in its current
// period. Percentage is clamped to [0,100] for display; RawPercentage and
// Overage carry the unclamped figures.
type BudgetStatus struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Period        core.Period     `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Overage       decimal.Decimal `json:"overage"`
	Percentage    float64         `json:"percentage"`
	RawPercentage float64         `json:"rawPercentage"`
	OverBudget    bool            `json:"overBudget"`
	Level         AlertLevel      `json:"level"`
}

type AlertLevel string

const (
	LevelOK       AlertLevel = "ok"
	LevelWarning  AlertLevel = "warning"
	LevelExceeded AlertLevel = "exceeded"
)

// LevelFor classifies an unclamped percentage against the alert thresholds.
func LevelFor(rawPercentage float64) AlertLevel {
	switch {
	case rawPercentage >= ExceededThreshold:
		return LevelExceeded
	case rawPercentage >= WarningThreshold:
		return LevelWarning
	}
	return LevelOK
}

// periodSpend sums expense transactions in category dated within the current
// window of p. An unknown period matches nothing.
func periodSpend(category string, p core.Period, txs []core.Transaction, now time.Time) decimal.Decimal {
	r, err := core.PeriodRange(p, now)
	if err != nil {
		return decimal.Zero
	}
	key := core.CategoryKey(category)
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.Type != core.Expense || core.CategoryKey(tx.Category) != key {
			continue
		}
		if r.Contains(tx.Date) {
			spent = spent.Add(tx.Amount)
		}
	}
	return spent
}

func newStatus(id, category string, p core.Period, amount, spent decimal.Decimal) BudgetStatus {
	raw := percent(spent, amount)
	pct := raw
	if pct > 100 {
		pct = 100
	}
	overage := decimal.Zero
	if amount.IsPositive() && spent.GreaterThan(amount) {
		overage = spent.Sub(amount)
	}
	remaining := amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return BudgetStatus{
		ID:            id,
		Category:      category,
		Period:        p,
		Amount:        amount,
		Spent:         spent,
		Remaining:     remaining,
		Overage:       overage,
		Percentage:    pct,
		RawPercentage: raw,
		OverBudget:    overage.IsPositive(),
		Level:         LevelFor(raw),
	}
}

// EvaluateBudget computes the spend of b in its current monthly or yearly
// period. A non-positive budget amount yields 0%.
func EvaluateBudget(b core.Budget, txs []core.Transaction, now time.Time) BudgetStatus {
	return newStatus(b.ID, b.Category, b.Period, b.Amount, periodSpend(b.Category, b.Period, txs, now))
}

// EvaluateSpendingLimit returns the amount spent against l in its current
// weekly, monthly or yearly period.
func EvaluateSpendingLimit(l core.SpendingLimit, txs []core.Transaction, now time.Time) decimal.Decimal {
	return periodSpend(l.Category, l.Period, txs, now)
}

// EvaluateLimitStatus is EvaluateSpendingLimit with the full status record.
func EvaluateLimitStatus(l core.SpendingLimit, txs []core.Transaction, now time.Time) BudgetStatus {
	return newStatus(l.ID, l.Category, l.Period, l.Amount, EvaluateSpendingLimit(l, txs, now))
}

// EvaluateBudgets evaluates every budget against the same snapshot.
func EvaluateBudgets(budgets []core.Budget, txs []core.Transaction, now time.Time) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, EvaluateBudget(b, txs, now))
	}
	return out
}

func EvaluateLimits(limits []core.SpendingLimit, txs []core.Transaction, now time.Time) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(limits))
	for _, l := range limits {
		out = append(out, EvaluateLimitStatus(l, txs, now))
	}
	return out
}
