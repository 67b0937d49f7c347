package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DefaultEmergencyFundDivisor stands in for the current month's expenses when
// there are none, so the emergency-fund estimate stays finite.
var DefaultEmergencyFundDivisor = decimal.NewFromInt(2000)

// Recommendations issued by the health score.
const (
	RecommendSave      = "Try to save at least 10% of your income"
	RecommendEmergency = "Build an emergency fund covering 3-6 months of expenses"
	RecommendReduce    = "Consider reducing expenses to below 80% of income"
	RecommendTrackMore = "Track more transactions for better insights"
)

const (
	minTrackedForBonus = 10
	maxHealthScore     = 100
)

// HealthScore is a 0-100 heuristic of the user's finances.
type HealthScore struct {
	Score               int             `json:"score"`
	SavingsRate         float64         `json:"savingsRate"`
	ExpenseRatio        float64         `json:"expenseRatio"`
	EmergencyFundMonths float64         `json:"emergencyFundMonths"`
	DebtToIncomeRatio   float64         `json:"debtToIncomeRatio"`
	MonthlyIncome       decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses     decimal.Decimal `json:"monthlyExpenses"`
	Recommendations     []string        `json:"recommendations"`
}

// Rating labels a score the way the dashboard does.
func (h HealthScore) Rating() string {
	switch {
	case h.Score >= 80:
		return "Excellent"
	case h.Score >= 60:
		return "Good"
	}
	return "Needs Improvement"
}

type HealthOptions struct {
	// EmergencyFundDivisor replaces DefaultEmergencyFundDivisor when positive.
	EmergencyFundDivisor decimal.Decimal
	// MonthlyDebtPayments feeds DebtToIncomeRatio; zero leaves it at 0.
	MonthlyDebtPayments decimal.Decimal
}

// ComputeHealthScore scores txs as of now using the default options.
func ComputeHealthScore(txs []core.Transaction, now time.Time) HealthScore {
	return ScoreHealth(txs, now, HealthOptions{})
}

// ScoreHealth scores txs as of now.
//
// Savings and expense-ratio points are only awarded when the current month has
// income; without it both ratios are reported as 0 and their recommendations
// are issued.
func ScoreHealth(txs []core.Transaction, now time.Time, opts HealthOptions) HealthScore {
	month := ComputeTotals(FilterByRange(txs, core.MonthRange(now)))
	all := ComputeTotals(txs)

	income, expenses := month.Income, month.Expenses
	hasIncome := income.IsPositive()

	h := HealthScore{
		MonthlyIncome:   income,
		MonthlyExpenses: expenses,
		Recommendations: []string{},
	}
	if hasIncome {
		h.SavingsRate = percent(income.Sub(expenses), income)
		h.ExpenseRatio = percent(expenses, income)
		h.DebtToIncomeRatio = percent(opts.MonthlyDebtPayments, income)
	}

	divisor := expenses
	if !divisor.IsPositive() {
		divisor = DefaultEmergencyFundDivisor
		if opts.EmergencyFundDivisor.IsPositive() {
			divisor = opts.EmergencyFundDivisor
		}
	}
	h.EmergencyFundMonths = all.Balance.Div(divisor).InexactFloat64()

	score := 0
	switch {
	case hasIncome && h.SavingsRate >= 20:
		score += 30
	case hasIncome && h.SavingsRate >= 10:
		score += 20
	case hasIncome && h.SavingsRate >= 0:
		score += 10
	default:
		h.Recommendations = append(h.Recommendations, RecommendSave)
	}

	switch {
	case h.EmergencyFundMonths >= 6:
		score += 25
	case h.EmergencyFundMonths >= 3:
		score += 15
	default:
		h.Recommendations = append(h.Recommendations, RecommendEmergency)
	}

	switch {
	case hasIncome && h.ExpenseRatio <= 80:
		score += 25
	case hasIncome && h.ExpenseRatio <= 90:
		score += 15
	default:
		h.Recommendations = append(h.Recommendations, RecommendReduce)
	}

	if len(txs) >= minTrackedForBonus {
		score += 20
	} else {
		h.Recommendations = append(h.Recommendations, RecommendTrackMore)
	}

	if score > maxHealthScore {
		score = maxHealthScore
	}
	h.Score = score
	return h
}
