package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// GoalProgress is the income automatically credited to a goal.
type GoalProgress struct {
	AutoProgress     decimal.Decimal `json:"autoProgress"`
	TransactionCount int             `json:"transactionCount"`
}

// ComputeGoalProgress sums income transactions in the goal's tracked category
// dated on or after the goal was created. Goals that do not track income get
// zero progress.
func ComputeGoalProgress(g core.Goal, txs []core.Transaction) GoalProgress {
	p := GoalProgress{AutoProgress: decimal.Zero}
	if !g.TrackIncome {
		return p
	}
	key := core.CategoryKey(g.Category)
	for _, tx := range txs {
		if tx.Type != core.Income || core.CategoryKey(tx.Category) != key {
			continue
		}
		if tx.Date.Before(g.CreatedAt) {
			continue
		}
		p.AutoProgress = p.AutoProgress.Add(tx.Amount)
		p.TransactionCount++
	}
	return p
}

type GoalState string

const (
	GoalActive    GoalState = "active"
	GoalCompleted GoalState = "completed"
	GoalOverdue   GoalState = "overdue"
)

// GoalStatus is the displayed state of a goal.
type GoalStatus struct {
	Goal       core.Goal       `json:"goal"`
	Progress   GoalProgress    `json:"progress"`
	Total      decimal.Decimal `json:"total"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	DaysLeft   int             `json:"daysLeft"`
	State      GoalState       `json:"state"`
	// MonthlyNeeded is the saving per remaining month that reaches the target
	// on time; zero once the goal is completed or overdue.
	MonthlyNeeded decimal.Decimal `json:"monthlyNeeded"`
}

// EvaluateGoal combines manual and automatic progress. A goal is completed at
// 100% and overdue once its target date has passed below 100%; both states
// are recomputed on every call, so an overdue goal can still complete.
func EvaluateGoal(g core.Goal, txs []core.Transaction, now time.Time) GoalStatus {
	progress := ComputeGoalProgress(g, txs)
	total := g.CurrentAmount.Add(progress.AutoProgress)
	s := GoalStatus{
		Goal:       g,
		Progress:   progress,
		Total:      total,
		Remaining:  decimal.Max(g.TargetAmount.Sub(total), decimal.Zero),
		Percentage: percent(total, g.TargetAmount),
		DaysLeft:   core.DaysBetween(now, g.TargetDate),
		State:      GoalActive,
	}
	switch {
	case s.Percentage >= 100:
		s.State = GoalCompleted
	case s.DaysLeft < 0:
		s.State = GoalOverdue
	default:
		months := s.DaysLeft / 30
		if months < 1 {
			months = 1
		}
		s.MonthlyNeeded = s.Remaining.Div(decimal.NewFromInt(int64(months))).Round(2)
	}
	s.Goal.Milestones = make([]core.Milestone, len(g.Milestones))
	for i, m := range g.Milestones {
		m.Achieved = total.GreaterThanOrEqual(m.Amount)
		s.Goal.Milestones[i] = m
	}
	return s
}

func EvaluateGoals(goals []core.Goal, txs []core.Transaction, now time.Time) []GoalStatus {
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		out = append(out, EvaluateGoal(g, txs, now))
	}
	return out
}
