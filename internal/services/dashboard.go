package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// Snapshot is every collection loaded at one point in time.
type Snapshot struct {
	Transactions    []core.Transaction          `json:"transactions"`
	Budgets         []core.Budget               `json:"budgets"`
	Limits          []core.SpendingLimit        `json:"limits"`
	Goals           []core.Goal                 `json:"goals"`
	Bills           []core.Bill                 `json:"bills"`
	Recurring       []core.RecurringTransaction `json:"recurring"`
	Templates       []core.TransactionTemplate  `json:"templates"`
	Assets          []core.Asset                `json:"assets"`
	Liabilities     []core.Liability            `json:"liabilities"`
	NetWorthHistory []core.NetWorthEntry        `json:"netWorthHistory"`
}

// Snapshot loads all collections concurrently.
func (s *LedgerService) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Transactions, err = s.transactions.All(ctx); return })
	g.Go(func() (err error) { snap.Budgets, err = s.budgets.All(ctx); return })
	g.Go(func() (err error) { snap.Limits, err = s.limits.All(ctx); return })
	g.Go(func() (err error) { snap.Goals, err = s.goals.All(ctx); return })
	g.Go(func() (err error) { snap.Bills, err = s.bills.All(ctx); return })
	g.Go(func() (err error) { snap.Recurring, err = s.recurring.All(ctx); return })
	g.Go(func() (err error) { snap.Templates, err = s.templates.All(ctx); return })
	g.Go(func() (err error) { snap.Assets, err = s.assets.All(ctx); return })
	g.Go(func() (err error) { snap.Liabilities, err = s.liabilities.All(ctx); return })
	g.Go(func() (err error) { snap.NetWorthHistory, err = s.netWorth.All(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Dashboard is the full derived report for one month selection.
type Dashboard struct {
	Month             string                  `json:"month"`
	Months            []string                `json:"months"`
	Totals            finance.Totals          `json:"totals"`
	ExpenseCategories []core.CategorySummary  `json:"expenseCategories"`
	IncomeCategories  []core.CategorySummary  `json:"incomeCategories"`
	Monthly           []core.MonthlyData      `json:"monthly"`
	Budgets           []finance.BudgetStatus  `json:"budgets"`
	Limits            []finance.BudgetStatus  `json:"limits"`
	Goals             []finance.GoalStatus    `json:"goals"`
	Health            finance.HealthScore     `json:"health"`
	Trends            []finance.SpendingTrend `json:"trends"`
	Stats             finance.QuickStats      `json:"stats"`
	Bills             []finance.BillView      `json:"bills"`
	NetWorth          finance.NetWorth        `json:"netWorth"`
	GeneratedAt       time.Time               `json:"generatedAt"`
}

// Dashboard builds the report for month ("all" or YYYY-MM). Reports are
// cached until the next write or the cache TTL, and concurrent requests for
// the same report share one computation.
func (s *LedgerService) Dashboard(ctx context.Context, month string) (*Dashboard, error) {
	if month == "" {
		month = finance.AllMonths
	}
	if month != finance.AllMonths {
		if _, err := core.ParseMonthKey(month, time.UTC); err != nil {
			return nil, invalid(err)
		}
	}

	now := s.now()
	key := fmt.Sprintf("%d|%s|%s", s.version.Load(), month, now.Format(time.DateOnly))
	if d, ok := s.reports.Get(key); ok {
		return d, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		d, err := s.buildDashboard(snap, month, now)
		if err != nil {
			return nil, err
		}
		s.reports.Set(key, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dashboard), nil
}

// HealthScore scores the stored transactions, using liability minimum
// payments for the debt-to-income ratio.
func (s *LedgerService) HealthScore(ctx context.Context) (finance.HealthScore, error) {
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return finance.HealthScore{}, err
	}
	liabilities, err := s.liabilities.All(ctx)
	if err != nil {
		return finance.HealthScore{}, err
	}
	nw := finance.ComputeNetWorth(nil, liabilities)
	return finance.ScoreHealth(txs, s.now(), s.healthOptions(nw)), nil
}

func (s *LedgerService) healthOptions(nw finance.NetWorth) finance.HealthOptions {
	return finance.HealthOptions{
		EmergencyFundDivisor: s.divisor,
		MonthlyDebtPayments:  nw.MonthlyDebtPayments,
	}
}

func (s *LedgerService) buildDashboard(snap *Snapshot, month string, now time.Time) (*Dashboard, error) {
	selected, err := finance.FilterByMonth(snap.Transactions, month)
	if err != nil {
		return nil, invalid(err)
	}
	nw := finance.ComputeNetWorth(snap.Assets, snap.Liabilities)

	return &Dashboard{
		Month:             month,
		Months:            finance.AvailableMonths(snap.Transactions),
		Totals:            finance.ComputeTotals(selected),
		ExpenseCategories: finance.SummarizeByCategory(selected, core.Expense),
		IncomeCategories:  finance.SummarizeByCategory(selected, core.Income),
		Monthly:           finance.SummarizeByMonth(snap.Transactions),
		Budgets:           finance.EvaluateBudgets(snap.Budgets, snap.Transactions, now),
		Limits:            finance.EvaluateLimits(snap.Limits, snap.Transactions, now),
		Goals:             finance.EvaluateGoals(snap.Goals, snap.Transactions, now),
		Health:            finance.ScoreHealth(snap.Transactions, now, s.healthOptions(nw)),
		Trends:            finance.ComputeSpendingTrends(snap.Transactions, now),
		Stats:             finance.ComputeQuickStats(snap.Transactions, now),
		Bills:             finance.UpcomingBills(snap.Bills, now),
		NetWorth:          nw,
		GeneratedAt:       now,
	}, nil
}
