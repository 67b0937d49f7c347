package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []amqp.LimitAlertMessage
	err  error
}

func (p *recordingPublisher) PublishLimitAlert(_ context.Context, msg amqp.LimitAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, pub AlertPublisher) *LedgerService {
	t.Helper()
	return NewLedgerService(memory.New(), Options{
		Publisher: pub,
		Clock:     fixedClock(testNow),
		CacheTTL:  time.Minute,
		CacheSize: 8,
	})
}

func expense(amount, category string, day int) core.Transaction {
	return core.Transaction{
		Amount:   decimal.RequireFromString(amount),
		Type:     core.Expense,
		Category: category,
		Date:     time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	got, err := s.AddTransaction(ctx, expense("12.50", "  Food ", 3))
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, testNow, got.CreatedAt)

	all, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("12.50")))
}

func TestAddTransaction_Validation(t *testing.T) {
	s := newTestLedger(t, nil)

	_, err := s.AddTransaction(context.Background(), expense("0", "Food", 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	bad := expense("5", "Food", 3)
	bad.Type = "transfer"
	_, err = s.AddTransaction(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestImportTransactions_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	_, err := s.ImportTransactions(ctx, []core.Transaction{expense("5", "Food", 1), expense("5", "", 2)})
	assert.ErrorIs(t, err, core.ErrEmptyCategory)
	all, _ := s.Transactions(ctx)
	assert.Empty(t, all)

	n, err := s.ImportTransactions(ctx, []core.Transaction{expense("5", "Food", 1), expense("7", "Rent", 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLimitAlerts(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestLedger(t, pub)

	_, err := s.AddLimit(ctx, core.SpendingLimit{Category: "Food", Amount: decimal.NewFromInt(100), Period: core.Monthly, Notifications: true})
	require.NoError(t, err)
	_, err = s.AddLimit(ctx, core.SpendingLimit{Category: "Fun", Amount: decimal.NewFromInt(10), Period: core.Monthly})
	require.NoError(t, err)

	steps := []struct {
		amount, category string
	}{
		{"50", "Food"}, // 50%
		{"35", "food"}, // 85% warning
		{"5", "Food"},  // 90% still warning
		{"20", "Food"}, // 110% exceeded
		{"50", "Fun"},  // notifications off
	}
	for _, st := range steps {
		_, err := s.AddTransaction(ctx, expense(st.amount, st.category, 10))
		require.NoError(t, err)
	}

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, string(finance.LevelWarning), pub.msgs[0].Level)
	assert.Equal(t, 85.0, pub.msgs[0].Percentage)
	assert.Equal(t, string(finance.LevelExceeded), pub.msgs[1].Level)
	assert.True(t, pub.msgs[1].Spent.Equal(decimal.NewFromInt(110)))
}

func TestLimitAlerts_PublishFailureKeepsTransaction(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := newTestLedger(t, pub)

	_, err := s.AddLimit(ctx, core.SpendingLimit{Category: "Food", Amount: decimal.NewFromInt(10), Period: core.Weekly, Notifications: true})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, expense("15", "Food", 14))
	require.NoError(t, err)
	assert.Len(t, pub.msgs, 1)
}

func TestDashboard_CachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	_, err := s.AddTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(1000), Type: core.Income, Category: "Salary", Date: testNow})
	require.NoError(t, err)

	first, err := s.Dashboard(ctx, "")
	require.NoError(t, err)
	second, err := s.Dashboard(ctx, finance.AllMonths)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.True(t, first.Totals.Income.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, []string{"2024-03"}, first.Months)

	_, err = s.AddTransaction(ctx, expense("200", "Rent", 1))
	require.NoError(t, err)
	third, err := s.Dashboard(ctx, "2024-03")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, third.Totals.Expenses.Equal(decimal.NewFromInt(200)))
	require.Len(t, third.ExpenseCategories, 1)
	assert.Equal(t, "Rent", third.ExpenseCategories[0].Category)

	_, err = s.Dashboard(ctx, "March")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBills(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	rent, err := s.AddBill(ctx, core.Bill{Name: "Rent", Amount: decimal.NewFromInt(900), DueDate: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), Recurring: true, Frequency: core.Monthly})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultBillCategory, rent.Category)

	once, err := s.AddBill(ctx, core.Bill{Name: "Repair", Amount: decimal.NewFromInt(80), DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Category: "Home"})
	require.NoError(t, err)

	views, err := s.BillsNeedingReminder(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, finance.BillOverdue, views[0].Status)
	assert.Equal(t, finance.BillDueTomorrow, views[1].Status)

	paid, err := s.MarkBillPaid(ctx, rent.ID)
	require.NoError(t, err)
	assert.False(t, paid.Paid)
	assert.True(t, paid.DueDate.Equal(time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)), "due date %v", paid.DueDate)

	paid, err = s.MarkBillPaid(ctx, once.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	views, err = s.Bills(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Rent", views[0].Name)

	_, err = s.MarkBillPaid(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	g, err := s.AddGoal(ctx, core.Goal{
		Name:         "Trip",
		TargetAmount: decimal.NewFromInt(1000),
		TargetDate:   time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		Category:     "Side Gig",
		TrackIncome:  true,
		Milestones:   []core.Milestone{{Amount: decimal.NewFromInt(250), Label: "First quarter"}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.GoalCustom, g.Type)
	assert.Equal(t, testNow, g.CreatedAt)
	assert.NotEmpty(t, g.Milestones[0].ID)

	_, err = s.AddTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(200), Type: core.Income, Category: "side gig", Date: testNow.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.AdjustGoalProgress(ctx, g.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	statuses, err := s.Goals(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Total.Equal(decimal.NewFromInt(300)))
	assert.True(t, statuses[0].Goal.Milestones[0].Achieved)

	updated, err := s.AdjustGoalProgress(ctx, g.ID, decimal.NewFromInt(-500))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.IsZero())

	require.NoError(t, s.DeleteGoal(ctx, g.ID))
	assert.ErrorIs(t, s.DeleteGoal(ctx, g.ID), storage.ErrNotFound)
}

func TestTemplatesAndRecurring(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	tpl, err := s.AddTemplate(ctx, core.TransactionTemplate{Name: "Coffee", Amount: decimal.RequireFromString("3.50"), Category: "Food", Type: core.Expense, Description: "Latte"})
	require.NoError(t, err)
	tx, err := s.ApplyTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Latte", tx.Description)
	assert.Equal(t, testNow, tx.Date)

	r, err := s.AddRecurring(ctx, core.RecurringTransaction{Amount: decimal.NewFromInt(15), Category: "Subscriptions", Type: core.Expense, Description: "Music", Frequency: core.Monthly, NextDate: testNow, Active: true})
	require.NoError(t, err)

	toggled, err := s.ToggleRecurring(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	created, err := s.RunRecurringNow(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Music"+finance.RecurringSuffix, created.Description)

	entries, err := s.Recurring(ctx)
	require.NoError(t, err)
	assert.True(t, entries[0].NextDate.Equal(time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)), "next date %v", entries[0].NextDate)

	all, err := s.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNetWorth(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	_, err := s.AddAsset(ctx, core.Asset{Name: "Savings", Value: decimal.NewFromInt(5000), Type: core.AssetCash})
	require.NoError(t, err)
	_, err = s.AddLiability(ctx, core.Liability{Name: "Card", Amount: decimal.NewFromInt(1200), Type: core.LiabilityCreditCard, MinimumPayment: decimal.NewFromInt(60)})
	require.NoError(t, err)
	_, err = s.AddAsset(ctx, core.Asset{Name: "Bad", Type: "crypto"})
	assert.ErrorIs(t, err, core.ErrInvalidAssetType)

	entry, err := s.RecordNetWorth(ctx)
	require.NoError(t, err)
	assert.True(t, entry.NetWorth.Equal(decimal.NewFromInt(3800)))

	_, err = s.RecordNetWorth(ctx)
	require.NoError(t, err)

	report, err := s.NetWorth(ctx)
	require.NoError(t, err)
	assert.Len(t, report.History, 1)
	assert.True(t, report.Current.MonthlyDebtPayments.Equal(decimal.NewFromInt(60)))
}

func TestBudgetsAndHealth(t *testing.T) {
	ctx := context.Background()
	s := newTestLedger(t, nil)

	_, err := s.AddBudget(ctx, core.Budget{Category: "Food", Amount: decimal.NewFromInt(200), Period: core.Monthly})
	require.NoError(t, err)
	_, err = s.AddBudget(ctx, core.Budget{Category: "Food", Amount: decimal.NewFromInt(200), Period: core.Weekly})
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)

	_, err = s.AddTransaction(ctx, expense("150", "Food", 2))
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(1000), Type: core.Income, Category: "Salary", Date: testNow})
	require.NoError(t, err)

	budgets, err := s.Budgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, 75.0, budgets[0].Percentage)

	score, err := s.HealthScore(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 85.0, score.SavingsRate, 0.001)
	assert.Equal(t, 1, len(score.Recommendations))
}
