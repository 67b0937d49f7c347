// Package services orchestrates the ledger: persistence through storage
// collections, derived reports and limit alert publishing.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/storage"
)

// ErrValidation wraps every rejected input. The underlying core error is
// wrapped as well.
var ErrValidation = errors.New("validation failed")

// AlertPublisher delivers limit alerts to the notification pipeline.
type AlertPublisher interface {
	PublishLimitAlert(ctx context.Context, msg amqp.LimitAlertMessage) error
}

type Options struct {
	// Publisher is optional; without it limit alerts are only logged.
	Publisher AlertPublisher
	// Clock defaults to time.Now.
	Clock func() time.Time
	// EmergencyFundDivisor overrides the health score default when positive.
	EmergencyFundDivisor decimal.Decimal
	CacheTTL             time.Duration
	CacheSize            int
}

// LedgerService owns every collection of the tracker.
type LedgerService struct {
	store        storage.Store
	transactions *storage.Collection[core.Transaction]
	budgets      *storage.Collection[core.Budget]
	limits       *storage.Collection[core.SpendingLimit]
	goals        *storage.Collection[core.Goal]
	bills        *storage.Collection[core.Bill]
	recurring    *storage.Collection[core.RecurringTransaction]
	templates    *storage.Collection[core.TransactionTemplate]
	assets       *storage.Collection[core.Asset]
	liabilities  *storage.Collection[core.Liability]
	netWorth     *storage.Collection[core.NetWorthEntry]

	publisher AlertPublisher
	now       func() time.Time
	divisor   decimal.Decimal

	reports *cache.LRUCache[*Dashboard]
	version atomic.Uint64
	group   singleflight.Group
}

func NewLedgerService(store storage.Store, opts Options) *LedgerService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	return &LedgerService{
		store:        store,
		transactions: storage.NewCollection(store, storage.KeyTransactions, func(t core.Transaction) string { return t.ID }),
		budgets:      storage.NewCollection(store, storage.KeyBudgets, func(b core.Budget) string { return b.ID }),
		limits:       storage.NewCollection(store, storage.KeyLimits, func(l core.SpendingLimit) string { return l.ID }),
		goals:        storage.NewCollection(store, storage.KeyGoals, func(g core.Goal) string { return g.ID }),
		bills:        storage.NewCollection(store, storage.KeyBills, func(b core.Bill) string { return b.ID }),
		recurring:    storage.NewCollection(store, storage.KeyRecurring, func(r core.RecurringTransaction) string { return r.ID }),
		templates:    storage.NewCollection(store, storage.KeyTemplates, func(t core.TransactionTemplate) string { return t.ID }),
		assets:       storage.NewCollection(store, storage.KeyAssets, func(a core.Asset) string { return a.ID }),
		liabilities:  storage.NewCollection(store, storage.KeyLiabilities, func(l core.Liability) string { return l.ID }),
		netWorth:     storage.NewCollection(store, storage.KeyNetWorth, func(e core.NetWorthEntry) string { return core.StartOfDay(e.Date).Format(time.DateOnly) }),
		publisher:    opts.Publisher,
		now:          opts.Clock,
		divisor:      opts.EmergencyFundDivisor,
		reports:      cache.NewLRUCache[*Dashboard](opts.CacheSize, opts.CacheTTL),
	}
}

// Now returns the service clock's current time.
func (s *LedgerService) Now() time.Time {
	return s.now()
}

// ReportCache exposes the dashboard cache for periodic cleanup.
func (s *LedgerService) ReportCache() *cache.LRUCache[*Dashboard] {
	return s.reports
}

// Ping reports whether the backing store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	if p, ok := s.store.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *LedgerService) invalidate() {
	s.version.Add(1)
	s.reports.Purge()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

type validator interface {
	Validate() error
}

// create validates item and appends it to c.
func create[T validator](ctx context.Context, s *LedgerService, c *storage.Collection[T], item T) (T, error) {
	if err := item.Validate(); err != nil {
		return item, invalid(err)
	}
	if err := c.Append(ctx, item); err != nil {
		return item, err
	}
	s.invalidate()
	return item, nil
}

func (s *LedgerService) remove(ctx context.Context, deleter interface {
	Delete(context.Context, string) error
}, id string) error {
	if err := deleter.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// normalizeTransaction fills the ID, creation time and currency of a new
// transaction and trims its text fields.
func (s *LedgerService) normalizeTransaction(tx core.Transaction) core.Transaction {
	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	tx.Category = core.DisplayCategory(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	if tx.Currency != "" {
		tx.Currency = strings.ToUpper(tx.Currency)
	}
	return tx
}

// AddTransaction stores a new transaction and publishes limit alerts the
// expense triggers.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = s.normalizeTransaction(tx)
	if err := tx.Validate(); err != nil {
		return tx, invalid(err)
	}
	if err := s.addTransactions(ctx, []core.Transaction{tx}); err != nil {
		return tx, err
	}
	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount.StringFixed(2))
	return tx, nil
}

// ImportTransactions validates every transaction before storing any of them
// and returns the number stored.
func (s *LedgerService) ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	batch := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx = s.normalizeTransaction(tx)
		if err := tx.Validate(); err != nil {
			return 0, invalid(fmt.Errorf("row %d: %w", i+1, err))
		}
		batch[i] = tx
	}
	if err := s.addTransactions(ctx, batch); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Transactions imported", "count", len(batch))
	return len(batch), nil
}

func (s *LedgerService) addTransactions(ctx context.Context, batch []core.Transaction) error {
	var before, after []core.Transaction
	_, err := s.transactions.Update(ctx, func(cur []core.Transaction) ([]core.Transaction, error) {
		before = cur
		after = append(append(make([]core.Transaction, 0, len(cur)+len(batch)), cur...), batch...)
		return after, nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	s.checkLimitAlerts(ctx, before, after, batch)
	return nil
}

// checkLimitAlerts publishes an alert for every notifying limit whose level
// rose to warning or exceeded because of added.
func (s *LedgerService) checkLimitAlerts(ctx context.Context, before, after, added []core.Transaction) {
	categories := map[string]bool{}
	for _, tx := range added {
		if tx.Type == core.Expense {
			categories[core.CategoryKey(tx.Category)] = true
		}
	}
	if len(categories) == 0 {
		return
	}

	limits, err := s.limits.All(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load spending limits for alerts", "error", err)
		return
	}

	now := s.now()
	for _, l := range limits {
		if !l.Notifications || !categories[core.CategoryKey(l.Category)] {
			continue
		}
		prev := finance.EvaluateLimitStatus(l, before, now)
		cur := finance.EvaluateLimitStatus(l, after, now)
		if cur.Level == finance.LevelOK || cur.Level == prev.Level {
			continue
		}

		msg := amqp.LimitAlertMessage{
			LimitID:    l.ID,
			Category:   l.Category,
			Period:     string(l.Period),
			Amount:     l.Amount,
			Spent:      cur.Spent,
			Percentage: cur.RawPercentage,
			Level:      string(cur.Level),
			Timestamp:  now,
		}
		slog.WarnContext(ctx, "Spending limit threshold crossed",
			"category", l.Category,
			"level", cur.Level,
			"percentage", cur.RawPercentage)
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishLimitAlert(ctx, msg); err != nil {
			// the transaction is already stored
			slog.ErrorContext(ctx, "Failed to publish limit alert", "limit_id", l.ID, "error", err)
		}
	}
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	return s.remove(ctx, s.transactions, id)
}

// Transactions returns every stored transaction in insertion order.
func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return s.transactions.All(ctx)
}

// ListTransactions applies q to the stored transactions.
func (s *LedgerService) ListTransactions(ctx context.Context, q finance.Query) ([]core.Transaction, error) {
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return nil, err
	}
	out, err := finance.Search(txs, q)
	if err != nil {
		return nil, invalid(err)
	}
	return out, nil
}

// Budgets

func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = core.NewID()
	}
	b.Category = core.DisplayCategory(b.Category)
	return create(ctx, s, s.budgets, b)
}

func (s *LedgerService) Budgets(ctx context.Context) ([]finance.BudgetStatus, error) {
	budgets, err := s.budgets.All(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return nil, err
	}
	return finance.EvaluateBudgets(budgets, txs, s.now()), nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	return s.remove(ctx, s.budgets, id)
}

// Spending limits

func (s *LedgerService) AddLimit(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	if l.ID == "" {
		l.ID = core.NewID()
	}
	l.Category = core.DisplayCategory(l.Category)
	return create(ctx, s, s.limits, l)
}

func (s *LedgerService) Limits(ctx context.Context) ([]finance.BudgetStatus, error) {
	limits, err := s.limits.All(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return nil, err
	}
	return finance.EvaluateLimits(limits, txs, s.now()), nil
}

func (s *LedgerService) DeleteLimit(ctx context.Context, id string) error {
	return s.remove(ctx, s.limits, id)
}

// Goals

func (s *LedgerService) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = core.NewID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	if g.Type == "" {
		g.Type = core.GoalCustom
	}
	for i := range g.Milestones {
		if g.Milestones[i].ID == "" {
			g.Milestones[i].ID = core.NewID()
		}
	}
	return create(ctx, s, s.goals, g)
}

func (s *LedgerService) Goals(ctx context.Context) ([]finance.GoalStatus, error) {
	goals, err := s.goals.All(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return nil, err
	}
	return finance.EvaluateGoals(goals, txs, s.now()), nil
}

// AdjustGoalProgress adds delta to the goal's manual progress. The result is
// floored at zero.
func (s *LedgerService) AdjustGoalProgress(ctx context.Context, id string, delta decimal.Decimal) (core.Goal, error) {
	g, err := s.goals.Modify(ctx, id, func(g core.Goal) (core.Goal, error) {
		g.CurrentAmount = decimal.Max(g.CurrentAmount.Add(delta), decimal.Zero)
		return g, nil
	})
	if err != nil {
		return g, err
	}
	s.invalidate()
	return g, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	return s.remove(ctx, s.goals, id)
}

// Bills

func (s *LedgerService) AddBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.ID == "" {
		b.ID = core.NewID()
	}
	b.Category = core.DisplayCategory(b.Category)
	if b.Category == "" {
		b.Category = core.DefaultBillCategory
	}
	return create(ctx, s, s.bills, b)
}

// Bills returns the unpaid bills ordered by due date.
func (s *LedgerService) Bills(ctx context.Context) ([]finance.BillView, error) {
	bills, err := s.bills.All(ctx)
	if err != nil {
		return nil, err
	}
	return finance.UpcomingBills(bills, s.now()), nil
}

// BillsNeedingReminder returns the unpaid bills overdue or due within a week.
func (s *LedgerService) BillsNeedingReminder(ctx context.Context) ([]finance.BillView, error) {
	bills, err := s.bills.All(ctx)
	if err != nil {
		return nil, err
	}
	return finance.BillsNeedingReminder(bills, s.now()), nil
}

// MarkBillPaid pays a bill; recurring bills roll forward to their next due date.
func (s *LedgerService) MarkBillPaid(ctx context.Context, id string) (core.Bill, error) {
	b, err := s.bills.Modify(ctx, id, func(b core.Bill) (core.Bill, error) {
		paid, err := finance.PayBill(b)
		if err != nil {
			return b, invalid(err)
		}
		return paid, nil
	})
	if err != nil {
		return b, err
	}
	s.invalidate()
	return b, nil
}

func (s *LedgerService) DeleteBill(ctx context.Context, id string) error {
	return s.remove(ctx, s.bills, id)
}

// Recurring transactions

func (s *LedgerService) AddRecurring(ctx context.Context, r core.RecurringTransaction) (core.RecurringTransaction, error) {
	if r.ID == "" {
		r.ID = core.NewID()
	}
	r.Category = core.DisplayCategory(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	return create(ctx, s, s.recurring, r)
}

func (s *LedgerService) Recurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	return s.recurring.All(ctx)
}

// ToggleRecurring flips the active flag of a recurring transaction.
func (s *LedgerService) ToggleRecurring(ctx context.Context, id string) (core.RecurringTransaction, error) {
	r, err := s.recurring.Modify(ctx, id, func(r core.RecurringTransaction) (core.RecurringTransaction, error) {
		r.Active = !r.Active
		return r, nil
	})
	if err != nil {
		return r, err
	}
	s.invalidate()
	return r, nil
}

// RunRecurringNow executes a recurring transaction immediately, advancing its
// schedule by one period. The schedule is restored when the transaction
// cannot be stored.
func (s *LedgerService) RunRecurringNow(ctx context.Context, id string) (core.Transaction, error) {
	var (
		tx                 core.Transaction
		previous, advanced time.Time
	)
	_, err := s.recurring.Modify(ctx, id, func(r core.RecurringTransaction) (core.RecurringTransaction, error) {
		created, next, err := finance.ExecuteNow(r, s.now())
		if err != nil {
			return r, invalid(err)
		}
		if err := created.Validate(); err != nil {
			return r, invalid(err)
		}
		tx = created
		previous, advanced = r.NextDate, next.NextDate
		return next, nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.addTransactions(ctx, []core.Transaction{tx}); err != nil {
		s.restoreSchedule(ctx, id, advanced, previous)
		return core.Transaction{}, err
	}
	return tx, nil
}

// restoreSchedule moves NextDate of id back to previous, unless another
// writer changed it after it was advanced.
func (s *LedgerService) restoreSchedule(ctx context.Context, id string, advanced, previous time.Time) {
	_, err := s.recurring.Modify(ctx, id, func(r core.RecurringTransaction) (core.RecurringTransaction, error) {
		if r.NextDate.Equal(advanced) {
			r.NextDate = previous
		}
		return r, nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to restore recurring schedule",
			"recurring_id", id,
			"next_date", previous.Format(time.DateOnly),
			"error", err)
	}
}

// discardTransactions removes the transactions in batch, undoing a previous
// addTransactions.
func (s *LedgerService) discardTransactions(ctx context.Context, batch []core.Transaction) error {
	ids := make(map[string]bool, len(batch))
	for _, tx := range batch {
		ids[tx.ID] = true
	}
	_, err := s.transactions.Update(ctx, func(cur []core.Transaction) ([]core.Transaction, error) {
		kept := cur[:0]
		for _, tx := range cur {
			if !ids[tx.ID] {
				kept = append(kept, tx)
			}
		}
		return kept, nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *LedgerService) DeleteRecurring(ctx context.Context, id string) error {
	return s.remove(ctx, s.recurring, id)
}

// Templates

func (s *LedgerService) AddTemplate(ctx context.Context, t core.TransactionTemplate) (core.TransactionTemplate, error) {
	if t.ID == "" {
		t.ID = core.NewID()
	}
	t.Category = core.DisplayCategory(t.Category)
	return create(ctx, s, s.templates, t)
}

func (s *LedgerService) Templates(ctx context.Context) ([]core.TransactionTemplate, error) {
	return s.templates.All(ctx)
}

// ApplyTemplate creates a transaction dated now from a stored template.
func (s *LedgerService) ApplyTemplate(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.templates.Find(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.AddTransaction(ctx, t.Instantiate(s.now()))
}

func (s *LedgerService) DeleteTemplate(ctx context.Context, id string) error {
	return s.remove(ctx, s.templates, id)
}

// Net worth

func (s *LedgerService) AddAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if a.ID == "" {
		a.ID = core.NewID()
	}
	a.LastUpdated = s.now()
	return create(ctx, s, s.assets, a)
}

func (s *LedgerService) DeleteAsset(ctx context.Context, id string) error {
	return s.remove(ctx, s.assets, id)
}

func (s *LedgerService) AddLiability(ctx context.Context, l core.Liability) (core.Liability, error) {
	if l.ID == "" {
		l.ID = core.NewID()
	}
	l.LastUpdated = s.now()
	return create(ctx, s, s.liabilities, l)
}

func (s *LedgerService) DeleteLiability(ctx context.Context, id string) error {
	return s.remove(ctx, s.liabilities, id)
}

// NetWorthReport is the current position with its recorded history.
type NetWorthReport struct {
	Current     finance.NetWorth     `json:"current"`
	Assets      []core.Asset         `json:"assets"`
	Liabilities []core.Liability     `json:"liabilities"`
	History     []core.NetWorthEntry `json:"history"`
}

func (s *LedgerService) NetWorth(ctx context.Context) (NetWorthReport, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return NetWorthReport{}, err
	}
	return NetWorthReport{
		Current:     finance.ComputeNetWorth(snap.Assets, snap.Liabilities),
		Assets:      snap.Assets,
		Liabilities: snap.Liabilities,
		History:     snap.NetWorthHistory,
	}, nil
}

// RecordNetWorth stores today's net worth, replacing an earlier snapshot from
// the same day.
func (s *LedgerService) RecordNetWorth(ctx context.Context) (core.NetWorthEntry, error) {
	assets, err := s.assets.All(ctx)
	if err != nil {
		return core.NetWorthEntry{}, err
	}
	liabilities, err := s.liabilities.All(ctx)
	if err != nil {
		return core.NetWorthEntry{}, err
	}
	nw := finance.ComputeNetWorth(assets, liabilities)
	now := s.now()

	var entry core.NetWorthEntry
	_, err = s.netWorth.Update(ctx, func(history []core.NetWorthEntry) ([]core.NetWorthEntry, error) {
		out := finance.RecordSnapshot(history, nw, now)
		for _, e := range out {
			if e.Date.Equal(now) {
				entry = e
			}
		}
		return out, nil
	})
	if err != nil {
		return entry, err
	}
	s.invalidate()
	return entry, nil
}
