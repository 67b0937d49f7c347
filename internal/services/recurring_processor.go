package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// RecurringProcessor creates transactions from due recurring entries.
type RecurringProcessor struct {
	ledger *LedgerService
}

func NewRecurringProcessor(ledger *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{ledger: ledger}
}

// ProcessDue runs every active recurring entry with NextDate <= now once,
// dating the created transaction at now and moving NextDate past now. It
// returns the number of transactions created. When the schedule cannot be
// advanced the created transactions are removed again.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	entries, err := p.ledger.recurring.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total", len(entries),
		"processing_date", now.Format(time.DateOnly))

	var created []core.Transaction
	advanced := map[string]core.RecurringTransaction{}
	scheduled := map[string]time.Time{}
	for _, r := range entries {
		if !finance.IsDue(r, now) {
			continue
		}
		tx, next, err := finance.Execute(r, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to execute recurring transaction",
				"recurring_id", r.ID,
				"frequency", r.Frequency,
				"error", err)
			continue
		}
		if err := tx.Validate(); err != nil {
			slog.ErrorContext(ctx, "Recurring entry produced an invalid transaction",
				"recurring_id", r.ID,
				"error", err)
			continue
		}
		created = append(created, tx)
		advanced[r.ID] = next
		scheduled[r.ID] = r.NextDate
	}

	if len(created) == 0 {
		slog.InfoContext(ctx, "No recurring transactions due")
		return 0, nil
	}

	if err := p.ledger.addTransactions(ctx, created); err != nil {
		return 0, fmt.Errorf("store recurring transactions: %w", err)
	}

	// Only entries whose schedule is unchanged since the read are advanced.
	_, err = p.ledger.recurring.Update(ctx, func(items []core.RecurringTransaction) ([]core.RecurringTransaction, error) {
		for i, r := range items {
			next, ok := advanced[r.ID]
			if ok && r.NextDate.Equal(scheduled[r.ID]) {
				items[i].NextDate = next.NextDate
			}
		}
		return items, nil
	})
	if err != nil {
		// Without the advance the next run would create them again.
		if undoErr := p.ledger.discardTransactions(ctx, created); undoErr != nil {
			slog.ErrorContext(ctx, "Failed to discard recurring transactions",
				"count", len(created),
				"error", undoErr)
		}
		return 0, fmt.Errorf("advance recurring schedule: %w", err)
	}
	p.ledger.invalidate()

	for _, tx := range created {
		slog.InfoContext(ctx, "Created transaction from recurring entry",
			"id", tx.ID,
			"description", tx.Description,
			"amount", tx.Amount.StringFixed(2),
			"frequency", tx.RecurringFrequency)
	}
	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", len(created),
		"total_checked", len(entries))

	return len(created), nil
}
