package finance

import (
	"time"

	"fintrack/internal/core"
)

// RecurringSuffix is appended to the description of generated transactions.
const RecurringSuffix = " (Recurring)"

// IsDue reports whether an active recurring entry should run at now.
func IsDue(r core.RecurringTransaction, now time.Time) bool {
	return r.Active && !r.NextDate.After(now)
}

func occurrence(r core.RecurringTransaction, now time.Time) core.Transaction {
	return core.Transaction{
		ID:                 core.NewID(),
		Amount:             r.Amount,
		Type:               r.Type,
		Category:           r.Category,
		Description:        core.Truncate(r.Description, core.MaxDescriptionLength-len(RecurringSuffix)) + RecurringSuffix,
		Date:               now,
		Recurring:          true,
		RecurringFrequency: r.Frequency,
		CreatedAt:          now,
	}
}

// Execute creates the transaction for one run of r dated at now and returns
// r with NextDate advanced past now. Missed periods are skipped rather than
// replayed.
func Execute(r core.RecurringTransaction, now time.Time) (core.Transaction, core.RecurringTransaction, error) {
	next := r.NextDate
	for !next.After(now) {
		var err error
		if next, err = core.Advance(next, r.Frequency); err != nil {
			return core.Transaction{}, r, err
		}
	}
	r.NextDate = next
	return occurrence(r, now), r, nil
}

// ExecuteNow runs r once regardless of its schedule, advancing NextDate by a
// single period.
func ExecuteNow(r core.RecurringTransaction, now time.Time) (core.Transaction, core.RecurringTransaction, error) {
	next, err := core.Advance(r.NextDate, r.Frequency)
	if err != nil {
		return core.Transaction{}, r, err
	}
	r.NextDate = next
	return occurrence(r, now), r, nil
}
