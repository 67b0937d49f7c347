// Package storage persists the tracker's collections as JSON documents keyed
// by namespace.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrStorage wraps every failure of a storage backend.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned when an entity ID is not in its collection.
	ErrNotFound = errors.New("not found")
)

// Collection keys.
const (
	KeyTransactions = "finance-transactions"
	KeyBudgets      = "finance-budgets"
	KeyLimits       = "spending-limits"
	KeyGoals        = "finance-goals"
	KeyBills        = "bills"
	KeyRecurring    = "recurring-transactions"
	KeyTemplates    = "transaction-templates"
	KeyAssets       = "assets"
	KeyLiabilities  = "liabilities"
	KeyNetWorth     = "net-worth-history"
)

// Store loads and saves JSON-serialisable values by key.
type Store interface {
	// Load decodes the value under key into dst. found is false when the key
	// has never been saved; dst is left untouched in that case.
	Load(ctx context.Context, key string, dst any) (found bool, err error)
	Save(ctx context.Context, key string, v any) error
}

// Pinger is implemented by stores that can report their readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
