// Package backend selects and opens the storage backend the tracker keeps its
// collections in.
package backend

import (
	"fintrack/internal/storage"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result is an opened store plus its cleanup, which may be nil.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Close runs the cleanup when there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// Memory backend
	DataDirectory string

	// SQLite
	SQLiteDBPath string

	// Supabase
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
	SupabaseOwner string
}

// Type names a storage backend.
type Type string

const (
	MemoryBackend   Type = "memory"
	SQLiteBackend   Type = "sqlite"
	SupabaseBackend Type = "supabase"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, SupabaseBackend:
		return true
	default:
		return false
	}
}
