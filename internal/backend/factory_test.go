package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func quietFactory() *Factory {
	return NewFactory(applog.New(applog.Config{Output: io.Discard}))
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:   "supabase",
		SupabaseURL:   "https://example.supabase.co",
		SupabaseKey:   "key",
		SupabaseTable: "app_state",
		SupabaseOwner: "me",
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != SupabaseBackend || got.SupabaseOwner != "me" {
		t.Errorf("FromAppConfig() = %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"supabase without key", Config{Type: SupabaseBackend, SupabaseURL: "https://x"}, "URL and key"},
		{"supabase without owner", Config{Type: SupabaseBackend, SupabaseURL: "https://x", SupabaseKey: "k"}, "owner"},
		{"unknown", Config{Type: "redis"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, storage.KeyBudgets+".json"), []byte(`[{"id":"b1"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := quietFactory().Create(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Close()

	store, ok := res.Store.(*memory.Store)
	if !ok {
		t.Fatalf("Store is %T, want *memory.Store", res.Store)
	}
	var budgets []map[string]any
	found, err := store.Load(context.Background(), storage.KeyBudgets, &budgets)
	if err != nil || !found || len(budgets) != 1 {
		t.Fatalf("Load() = %v, %v, %v", budgets, found, err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fintrack.db")

	res, err := quietFactory().Create(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Cleanup == nil {
		t.Fatal("sqlite backend must close its database")
	}

	if err := res.Store.Save(ctx, storage.KeyGoals, []string{"house"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening runs the migrations again and keeps the data.
	res, err = quietFactory().Create(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer res.Close()

	var goals []string
	found, err := res.Store.Load(ctx, storage.KeyGoals, &goals)
	if err != nil || !found || len(goals) != 1 || goals[0] != "house" {
		t.Fatalf("Load() = %v, %v, %v", goals, found, err)
	}
	if pinger, ok := res.Store.(storage.Pinger); !ok || pinger.Ping(ctx) != nil {
		t.Error("sqlite store should answer Ping")
	}
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	if _, err := quietFactory().Create(context.Background(), Config{Type: SupabaseBackend}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestResultCloseWithoutCleanup(t *testing.T) {
	var nilResult *Result
	if err := nilResult.Close(); err != nil {
		t.Fatal(err)
	}
	if err := (&Result{Store: memory.New()}).Close(); err != nil {
		t.Fatal(err)
	}
}
