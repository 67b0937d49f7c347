package backend

import (
	"context"
	"fmt"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/supabase"
)

// Factory opens stores from a Config.
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create opens the store selected by config.Type.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLite(ctx, config)
	case SupabaseBackend:
		return f.createSupabase(ctx, config)
	case MemoryBackend:
		return f.createMemory(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) createSupabase(ctx context.Context, config Config) (*Result, error) {
	store, err := supabase.New(config.SupabaseURL, config.SupabaseKey, config.SupabaseTable, config.SupabaseOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Supabase backend",
		"table", config.SupabaseTable,
		"owner", config.SupabaseOwner)
	return &Result{Store: store}, nil
}

func (f *Factory) createMemory(ctx context.Context, config Config) (*Result, error) {
	var store *memory.Store
	if config.DataDirectory == "" {
		store = memory.New()
	} else {
		store = memory.NewFromFiles(config.DataDirectory)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", config.DataDirectory)
	return &Result{Store: store}, nil
}

// Open validates appConfig and opens the backend it selects.
func Open(ctx context.Context, appConfig *config.Config, logger *applog.Logger) (*Result, error) {
	cfg, err := FromAppConfig(appConfig)
	if err != nil {
		return nil, err
	}
	return NewFactory(logger).Create(ctx, cfg)
}
