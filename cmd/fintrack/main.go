package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp)

	ledger, closeLedger, err := cli.OpenLedger(context.Background(), cfg, logger, cli.LedgerOptions{PublishAlerts: true})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeLedger()

	cacheManager := cache.NewManager()
	cacheManager.Register(ledger.ReportCache())
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	publisher, err := reportPublisher(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		Logger:             logger,
		Formatter:          core.NewFormatter(cfg.Currency, cfg.Locale),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Publisher:          publisher,
	})

	ctx, _, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sheets", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// reportPublisher returns nil when no spreadsheet is configured.
func reportPublisher(ctx context.Context, cfg *config.Config) (sheets.ReportPublisher, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}
	return gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
}
