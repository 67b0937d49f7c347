package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)
	logger.Info("Starting recurring-worker")

	// Generated expenses go through the same limit checks as manual ones.
	ledger, closeLedger, err := cli.OpenLedger(context.Background(), cfg, logger, cli.LedgerOptions{PublishAlerts: true})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeLedger()

	processor := services.NewRecurringProcessor(ledger)
	interval := cfg.RecurringInterval
	logger.Info("Recurring processor configured", "interval", interval, "backend", cfg.DataBackend)

	ctx, _, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	run := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.ErrorContext(ctx, "Recurring processing failed", applog.FieldError, err)
			return
		}
		logger.InfoContext(ctx, "Recurring processing complete",
			applog.FieldCount, count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	run(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
