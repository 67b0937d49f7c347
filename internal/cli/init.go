// Package cli holds the start-up steps shared by the fintrack binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// LoadAndValidateConfig loads configuration, installs the logger it describes
// and exits the process when the configuration is invalid.
func LoadAndValidateConfig(component string) (*config.Config, *applog.Logger) {
	cfg := config.Load()
	logger := applog.Setup(cfg.LogLevel, cfg.LogFormat, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// LedgerOptions selects the optional parts of OpenLedger.
type LedgerOptions struct {
	// PublishAlerts connects to AMQP_URL, when set, so limit alerts reach the
	// alerts worker.
	PublishAlerts bool
}

// OpenLedger opens the configured backend and builds a LedgerService on it.
// The returned cleanup closes everything that was opened.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger, lo LedgerOptions) (*services.LedgerService, func(), error) {
	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{store.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Cleanup failed", applog.FieldError, err)
			}
		}
	}

	opts := services.Options{
		EmergencyFundDivisor: decimal.NewFromFloat(cfg.EmergencyFundDivisor),
		CacheTTL:             cfg.CacheTTL,
		CacheSize:            cfg.CacheSize,
	}
	if lo.PublishAlerts && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, limit alerts will only be logged", applog.FieldError, err)
		} else {
			closers = append(closers, client.Close)
			opts.Publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	return services.NewLedgerService(store.Store, opts), cleanup, nil
}

// GracefulShutdown runs cleanup and then cancels the returned context when
// SIGINT or SIGTERM arrives or stop is called. done is closed afterwards.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (ctx context.Context, stop func(), done <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	trigger := make(chan struct{})
	var once sync.Once
	stop = func() { once.Do(func() { close(trigger) }) }

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-trigger:
			logger.Info("Shutdown requested")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
		close(finished)
	}()

	return ctx, stop, finished
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
