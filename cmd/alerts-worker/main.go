package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)
	logger.Info("Starting alerts-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the alerts worker")
		os.Exit(1)
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram notifier", applog.FieldError, err)
		os.Exit(1)
	}

	ledger, closeLedger, err := cli.OpenLedger(context.Background(), cfg, logger, cli.LedgerOptions{})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeLedger()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reminders := services.NewReminderProcessor(ledger, notifier,
		services.ReminderProcessorConfig{Interval: cfg.ReminderInterval})
	alerts := worker.NewAlertWorker(amqpClient, notifier, logger)

	ctx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := reminders.Stop(shutdownCtx); err != nil {
			logger.Error("Reminder processor shutdown error", applog.FieldError, err)
		}
	})

	if err := reminders.Start(ctx); err != nil {
		logger.Error("Failed to start reminder processor", applog.FieldError, err)
		os.Exit(1)
	}

	go func() {
		if err := alerts.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Alert consumption failed", applog.FieldError, err)
		}
		stop()
	}()

	cli.WaitForShutdown(ctx, done)

	stats := alerts.GetStats()
	logger.Info("Alerts-worker shutdown complete",
		"delivered", stats.Delivered,
		"dropped", stats.Dropped,
		"failed", stats.Failed)
}

func newNotifier(cfg *config.Config, logger *applog.Logger) (notify.Notifier, error) {
	formatter := core.NewFormatter(cfg.Currency, cfg.Locale)
	if cfg.TelegramToken == "" {
		logger.Info("Telegram disabled - notifications go to the log")
		return notify.NewLogNotifier(logger.WithComponent(applog.ComponentNotify).Logger, formatter), nil
	}
	return notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, formatter)
}
