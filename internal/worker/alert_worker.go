// Package worker consumes limit alerts from the message queue and hands them
// to a notification channel.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/finance"
	applog "fintrack/internal/log"
)

// AlertSource delivers queued limit alerts to a handler until ctx is done.
type AlertSource interface {
	ConsumeLimitAlerts(ctx context.Context, handler func(context.Context, *amqp.LimitAlertMessage) error) error
}

// AlertNotifier sends one alert to the user.
type AlertNotifier interface {
	NotifyLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error
}

// DefaultMaxAge is how long a queued alert stays worth sending.
const DefaultMaxAge = 24 * time.Hour

// AlertWorker forwards limit alerts from an AlertSource to an AlertNotifier.
type AlertWorker struct {
	source   AlertSource
	notifier AlertNotifier
	logger   *applog.Logger
	maxAge   time.Duration
	now      func() time.Time

	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// Stats counts what the worker did with the alerts it received.
type Stats struct {
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
}

func NewAlertWorker(source AlertSource, notifier AlertNotifier, logger *applog.Logger) *AlertWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &AlertWorker{
		source:   source,
		notifier: notifier,
		logger:   logger.WithComponent(applog.ComponentWorker),
		maxAge:   DefaultMaxAge,
		now:      time.Now,
	}
}

// WithMaxAge changes how old an alert may be before it is dropped. Zero or
// negative keeps every alert.
func (w *AlertWorker) WithMaxAge(d time.Duration) *AlertWorker {
	w.maxAge = d
	return w
}

// WithClock replaces time.Now, for tests.
func (w *AlertWorker) WithClock(now func() time.Time) *AlertWorker {
	w.now = now
	return w
}

// Run consumes alerts until ctx is cancelled.
func (w *AlertWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Alert worker started", "max_age", w.maxAge)
	err := w.source.ConsumeLimitAlerts(ctx, w.HandleLimitAlert)
	w.logger.InfoContext(ctx, "Alert worker stopped", applog.FieldError, err)
	return err
}

// HandleLimitAlert validates msg and notifies the user. Malformed and stale
// alerts are acknowledged without a notification; a notifier failure is
// returned so the message is redelivered.
func (w *AlertWorker) HandleLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error {
	if err := validate(msg); err != nil {
		w.dropped.Add(1)
		w.logger.WarnContext(ctx, "Dropping invalid limit alert", applog.FieldError, err)
		return nil
	}
	if w.maxAge > 0 && !msg.Timestamp.IsZero() && w.now().Sub(msg.Timestamp) > w.maxAge {
		w.dropped.Add(1)
		w.logger.InfoContext(ctx, "Dropping stale limit alert",
			"limit_id", msg.LimitID,
			"age", w.now().Sub(msg.Timestamp).Round(time.Second))
		return nil
	}

	if err := w.notifier.NotifyLimitAlert(ctx, msg); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("notify limit alert %s: %w", msg.LimitID, err)
	}
	w.delivered.Add(1)
	w.logger.InfoContext(ctx, "Limit alert delivered",
		"limit_id", msg.LimitID,
		applog.FieldCategory, msg.Category,
		"level", msg.Level)
	return nil
}

func validate(msg *amqp.LimitAlertMessage) error {
	if msg == nil {
		return fmt.Errorf("empty message")
	}
	if msg.Category == "" {
		return fmt.Errorf("alert %s has no category", msg.LimitID)
	}
	switch finance.AlertLevel(msg.Level) {
	case finance.LevelWarning, finance.LevelExceeded:
		return nil
	}
	return fmt.Errorf("alert %s has unknown level %q", msg.LimitID, msg.Level)
}

// GetStats returns the counters accumulated since the worker was created.
func (w *AlertWorker) GetStats() Stats {
	return Stats{
		Delivered: w.delivered.Load(),
		Dropped:   w.dropped.Load(),
		Failed:    w.failed.Load(),
	}
}
