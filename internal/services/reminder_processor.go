package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/finance"
)

// ReminderSender delivers the bills that need attention.
type ReminderSender interface {
	SendBillReminders(ctx context.Context, bills []finance.BillView) error
}

type ReminderProcessorConfig struct {
	// Interval between reminder runs (default: 24h)
	Interval time.Duration
}

func DefaultReminderProcessorConfig() ReminderProcessorConfig {
	return ReminderProcessorConfig{Interval: 24 * time.Hour}
}

// ReminderProcessor periodically sends reminders for overdue bills and bills
// due within a week.
type ReminderProcessor struct {
	ledger *LedgerService
	sender ReminderSender
	config ReminderProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderProcessor(ledger *LedgerService, sender ReminderSender, config ReminderProcessorConfig) *ReminderProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultReminderProcessorConfig().Interval
	}
	return &ReminderProcessor{
		ledger: ledger,
		sender: sender,
		config: config,
	}
}

// Start runs one reminder pass immediately and then on every interval.
// Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	slog.InfoContext(ctx, "Reminder processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion. After a
// timeout Stop may be called again to keep waiting.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Reminder processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReminderProcessor) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.runOnce(ctx)
	for {
		select {
		case <-ticker.C:
			p.runOnce(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *ReminderProcessor) runOnce(ctx context.Context) {
	if _, err := p.SendReminders(ctx); err != nil {
		slog.ErrorContext(ctx, "Bill reminder run failed", "error", err)
	}
}

// SendReminders sends one batch of reminders and returns its size.
func (p *ReminderProcessor) SendReminders(ctx context.Context) (int, error) {
	bills, err := p.ledger.BillsNeedingReminder(ctx)
	if err != nil {
		return 0, fmt.Errorf("load bills: %w", err)
	}
	if len(bills) == 0 {
		slog.DebugContext(ctx, "No bills need a reminder")
		return 0, nil
	}
	if err := p.sender.SendBillReminders(ctx, bills); err != nil {
		return 0, fmt.Errorf("send reminders: %w", err)
	}
	slog.InfoContext(ctx, "Bill reminders sent", "count", len(bills))
	return len(bills), nil
}
