// Package notify delivers limit alerts and bill reminders to the user.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// Notifier is implemented by every delivery channel.
type Notifier interface {
	NotifyLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error
	SendBillReminders(ctx context.Context, bills []finance.BillView) error
}

// FormatLimitAlert renders a limit alert as a short plain-text message.
func FormatLimitAlert(msg *amqp.LimitAlertMessage, f *core.Formatter) string {
	head := "Spending limit warning"
	if msg.Level == string(finance.LevelExceeded) {
		head = "Spending limit exceeded"
	}
	return fmt.Sprintf("%s: %s\nSpent %s of %s this %s (%.0f%%)",
		head,
		msg.Category,
		f.Format(msg.Spent),
		f.Format(msg.Amount),
		periodNoun(msg.Period),
		msg.Percentage)
}

func periodNoun(p string) string {
	switch core.Period(p) {
	case core.Weekly:
		return "week"
	case core.Yearly:
		return "year"
	}
	return "month"
}

// FormatBillReminders renders one line per bill.
func FormatBillReminders(bills []finance.BillView, f *core.Formatter) string {
	var b strings.Builder
	b.WriteString("Bill reminders:")
	for _, v := range bills {
		fmt.Fprintf(&b, "\n- %s %s: %s", v.Name, f.Format(v.Amount), describeDue(v))
	}
	return b.String()
}

func describeDue(v finance.BillView) string {
	switch v.Status {
	case finance.BillOverdue:
		if v.DaysLeft == -1 {
			return "overdue by 1 day"
		}
		return fmt.Sprintf("overdue by %d days", -v.DaysLeft)
	case finance.BillDueToday:
		return "due today"
	case finance.BillDueTomorrow:
		return "due tomorrow"
	}
	return fmt.Sprintf("due in %d days (%s)", v.DaysLeft, v.DueDate.Format("Jan 2"))
}

// LogNotifier writes notifications to the structured log. It is used when no
// chat channel is configured.
type LogNotifier struct {
	logger    *slog.Logger
	formatter *core.Formatter
}

func NewLogNotifier(logger *slog.Logger, f *core.Formatter) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger, formatter: f}
}

func (n *LogNotifier) NotifyLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error {
	n.logger.WarnContext(ctx, "Limit alert",
		"category", msg.Category,
		"level", msg.Level,
		"percentage", msg.Percentage,
		"message", FormatLimitAlert(msg, n.formatter))
	return nil
}

func (n *LogNotifier) SendBillReminders(ctx context.Context, bills []finance.BillView) error {
	for _, v := range bills {
		n.logger.InfoContext(ctx, "Bill reminder",
			"bill", v.Name,
			"status", v.Status,
			"due", v.DueDate.Format("2006-01-02"),
			"amount", n.formatter.Format(v.Amount))
	}
	return nil
}
