package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// messageSender is the subset of tgbotapi.BotAPI used here.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends notifications to a single chat.
type Telegram struct {
	api       messageSender
	chatID    int64
	formatter *core.Formatter
}

// NewTelegram authenticates the bot token and returns a notifier for chatID.
func NewTelegram(token string, chatID int64, f *core.Formatter) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("Telegram notifier authorized", "bot", api.Self.UserName, "chat_id", chatID)
	return newTelegram(api, chatID, f), nil
}

func newTelegram(api messageSender, chatID int64, f *core.Formatter) *Telegram {
	return &Telegram{api: api, chatID: chatID, formatter: f}
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *Telegram) NotifyLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error {
	return t.send(ctx, FormatLimitAlert(msg, t.formatter))
}

func (t *Telegram) SendBillReminders(ctx context.Context, bills []finance.BillView) error {
	if len(bills) == 0 {
		return nil
	}
	return t.send(ctx, FormatBillReminders(bills, t.formatter))
}
