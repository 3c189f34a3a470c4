package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"company-research-agent/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier pings an operator chat when a research job reaches a
// terminal state. Delivery is best-effort.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram notifier: token and chat_id required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) NotifyJobFinished(ctx context.Context, jobID, status, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("research job %s finished: %s", jobID, status)
	if summary != "" {
		text += "\n" + summary
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.bot.Send(msg)
	return err
}

// NoopNotifier is used when no notify config is present.
type NoopNotifier struct{}

func (NoopNotifier) NotifyJobFinished(ctx context.Context, jobID, status, summary string) error {
	return nil
}
