package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

// Notifier delivers membership notifications to users who linked Telegram.
type Notifier struct {
	api Sender
}

func NewNotifier(api Sender) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Notify(ctx context.Context, user *models.User, text string) error {
	if user == nil || user.TelegramID == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.api.Send(tgbotapi.NewMessage(*user.TelegramID, text))
	return err
}
