package notification

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Telegram is a notify service backed by an already-authorized bot client.
type Telegram struct {
	client  *tgbotapi.BotAPI
	chatIDs []int64
}

func (t *Telegram) SetClient(client *tgbotapi.BotAPI) {
	t.client = client
}

// AddReceivers registers the chat IDs a notification goes to.
func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

// Send delivers subject and message to every registered chat.
func (t Telegram) Send(ctx context.Context, subject, message string) error {
	text := subject + "\n" + message
	for _, chatID := range t.chatIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg := tgbotapi.NewMessage(chatID, text)
			if _, err := t.client.Send(msg); err != nil {
				return errors.Wrapf(err, "sending message to chat %d", chatID)
			}
		}
	}
	return nil
}
