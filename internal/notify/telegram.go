package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier delivers notifications as Telegram messages. The
// previously sent notification in the same chat is deleted first so repeated
// fires replace instead of flood.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
	log *zap.SugaredLogger

	mu   sync.Mutex
	last map[int64]int
}

func NewTelegramNotifier(api *tgbotapi.BotAPI, log *zap.SugaredLogger) *TelegramNotifier {
	return &TelegramNotifier{api: api, log: log, last: make(map[int64]int)}
}

func (n *TelegramNotifier) Notify(ctx context.Context, userID int64, c Content) error {
	n.mu.Lock()
	lastID, hasLast := n.last[userID]
	n.mu.Unlock()

	if hasLast {
		if _, err := n.api.Request(tgbotapi.NewDeleteMessage(userID, lastID)); err != nil {
			// The old message may have been deleted by the user already.
			n.log.Debugw("failed to delete previous notification", "chat", userID, "error", err)
		}
	}

	msg := tgbotapi.NewMessage(userID, "⏰ "+c.Title+"\n"+c.Body)
	msg.DisableNotification = c.Sound == ""

	sent, err := n.api.Send(msg)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	n.mu.Lock()
	n.last[userID] = sent.MessageID
	n.mu.Unlock()
	return nil
}
