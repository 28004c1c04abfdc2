// Package bot wires the Telegram update loop to the reminder engine.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/ai"
	"github.com/quickremind/quickremind/internal/bot/handlers"
	"github.com/quickremind/quickremind/internal/engine"
	"github.com/quickremind/quickremind/internal/repository"
	"github.com/quickremind/quickremind/internal/settings"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
	log      *zap.SugaredLogger
}

func New(api *tgbotapi.BotAPI, eng *engine.Engine, reminders *repository.ReminderRepository,
	categories *repository.CategoryRepository, prefs *settings.Store, aiClient *ai.Client,
	log *zap.SugaredLogger) *Bot {
	return &Bot{
		api:      api,
		handlers: handlers.New(api, eng, reminders, categories, prefs, aiClient, log),
		log:      log,
	}
}

// NewAPI connects to Telegram with the given token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return api, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.log.Infof("authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}

	b.handlers.HandleMessage(ctx, update.Message)
}
