package handlers

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleQuickAdd parses free-form text into a reminder draft and commits it.
func (h *Handlers) handleQuickAdd(ctx context.Context, msg *tgbotapi.Message) {
	input := strings.TrimSpace(msg.Text)
	if input == "" {
		return
	}
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Quick-add is not configured; use /add instead.")
		return
	}

	parsed, err := h.ai.ParseReminder(ctx, input, time.Now())
	if err != nil {
		h.log.Warnw("quick-add parse failed", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "I could not read that as a reminder; try /add <time> <title>.")
		return
	}
	date, err := time.Parse(time.RFC3339, parsed.Date)
	if err != nil {
		h.log.Warnw("quick-add returned a bad date", "user", msg.From.ID, "date", parsed.Date)
		h.sendMessage(msg.Chat.ID, "I could not work out the time; try /add <time> <title>.")
		return
	}

	draft, err := h.engine.NewDraft(ctx, msg.From.ID, parsed.Category)
	if err != nil {
		h.log.Errorw("failed to build draft", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	draft.Title = parsed.Title
	draft.Date = date.In(time.Local)

	h.commitAndReply(ctx, msg.Chat.ID, draft)
}
