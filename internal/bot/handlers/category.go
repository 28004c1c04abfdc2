package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handlers) handleCategories(ctx context.Context, msg *tgbotapi.Message) {
	categories, err := h.categories.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.log.Errorw("failed to list categories", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not load your categories, please try again.")
		return
	}
	if len(categories) == 0 {
		h.sendMessage(msg.Chat.ID, "🏷 No categories yet. Add one with a #tag on a reminder.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏷 *Categories*\n\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "• %s (%d)\n", c.CategoryName, c.UsageCount)
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// handleRenameCategory renames the category and moves every reminder that
// carried the old name.
func (h *Handlers) handleRenameCategory(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		h.sendMessage(msg.Chat.ID, "Usage: /renamecat <old> <new>")
		return
	}
	from, to := parts[0], parts[1]

	if err := h.categories.Rename(ctx, msg.From.ID, from, to); err != nil {
		h.log.Errorw("failed to rename category", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not rename the category, please try again.")
		return
	}
	if err := h.reminders.RenameCategory(ctx, msg.From.ID, from, to); err != nil {
		h.log.Errorw("failed to move reminders to renamed category", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Category renamed, but some reminders may still show the old name.")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Renamed %s to %s", from, to))
}
