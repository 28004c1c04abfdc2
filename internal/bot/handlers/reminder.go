package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quickremind/quickremind/internal/models"
)

func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /add <HH:MM | YYYY-MM-DD HH:MM> <title> [#category]\nExample: /add 15:30 standup #work")
		return
	}

	date, title, err := parseDateAndTitle(args)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Could not read the time. Use HH:MM or YYYY-MM-DD HH:MM.")
		return
	}
	title, category := splitCategory(title)

	draft, err := h.engine.NewDraft(ctx, msg.From.ID, category)
	if err != nil {
		h.log.Errorw("failed to build draft", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	draft.Title = title
	draft.Date = date

	h.commitAndReply(ctx, msg.Chat.ID, draft)
}

func (h *Handlers) commitAndReply(ctx context.Context, chatID int64, draft models.Reminder) {
	r, err := h.engine.Commit(ctx, draft)
	if err != nil {
		h.log.Errorw("failed to commit reminder", "user", draft.UserID, "error", err)
		h.sendMessage(chatID, "Could not save the reminder, please try again.")
		return
	}
	if r.Category != "" {
		if _, err := h.categories.GetOrCreateByName(ctx, r.UserID, r.Category); err == nil {
			if err := h.categories.IncrementUsage(ctx, r.UserID, r.Category); err != nil {
				h.log.Warnw("failed to bump category usage", "user", r.UserID, "error", err)
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏰ *%s*\n📅 %s", r.DisplayTitle(), r.Date.Format("2006-01-02 15:04"))
	if r.Category != "" {
		fmt.Fprintf(&sb, "\n🏷 %s", r.Category)
	}
	switch r.Destination {
	case models.DestinationCalendar:
		sb.WriteString("\n📆 mirrored to your calendar")
	case models.DestinationTasks:
		sb.WriteString("\n☑️ mirrored to your task list")
	}
	h.sendMessage(chatID, sb.String())
}

func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := h.reminders.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.log.Errorw("failed to list reminders", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not load your reminders, please try again.")
		return
	}
	if len(reminders) == 0 {
		h.sendMessage(msg.Chat.ID, "⏰ No reminders yet")
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ *Reminders*\n\n")
	for i, r := range reminders {
		fmt.Fprintf(&sb, "*%d.* %s\n   📅 %s", i+1, r.DisplayTitle(), r.Date.Format("2006-01-02 15:04"))
		if r.Category != "" {
			fmt.Fprintf(&sb, "  🏷 %s", r.Category)
		}
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	n, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || n < 1 {
		h.sendMessage(msg.Chat.ID, "Usage: /del <number> (see /list)")
		return
	}

	reminders, err := h.reminders.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.log.Errorw("failed to list reminders", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not load your reminders, please try again.")
		return
	}
	if n > len(reminders) {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("There is no reminder %d, see /list", n))
		return
	}

	r := reminders[n-1]
	if err := h.engine.Delete(ctx, *r); err != nil {
		h.log.Errorw("failed to delete reminder", "user", msg.From.ID, "reminder", r.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not delete the reminder, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Deleted \"%s\"", r.DisplayTitle()))
}

// parseDateAndTitle reads a leading "HH:MM" or "YYYY-MM-DD HH:MM" and returns
// the rest as the title. A bare time of day that already passed today means
// tomorrow.
func parseDateAndTitle(args string) (time.Time, string, error) {
	now := time.Now()

	parts := strings.SplitN(args, " ", 3)
	if len(parts) >= 3 {
		if t, err := time.ParseInLocation("2006-01-02 15:04", parts[0]+" "+parts[1], now.Location()); err == nil {
			return t, strings.TrimSpace(parts[2]), nil
		}
	}

	parts = strings.SplitN(args, " ", 2)
	if len(parts) < 2 {
		return time.Time{}, "", fmt.Errorf("missing title")
	}
	t, err := time.Parse("15:04", parts[0])
	if err != nil {
		return time.Time{}, "", err
	}
	result := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if result.Before(now) {
		result = result.Add(24 * time.Hour)
	}
	return result, strings.TrimSpace(parts[1]), nil
}

// splitCategory strips a trailing "#tag" from the title.
func splitCategory(title string) (string, string) {
	i := strings.LastIndex(title, "#")
	if i < 0 {
		return title, ""
	}
	tag := strings.TrimSpace(title[i+1:])
	if tag == "" || strings.Contains(tag, " ") {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), tag
}
