package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/destination"
	"github.com/quickremind/quickremind/internal/extstore"
	"github.com/quickremind/quickremind/internal/models"
	"github.com/quickremind/quickremind/internal/rounding"
)

func (h *Handlers) handleDestination(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /dest <app_only | calendar | tasks>")
		return
	}

	d := models.ParseDestination(arg)
	if string(d) != arg {
		h.sendMessage(msg.Chat.ID, "Usage: /dest <app_only | calendar | tasks>")
		return
	}

	events, tasks := h.engine.Tiers(ctx)
	if destination.Normalize(d, events, tasks) != d {
		// Ask the backend once before giving up; the grant may just never
		// have been requested.
		kind := access.KindEvents
		if d == models.DestinationTasks {
			kind = access.KindTasks
		}
		if granted, err := h.engine.RequestAccess(ctx, kind); err != nil || !granted {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf(
				"No full access to %s; new reminders would stay app-only. Grant access first.", d))
			return
		}
		events, tasks = h.engine.Tiers(ctx)
		if destination.Normalize(d, events, tasks) != d {
			h.sendMessage(msg.Chat.ID, fmt.Sprintf(
				"Access to %s is not full; new reminders would stay app-only.", d))
			return
		}
	}

	if err := h.settings.SetDefaultDestination(ctx, msg.From.ID, d); err != nil {
		h.log.Errorw("failed to save destination", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not save the setting, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, "✅ Default destination: "+string(d))
}

func (h *Handlers) handleGrid(ctx context.Context, msg *tgbotapi.Message) {
	n, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || !validGrid(n) {
		h.sendMessage(msg.Chat.ID, "Usage: /grid <1 | 5 | 15 | 30 | 60>")
		return
	}
	if err := h.settings.SetGridMinutes(ctx, msg.From.ID, n); err != nil {
		h.log.Errorw("failed to save grid", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not save the setting, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Reminder times snap to %d-minute steps", n))
}

func (h *Handlers) handleRoundingMode(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	mode := rounding.ParseMode(arg)
	if arg == "" || string(mode) != arg {
		h.sendMessage(msg.Chat.ID, "Usage: /roundmode <nearest | up | down>")
		return
	}
	if err := h.settings.SetRoundingMode(ctx, msg.From.ID, mode); err != nil {
		h.log.Errorw("failed to save rounding mode", "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not save the setting, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, "✅ Rounding mode: "+string(mode))
}

func (h *Handlers) handleCalendars(ctx context.Context, msg *tgbotapi.Message) {
	h.listContainers(ctx, msg, access.KindEvents, "📆 *Calendars*", "/setcalendar")
}

func (h *Handlers) handleTaskLists(ctx context.Context, msg *tgbotapi.Message) {
	h.listContainers(ctx, msg, access.KindTasks, "☑️ *Task lists*", "/settasklist")
}

func (h *Handlers) listContainers(ctx context.Context, msg *tgbotapi.Message, kind access.ResourceKind, header, pickCmd string) {
	containers, err := h.engine.WritableContainers(ctx, msg.From.ID, kind)
	if err != nil {
		h.log.Errorw("failed to list containers", "kind", kind, "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not reach the store. Check the access grant and try again.")
		return
	}
	if len(containers) == 0 {
		h.sendMessage(msg.Chat.ID, "No writable entries. Full access is needed to pick one.")
		return
	}

	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for _, c := range containers {
		fmt.Fprintf(&sb, "• %s\n  `%s`\n", c.Name, c.ID)
	}
	sb.WriteString("\nPick one with " + pickCmd + " <id>")
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleSetCalendar(ctx context.Context, msg *tgbotapi.Message) {
	h.setContainer(ctx, msg, access.KindEvents)
}

func (h *Handlers) handleSetTaskList(ctx context.Context, msg *tgbotapi.Message) {
	h.setContainer(ctx, msg, access.KindTasks)
}

func (h *Handlers) setContainer(ctx context.Context, msg *tgbotapi.Message, kind access.ResourceKind) {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		h.sendMessage(msg.Chat.ID, "Give the id from the list command.")
		return
	}

	containers, err := h.engine.WritableContainers(ctx, msg.From.ID, kind)
	if err != nil {
		h.log.Errorw("failed to list containers", "kind", kind, "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not reach the store. Check the access grant and try again.")
		return
	}
	var picked *extstore.Container
	for i := range containers {
		if containers[i].ID == id {
			picked = &containers[i]
			break
		}
	}
	if picked == nil {
		h.sendMessage(msg.Chat.ID, "That id is not in the writable list.")
		return
	}

	if kind == access.KindTasks {
		err = h.settings.SetTaskListContainer(ctx, msg.From.ID, id)
	} else {
		err = h.settings.SetCalendarContainer(ctx, msg.From.ID, id)
	}
	if err != nil {
		h.log.Errorw("failed to save container selection", "kind", kind, "user", msg.From.ID, "error", err)
		h.sendMessage(msg.Chat.ID, "Could not save the setting, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, "✅ Selected "+picked.Name)
}

func validGrid(n int) bool {
	for _, g := range rounding.Grids {
		if g == n {
			return true
		}
	}
	return false
}
