package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/ai"
	"github.com/quickremind/quickremind/internal/engine"
	"github.com/quickremind/quickremind/internal/repository"
	"github.com/quickremind/quickremind/internal/settings"
)

type Handlers struct {
	api        *tgbotapi.BotAPI
	engine     *engine.Engine
	reminders  *repository.ReminderRepository
	categories *repository.CategoryRepository
	settings   *settings.Store
	ai         *ai.Client
	log        *zap.SugaredLogger
}

func New(api *tgbotapi.BotAPI, eng *engine.Engine, reminders *repository.ReminderRepository,
	categories *repository.CategoryRepository, prefs *settings.Store, aiClient *ai.Client,
	log *zap.SugaredLogger) *Handlers {
	return &Handlers{
		api:        api,
		engine:     eng,
		reminders:  reminders,
		categories: categories,
		settings:   prefs,
		ai:         aiClient,
		log:        log,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "add":
		h.handleAdd(ctx, msg)
	case "list":
		h.handleList(ctx, msg)
	case "del":
		h.handleDelete(ctx, msg)
	case "categories":
		h.handleCategories(ctx, msg)
	case "renamecat":
		h.handleRenameCategory(ctx, msg)
	case "dest":
		h.handleDestination(ctx, msg)
	case "grid":
		h.handleGrid(ctx, msg)
	case "roundmode":
		h.handleRoundingMode(ctx, msg)
	case "calendars":
		h.handleCalendars(ctx, msg)
	case "tasklists":
		h.handleTaskLists(ctx, msg)
	case "setcalendar":
		h.handleSetCalendar(ctx, msg)
	case "settasklist":
		h.handleSetTaskList(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help")
	}
}

// HandleMessage treats any non-command text as a quick-add phrase.
func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.handleQuickAdd(ctx, msg)
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := h.api.Send(msg); err != nil {
		h.log.Warnw("failed to send message", "chat", chatID, "error", err)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	text := `👋 Hi ` + msg.From.FirstName + `!

I keep your reminders, mirror them into Google Calendar or Google Tasks, and ping you here when they are due.

Just type what you want to be reminded about, for example:
• "dentist tuesday 3pm"
• "water the plants in 2 hours #home"

Or use /add for the explicit form. See /help for everything.`
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `📖 *Commands*

*Reminders*
/add <HH:MM | YYYY-MM-DD HH:MM> <title> [#category] - add a reminder
/list - list your reminders
/del <number> - delete a reminder from /list

*Categories*
/categories - list your categories
/renamecat <old> <new> - rename a category everywhere

*Settings*
/dest <app\_only | calendar | tasks> - default destination
/grid <1 | 5 | 15 | 30 | 60> - minute grid for rounding
/roundmode <nearest | up | down> - rounding direction
/calendars - list writable calendars
/setcalendar <id> - pick the target calendar
/tasklists - list writable task lists
/settasklist <id> - pick the target task list

💡 Plain text works too: "call mom tomorrow 9am"`
	h.sendMessage(msg.Chat.ID, text)
}
