// Package engine runs the commit/delete flow for reminders: destination
// normalization, minute rounding, local notification scheduling, and the
// external mirror write, in that order. Local notification scheduling never
// depends on external-store success.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/destination"
	"github.com/quickremind/quickremind/internal/extstore"
	"github.com/quickremind/quickremind/internal/models"
	"github.com/quickremind/quickremind/internal/notify"
	"github.com/quickremind/quickremind/internal/rounding"
	"github.com/quickremind/quickremind/internal/settings"
)

// ReminderStore persists reminder records.
type ReminderStore interface {
	Upsert(ctx context.Context, r *models.Reminder) error
	Delete(ctx context.Context, id uuid.UUID, userID int64) error
	GetAfter(ctx context.Context, after time.Time) ([]*models.Reminder, error)
}

// SettingsStore reads per-user preferences at call time.
type SettingsStore interface {
	For(ctx context.Context, userID int64) (settings.Prefs, error)
	ClearCalendarContainer(ctx context.Context, userID int64) error
	ClearTaskListContainer(ctx context.Context, userID int64) error
}

type Engine struct {
	reminders ReminderStore
	prefs     SettingsStore
	notify    *notify.Scheduler
	calendar  *extstore.Sync
	tasks     *extstore.Sync
	log       *zap.SugaredLogger

	inflight sync.Map // uuid.UUID -> *sync.Mutex
}

func New(reminders ReminderStore, prefs SettingsStore, scheduler *notify.Scheduler, calendar, tasks *extstore.Sync, log *zap.SugaredLogger) *Engine {
	return &Engine{
		reminders: reminders,
		prefs:     prefs,
		notify:    scheduler,
		calendar:  calendar,
		tasks:     tasks,
		log:       log,
	}
}

// lock serializes operations per reminder id. A delete racing an in-flight
// upsert for the same id queues behind it: last write wins.
func (e *Engine) lock(id uuid.UUID) func() {
	v, _ := e.inflight.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// NewDraft builds a fresh reminder the way an add action does: empty title,
// due one minute from now snapped to the user's grid, default destination
// normalized against the current tiers.
func (e *Engine) NewDraft(ctx context.Context, userID int64, category string) (models.Reminder, error) {
	prefs, err := e.prefs.For(ctx, userID)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("loading settings: %w", err)
	}
	return models.Reminder{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     rounding.Round(time.Now().Add(time.Minute), prefs.GridMinutes, prefs.RoundingMode),
		Category: category,
		Destination: destination.Normalize(prefs.DefaultDestination,
			e.calendar.Tier(ctx), e.tasks.Tier(ctx)),
	}, nil
}

// Commit persists an edit and returns the updated reminder value. External
// mirror failures are logged and degrade to "local only"; they never fail
// the commit and never block the local notification.
func (e *Engine) Commit(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	unlock := e.lock(r.ID)
	defer unlock()

	prefs, err := e.prefs.For(ctx, r.UserID)
	if err != nil {
		return r, fmt.Errorf("loading settings: %w", err)
	}

	// Tiers are re-derived from the stores on every commit; a grant may
	// have arrived since the last one.
	eventsTier := e.calendar.Tier(ctx)
	tasksTier := e.tasks.Tier(ctx)
	r.Destination = destination.Normalize(r.Destination, eventsTier, tasksTier)

	if strings.TrimSpace(r.Title) == "" {
		r.Title = models.PlaceholderTitle
	}
	r.Date = rounding.Round(r.Date, prefs.GridMinutes, prefs.RoundingMode)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	// Local notification first: it must work even when every mirror fails.
	e.notify.Schedule(r)

	switch r.Destination {
	case models.DestinationCalendar:
		r = e.mirror(ctx, r, e.calendar, prefs.CalendarContainerID)
		r = e.unmirror(ctx, r, e.tasks)
	case models.DestinationTasks:
		r = e.mirror(ctx, r, e.tasks, prefs.TaskListContainerID)
		r = e.unmirror(ctx, r, e.calendar)
	default:
		r = e.unmirror(ctx, r, e.calendar)
		r = e.unmirror(ctx, r, e.tasks)
	}

	if err := e.reminders.Upsert(ctx, &r); err != nil {
		return r, fmt.Errorf("persisting reminder: %w", err)
	}
	return r, nil
}

// Delete removes the external mirrors first, then the pending notification,
// then the local record.
func (e *Engine) Delete(ctx context.Context, r models.Reminder) error {
	unlock := e.lock(r.ID)
	defer unlock()

	if err := e.calendar.Delete(ctx, r.Calendar); err != nil {
		e.log.Warnw("calendar mirror not removed", "reminder", r.ID, "error", err)
	}
	if err := e.tasks.Delete(ctx, r.Tasks); err != nil {
		e.log.Warnw("task mirror not removed", "reminder", r.ID, "error", err)
	}
	e.notify.Cancel(r.ID)

	if err := e.reminders.Delete(ctx, r.ID, r.UserID); err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}
	return nil
}

// Restore re-registers notifications for every stored reminder after a
// restart. Past-due reminders fire immediately rather than silently never.
func (e *Engine) Restore(ctx context.Context) error {
	reminders, err := e.reminders.GetAfter(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("loading reminders: %w", err)
	}
	for _, r := range reminders {
		e.notify.Schedule(*r)
	}
	e.log.Infof("restored %d notifications", len(reminders))
	return nil
}

// WritableContainers lists the pickable containers for one backend and
// clears a stored selection whose container no longer exists.
func (e *Engine) WritableContainers(ctx context.Context, userID int64, kind access.ResourceKind) ([]extstore.Container, error) {
	prefs, err := e.prefs.For(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	sync, selected := e.calendar, prefs.CalendarContainerID
	if kind == access.KindTasks {
		sync, selected = e.tasks, prefs.TaskListContainerID
	}

	containers, keep, err := sync.WritableContainers(ctx, selected)
	if err != nil {
		return nil, err
	}
	if keep == "" && selected != "" {
		var clearErr error
		if kind == access.KindTasks {
			clearErr = e.prefs.ClearTaskListContainer(ctx, userID)
		} else {
			clearErr = e.prefs.ClearCalendarContainer(ctx, userID)
		}
		if clearErr != nil {
			e.log.Warnw("failed to clear stale container selection", "kind", kind, "error", clearErr)
		}
	}
	return containers, nil
}

// Tiers reports the current permission tier per resource kind.
func (e *Engine) Tiers(ctx context.Context) (events, tasks access.Tier) {
	return e.calendar.Tier(ctx), e.tasks.Tier(ctx)
}

// RequestAccess asks one backend for authorization and reports whether it
// was granted.
func (e *Engine) RequestAccess(ctx context.Context, kind access.ResourceKind) (bool, error) {
	if kind == access.KindTasks {
		return e.tasks.RequestAccess(ctx)
	}
	return e.calendar.RequestAccess(ctx)
}

func (e *Engine) mirror(ctx context.Context, r models.Reminder, sync *extstore.Sync, selectedContainerID string) models.Reminder {
	kind := sync.Kind()
	ref, err := sync.Upsert(ctx, r, r.RefFor(kind), selectedContainerID)
	if err != nil {
		e.log.Warnw("external mirror not updated",
			"backend", kind, "reminder", r.ID, "error", err)
		return r
	}
	r.SetRefFor(kind, ref)
	return r
}

func (e *Engine) unmirror(ctx context.Context, r models.Reminder, sync *extstore.Sync) models.Reminder {
	kind := sync.Kind()
	if r.RefFor(kind) == nil {
		return r
	}
	if err := sync.Delete(ctx, r.RefFor(kind)); err != nil {
		e.log.Warnw("external mirror not removed",
			"backend", kind, "reminder", r.ID, "error", err)
		return r
	}
	r.SetRefFor(kind, nil)
	return r
}
