package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/extstore"
	"github.com/quickremind/quickremind/internal/extstore/extstoretest"
	"github.com/quickremind/quickremind/internal/models"
	"github.com/quickremind/quickremind/internal/notify"
	"github.com/quickremind/quickremind/internal/rounding"
	"github.com/quickremind/quickremind/internal/settings"
)

type fakeReminderStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{items: make(map[uuid.UUID]models.Reminder)}
}

func (f *fakeReminderStore) Upsert(ctx context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[r.ID] = *r
	return nil
}

func (f *fakeReminderStore) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeReminderStore) GetAfter(ctx context.Context, after time.Time) ([]*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Reminder
	for _, r := range f.items {
		cp := r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeReminderStore) get(id uuid.UUID) (models.Reminder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	return r, ok
}

type fakePrefs struct {
	prefs           settings.Prefs
	clearedCalendar bool
	clearedTasks    bool
}

func (f *fakePrefs) For(ctx context.Context, userID int64) (settings.Prefs, error) {
	return f.prefs, nil
}

func (f *fakePrefs) ClearCalendarContainer(ctx context.Context, userID int64) error {
	f.clearedCalendar = true
	f.prefs.CalendarContainerID = ""
	return nil
}

func (f *fakePrefs) ClearTaskListContainer(ctx context.Context, userID int64) error {
	f.clearedTasks = true
	f.prefs.TaskListContainerID = ""
	return nil
}

type sinkNotifier struct{ fired chan notify.Content }

func (n *sinkNotifier) Notify(ctx context.Context, userID int64, c notify.Content) error {
	select {
	case n.fired <- c:
	default:
	}
	return nil
}

type fixture struct {
	engine    *Engine
	reminders *fakeReminderStore
	prefs     *fakePrefs
	calStore  *extstoretest.Store
	taskStore *extstoretest.Store
	scheduler *notify.Scheduler
	notifier  *sinkNotifier
}

func newFixture() *fixture {
	log := zap.NewNop().Sugar()
	calStore := extstoretest.New(access.KindEvents,
		extstore.Container{ID: "cal-default", Name: "Personal"},
		extstore.Container{ID: "cal-work", Name: "Work"},
	)
	taskStore := extstoretest.New(access.KindTasks,
		extstore.Container{ID: "list-default", Name: "Tasks"},
	)
	notifier := &sinkNotifier{fired: make(chan notify.Content, 16)}
	scheduler := notify.NewScheduler(notifier, log)
	reminders := newFakeReminderStore()
	prefs := &fakePrefs{prefs: settings.Prefs{
		DefaultDestination: models.DestinationAppOnly,
		GridMinutes:        1,
		RoundingMode:       rounding.Nearest,
	}}
	eng := New(reminders, prefs, scheduler,
		extstore.NewSync(calStore, extstore.CalendarEventDuration, log),
		extstore.NewSync(taskStore, extstore.TaskDueOffset, log),
		log)
	return &fixture{
		engine:    eng,
		reminders: reminders,
		prefs:     prefs,
		calStore:  calStore,
		taskStore: taskStore,
		scheduler: scheduler,
		notifier:  notifier,
	}
}

func TestCommitMirrorsToCalendarOnce(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	ctx := context.Background()

	r := models.Reminder{
		ID:          uuid.New(),
		UserID:      7,
		Title:       "Meeting",
		Date:        time.Now().Add(60 * time.Second),
		Category:    "Work",
		Destination: models.DestinationCalendar,
	}

	r, err := f.engine.Commit(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	if r.Calendar == nil {
		t.Fatal("no calendar back-reference after commit")
	}
	if f.calStore.ItemCount() != 1 {
		t.Fatalf("calendar holds %d items, want 1", f.calStore.ItemCount())
	}
	item := f.calStore.Item(r.Calendar.ContainerID, r.Calendar.ItemID)
	if len(item.Alarms) != 1 || !item.Alarms[0].At.Equal(r.Date) {
		t.Errorf("item alarms %v, want exactly one at %v", item.Alarms, r.Date)
	}
	if !f.scheduler.Pending(r.ID) {
		t.Error("no pending local notification for the reminder id")
	}

	// A second commit updates the same external item.
	r.Title = "Meeting 2"
	r, err = f.engine.Commit(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	if f.calStore.ItemCount() != 1 {
		t.Errorf("calendar holds %d items after second commit, want 1", f.calStore.ItemCount())
	}
	stored, _ := f.reminders.get(r.ID)
	if stored.Calendar == nil || stored.Calendar.ItemID != r.Calendar.ItemID {
		t.Errorf("persisted back-reference %+v does not match %+v", stored.Calendar, r.Calendar)
	}
}

func TestCommitPastDateStillNotifies(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()

	r := models.Reminder{
		ID:          uuid.New(),
		UserID:      7,
		Title:       "Late",
		Date:        time.Now().Add(-5 * time.Second),
		Destination: models.DestinationAppOnly,
	}
	if _, err := f.engine.Commit(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	select {
	case <-f.notifier.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("past-due reminder never fired a notification")
	}
}

func TestCommitRoundsDate(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	f.prefs.prefs.GridMinutes = 15
	f.prefs.prefs.RoundingMode = rounding.Up

	date := time.Date(2030, 1, 2, 10, 7, 42, 0, time.UTC)
	r, err := f.engine.Commit(context.Background(), models.Reminder{
		ID: uuid.New(), UserID: 7, Title: "x", Date: date,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2030, 1, 2, 10, 15, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("committed date %v, want rounded %v", r.Date, want)
	}
}

func TestCommitNormalizesDestinationWithoutAccess(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	f.calStore.Status = access.StatusDenied
	f.taskStore.Status = access.StatusWriteOnly

	r, err := f.engine.Commit(context.Background(), models.Reminder{
		ID: uuid.New(), UserID: 7, Title: "x",
		Date:        time.Now().Add(time.Hour),
		Destination: models.DestinationTasks,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Destination != models.DestinationAppOnly {
		t.Errorf("destination %s, want app_only", r.Destination)
	}
	if f.calStore.ItemCount()+f.taskStore.ItemCount() != 0 {
		t.Error("external items written without a full tier")
	}
	if !f.scheduler.Pending(r.ID) {
		t.Error("local notification missing; it must not depend on external access")
	}
}

func TestCommitSwitchingDestinationRemovesOldMirror(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	ctx := context.Background()

	r := models.Reminder{
		ID: uuid.New(), UserID: 7, Title: "x",
		Date:        time.Now().Add(time.Hour),
		Destination: models.DestinationCalendar,
	}
	r, err := f.engine.Commit(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	if f.calStore.ItemCount() != 1 {
		t.Fatalf("setup: calendar holds %d items", f.calStore.ItemCount())
	}

	r.Destination = models.DestinationTasks
	r, err = f.engine.Commit(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	if f.calStore.ItemCount() != 0 {
		t.Errorf("stale calendar mirror not removed on destination switch")
	}
	if f.taskStore.ItemCount() != 1 {
		t.Errorf("task mirror not created on destination switch")
	}
	if r.Calendar != nil {
		t.Errorf("calendar back-reference %+v not cleared", r.Calendar)
	}
	if r.Tasks == nil {
		t.Error("no tasks back-reference after switch")
	}
}

func TestCommitSurvivesRejectedExternalWrite(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	f.calStore.SaveErr = context.DeadlineExceeded

	r, err := f.engine.Commit(context.Background(), models.Reminder{
		ID: uuid.New(), UserID: 7, Title: "x",
		Date:        time.Now().Add(time.Hour),
		Destination: models.DestinationCalendar,
	})
	if err != nil {
		t.Fatalf("commit failed on external rejection: %v", err)
	}
	if r.Calendar != nil {
		t.Error("back-reference set despite rejected write")
	}
	if !f.scheduler.Pending(r.ID) {
		t.Error("local notification lost to an external failure")
	}
	if _, ok := f.reminders.get(r.ID); !ok {
		t.Error("reminder not persisted despite external failure")
	}
}

func TestDeleteRemovesMirrorsNotificationAndRecord(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	ctx := context.Background()

	r, err := f.engine.Commit(ctx, models.Reminder{
		ID: uuid.New(), UserID: 7, Title: "x",
		Date:        time.Now().Add(time.Hour),
		Destination: models.DestinationCalendar,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.engine.Delete(ctx, r); err != nil {
		t.Fatal(err)
	}
	if f.calStore.ItemCount() != 0 {
		t.Error("external item survived delete")
	}
	if f.scheduler.Pending(r.ID) {
		t.Error("notification survived delete")
	}
	if _, ok := f.reminders.get(r.ID); ok {
		t.Error("record survived delete")
	}
}

func TestWritableContainersClearsStaleSelection(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	f.prefs.prefs.CalendarContainerID = "cal-gone"

	containers, err := f.engine.WritableContainers(context.Background(), 7, access.KindEvents)
	if err != nil {
		t.Fatal(err)
	}
	if len(containers) != 2 {
		t.Errorf("got %d containers, want 2", len(containers))
	}
	if !f.prefs.clearedCalendar {
		t.Error("stale calendar selection not cleared")
	}
}

func TestNewDraftDefaults(t *testing.T) {
	f := newFixture()
	defer f.scheduler.Stop()
	f.prefs.prefs.DefaultDestination = models.DestinationCalendar

	r, err := f.engine.NewDraft(context.Background(), 7, "Work")
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == uuid.Nil {
		t.Error("draft has no id")
	}
	if !r.Date.After(time.Now()) {
		t.Errorf("draft date %v not in the near future", r.Date)
	}
	if r.Destination != models.DestinationCalendar {
		t.Errorf("draft destination %s, want the user default", r.Destination)
	}

	// Without any full tier the default degrades to app-only.
	f.calStore.Status = access.StatusDenied
	f.taskStore.Status = access.StatusDenied
	r, err = f.engine.NewDraft(context.Background(), 7, "Work")
	if err != nil {
		t.Fatal(err)
	}
	if r.Destination != models.DestinationAppOnly {
		t.Errorf("draft destination %s without access, want app_only", r.Destination)
	}
}
