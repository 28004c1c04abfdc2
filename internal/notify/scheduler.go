package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/models"
)

// Content is what a fired notification shows.
type Content struct {
	Title string
	Body  string
	Sound string
}

// DefaultSound keeps the audible alert on every notification.
const DefaultSound = "default"

// immediateDelay is the fixed sub-second delay used when the reminder's
// instant is now or already past, so it still fires instead of never.
const immediateDelay = 500 * time.Millisecond

// deliverTimeout bounds a single delivery attempt.
const deliverTimeout = 30 * time.Second

// Notifier delivers a fired notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, c Content) error
}

// TriggerKind says which of the two firing branches was selected.
type TriggerKind int

const (
	TriggerImmediate TriggerKind = iota
	TriggerCalendar
)

// Trigger is the concrete firing plan for one notification.
type Trigger struct {
	Kind TriggerKind
	At   time.Time
}

// TriggerFor picks the firing plan: an instant at or before now fires almost
// immediately, a future instant fires once at its calendar components with
// sub-second precision discarded.
func TriggerFor(date, now time.Time) Trigger {
	if !date.After(now) {
		return Trigger{Kind: TriggerImmediate, At: now.Add(immediateDelay)}
	}
	y, mo, d := date.Date()
	h, mi, sec := date.Clock()
	return Trigger{
		Kind: TriggerCalendar,
		At:   time.Date(y, mo, d, h, mi, sec, 0, date.Location()),
	}
}

// Scheduler keeps at most one pending notification per reminder id.
type Scheduler struct {
	notifier Notifier
	log      *zap.SugaredLogger

	mu      sync.Mutex
	pending map[uuid.UUID]*time.Timer
}

func NewScheduler(notifier Notifier, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		log:      log,
		pending:  make(map[uuid.UUID]*time.Timer),
	}
}

// Schedule registers the reminder's notification. Any pending request with
// the same id is removed first, so edits replace rather than stack.
func (s *Scheduler) Schedule(r models.Reminder) Trigger {
	trigger := TriggerFor(r.Date, time.Now())
	content := Content{
		Title: r.DisplayTitle(),
		Body:  r.Date.Format("15:04"),
		Sound: DefaultSound,
	}
	id, userID := r.ID, r.UserID

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[id]; ok {
		t.Stop()
	}
	s.pending[id] = time.AfterFunc(time.Until(trigger.At), func() {
		s.fire(id, userID, content)
	})
	return trigger
}

func (s *Scheduler) fire(id uuid.UUID, userID int64, content Content) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, userID, content); err != nil {
		s.log.Errorw("failed to deliver notification", "reminder", id, "error", err)
	}
}

// Cancel removes the pending notification for id. Unknown ids are a no-op,
// never an error.
func (s *Scheduler) Cancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[id]; ok {
		t.Stop()
		delete(s.pending, id)
	}
}

// Pending reports whether id has a registered, not-yet-fired notification.
func (s *Scheduler) Pending(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Stop cancels every pending notification. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
