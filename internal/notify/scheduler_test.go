package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/models"
)

type recordingNotifier struct {
	mu        sync.Mutex
	delivered []Content
	fired     chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fired: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, userID int64, c Content) error {
	n.mu.Lock()
	n.delivered = append(n.delivered, c)
	n.mu.Unlock()
	n.fired <- struct{}{}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

func TestTriggerForBranches(t *testing.T) {
	now := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	past := TriggerFor(now.Add(-5*time.Second), now)
	if past.Kind != TriggerImmediate {
		t.Errorf("past date picked kind %v, want immediate", past.Kind)
	}
	if d := past.At.Sub(now); d <= 0 || d >= time.Second {
		t.Errorf("immediate fire delayed by %v, want a sub-second delay", d)
	}

	exactlyNow := TriggerFor(now, now)
	if exactlyNow.Kind != TriggerImmediate {
		t.Errorf("date == now picked kind %v, want immediate", exactlyNow.Kind)
	}

	future := TriggerFor(now.Add(60*time.Second), now)
	if future.Kind != TriggerCalendar {
		t.Errorf("future date picked kind %v, want calendar", future.Kind)
	}
	if !future.At.Equal(now.Add(60 * time.Second)) {
		t.Errorf("calendar trigger at %v, want %v", future.At, now.Add(60*time.Second))
	}
}

func TestTriggerForDropsSubSecond(t *testing.T) {
	now := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	got := TriggerFor(now.Add(90*time.Second+300*time.Millisecond), now)
	if got.At.Nanosecond() != 0 {
		t.Errorf("calendar trigger keeps sub-second precision: %v", got.At)
	}
}

func TestScheduleImmediateFires(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier, zap.NewNop().Sugar())
	defer s.Stop()

	r := models.Reminder{ID: uuid.New(), UserID: 1, Title: "Tea", Date: time.Now().Add(-5 * time.Second)}
	s.Schedule(r)

	select {
	case <-notifier.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("immediate notification never fired")
	}
	if s.Pending(r.ID) {
		t.Error("fired notification still pending")
	}
	notifier.mu.Lock()
	got := notifier.delivered[0]
	notifier.mu.Unlock()
	if got.Title != "Tea" || got.Sound != DefaultSound {
		t.Errorf("delivered %+v, want title and default sound", got)
	}
}

func TestScheduleReplacesPending(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier, zap.NewNop().Sugar())
	defer s.Stop()

	r := models.Reminder{ID: uuid.New(), UserID: 1, Title: "Tea", Date: time.Now().Add(time.Hour)}
	s.Schedule(r)
	r.Date = time.Now().Add(-time.Second) // edit moves it into the past
	s.Schedule(r)

	select {
	case <-notifier.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("rescheduled notification never fired")
	}
	// Only the replacement may deliver; the first registration must be gone.
	time.Sleep(100 * time.Millisecond)
	if notifier.count() != 1 {
		t.Errorf("%d deliveries, want 1", notifier.count())
	}
}

func TestScheduleBlankTitleUsesPlaceholder(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier, zap.NewNop().Sugar())
	defer s.Stop()

	s.Schedule(models.Reminder{ID: uuid.New(), UserID: 1, Date: time.Now()})
	select {
	case <-notifier.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("notification never fired")
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.delivered[0].Title != models.PlaceholderTitle {
		t.Errorf("title %q, want placeholder", notifier.delivered[0].Title)
	}
}

func TestCancel(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier, zap.NewNop().Sugar())
	defer s.Stop()

	r := models.Reminder{ID: uuid.New(), UserID: 1, Date: time.Now().Add(time.Hour)}
	s.Schedule(r)
	s.Cancel(r.ID)
	if s.Pending(r.ID) {
		t.Error("cancelled notification still pending")
	}

	// Cancelling an id that was never scheduled must not panic or error.
	s.Cancel(uuid.New())
}
