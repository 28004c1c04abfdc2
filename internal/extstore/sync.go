package extstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/models"
)

// End offsets written on every upsert. Fixed per backend, not
// user-configurable.
const (
	// CalendarEventDuration is how long a mirrored calendar event blocks.
	CalendarEventDuration = time.Hour
	// TaskDueOffset makes a mirrored task due at the reminder instant
	// itself.
	TaskDueOffset = time.Duration(0)
)

// Sync mirrors reminders into one external store, keeping each reminder's
// back-reference pointed at its mirrored item so repeated saves update
// instead of duplicate.
type Sync struct {
	store     Store
	endOffset time.Duration
	log       *zap.SugaredLogger
}

func NewSync(store Store, endOffset time.Duration, log *zap.SugaredLogger) *Sync {
	return &Sync{store: store, endOffset: endOffset, log: log}
}

// Kind is the resource kind of the underlying store.
func (s *Sync) Kind() access.ResourceKind { return s.store.Kind() }

// Tier derives the current permission tier from the store. Never cached:
// the user can grant or revoke access between any two calls.
func (s *Sync) Tier(ctx context.Context) access.Tier {
	return access.TierFor(s.store.AuthorizationStatus(ctx))
}

// RequestAccess asks the store for authorization, suspending until the
// grant decision is known.
func (s *Sync) RequestAccess(ctx context.Context) (bool, error) {
	return s.store.RequestAccess(ctx)
}

// WritableContainers lists the pickable containers at the current tier,
// clearing the selection when its container no longer exists.
func (s *Sync) WritableContainers(ctx context.Context, selectedID string) ([]Container, string, error) {
	return ListWritableContainers(ctx, s.store, s.Tier(ctx), selectedID)
}

// Upsert writes the reminder into the store and returns the resulting
// back-reference. A reminder already carrying ref updates its existing item
// in place; a stale ref (item deleted externally) falls back to creating a
// fresh item. On full tier the item follows the user's current container
// selection, moving if needed; on write-only tier it never moves because the
// system default is the only legal target.
func (s *Sync) Upsert(ctx context.Context, r models.Reminder, ref *models.BackRef, selectedContainerID string) (*models.BackRef, error) {
	tier := s.Tier(ctx)
	if tier == access.TierNone {
		return nil, ErrPermissionDenied
	}

	var item *Item
	if ref != nil {
		found, err := s.store.FindItem(ctx, ref.ContainerID, ref.ItemID)
		switch {
		case err == nil:
			item = found
		case errors.Is(err, ErrNotFound):
			// Stale reference: deleted behind our back. Recreate.
			s.log.Infow("external item gone, recreating",
				"backend", s.Kind(), "reminder", r.ID, "item", ref.ItemID)
		default:
			return nil, fmt.Errorf("looking up %s item: %w", s.Kind(), err)
		}
	}

	if item == nil {
		target, err := ResolveContainer(ctx, s.store, tier, selectedContainerID)
		if err != nil {
			return nil, err
		}
		item = &Item{ContainerID: target.ID}
	} else if tier == access.TierFull {
		target, err := ResolveContainer(ctx, s.store, tier, selectedContainerID)
		if err == nil && target.ID != item.ContainerID {
			newID, err := s.store.Move(ctx, item.ContainerID, item.ID, target.ID)
			if err != nil {
				return nil, &WriteRejectedError{Backend: string(s.Kind()), Err: err}
			}
			item.ID = newID
			item.ContainerID = target.ID
		}
	}

	item.Title = r.DisplayTitle()
	item.Notes = "Category: " + r.Category
	item.Start = r.Date
	item.End = r.Date.Add(s.endOffset)
	// Clear before re-adding: repeated edits must not accumulate alarms on
	// the same external item.
	item.Alarms = item.Alarms[:0]
	item.Alarms = append(item.Alarms, Alarm{At: r.Date})

	saved, err := s.store.Save(ctx, item)
	if err != nil {
		return nil, &WriteRejectedError{Backend: string(s.Kind()), Err: err}
	}
	return &models.BackRef{ItemID: saved.ID, ContainerID: saved.ContainerID}, nil
}

// Delete removes the mirrored item. A nil ref, a none tier, or an item
// already deleted externally are all no-ops.
func (s *Sync) Delete(ctx context.Context, ref *models.BackRef) error {
	if ref == nil {
		return nil
	}
	if s.Tier(ctx) == access.TierNone {
		s.log.Warnw("skipping external delete without access",
			"backend", s.Kind(), "item", ref.ItemID)
		return nil
	}
	if err := s.store.Remove(ctx, ref.ContainerID, ref.ItemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return &WriteRejectedError{Backend: string(s.Kind()), Err: err}
	}
	return nil
}
