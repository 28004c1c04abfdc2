package extstore

import (
	"context"
	"time"

	"github.com/quickremind/quickremind/internal/access"
)

// Container is a named, permission-scoped grouping inside an external store
// (a calendar, or a task list) that every item must belong to.
type Container struct {
	ID       string
	Name     string
	ReadOnly bool
}

// Alarm is a single absolute-time trigger attached to an item.
type Alarm struct {
	At time.Time
}

// Item is the provider-independent shape of a mirrored reminder.
type Item struct {
	ID          string // empty until first saved
	ContainerID string
	Title       string
	Notes       string
	Start       time.Time
	End         time.Time
	Alarms      []Alarm
}

// Store is one external store (calendar events, or task lists).
//
// Implementations must return ErrNotFound for unknown item ids and must
// derive AuthorizationStatus fresh on every call instead of caching it: a
// permission grant can arrive between any two engine calls.
type Store interface {
	Kind() access.ResourceKind
	AuthorizationStatus(ctx context.Context) access.Status
	RequestAccess(ctx context.Context) (bool, error)

	Containers(ctx context.Context) ([]Container, error)
	DefaultContainer(ctx context.Context) (*Container, error)

	FindItem(ctx context.Context, containerID, id string) (*Item, error)
	// Save inserts the item when its ID is empty, otherwise updates it in
	// place inside item.ContainerID. The returned item has all ids set.
	Save(ctx context.Context, item *Item) (*Item, error)
	// Move relocates an item to another container and returns its id there,
	// which may differ from the old one on stores that cannot move in place.
	Move(ctx context.Context, containerID, id, destContainerID string) (string, error)
	Remove(ctx context.Context, containerID, id string) error
}
