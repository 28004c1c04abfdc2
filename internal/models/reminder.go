package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickremind/quickremind/internal/access"
)

// PlaceholderTitle replaces an empty title before any external write or
// notification content.
const PlaceholderTitle = "(untitled)"

// Destination selects where a reminder is mirrored in addition to its local
// notification. Exactly one external target at a time.
type Destination string

const (
	DestinationAppOnly  Destination = "app_only"
	DestinationCalendar Destination = "calendar"
	DestinationTasks    Destination = "tasks"
)

// ParseDestination maps a stored string to a Destination, falling back to
// app-only for anything it does not recognize.
func ParseDestination(s string) Destination {
	switch Destination(s) {
	case DestinationCalendar:
		return DestinationCalendar
	case DestinationTasks:
		return DestinationTasks
	default:
		return DestinationAppOnly
	}
}

// BackRef links a reminder to the item it was mirrored into inside one
// external store. The pair is set together by a successful sync; an item id
// without its container id is never valid.
type BackRef struct {
	ItemID      string `json:"item_id"`
	ContainerID string `json:"container_id"`
}

// Reminder is an immutable value; edits copy it and commit the copy through
// the engine. ID is assigned at creation, never changes, and doubles as the
// notification identifier and the join key into external stores.
type Reminder struct {
	ID          uuid.UUID   `json:"id"`
	UserID      int64       `json:"user_id"`
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	Category    string      `json:"category"`
	Destination Destination `json:"destination"`
	Calendar    *BackRef    `json:"calendar,omitempty"`
	Tasks       *BackRef    `json:"tasks,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// DisplayTitle is the title as shown to the user and written externally.
func (r Reminder) DisplayTitle() string {
	if strings.TrimSpace(r.Title) == "" {
		return PlaceholderTitle
	}
	return r.Title
}

// RefFor returns the back-reference for one external resource kind.
func (r Reminder) RefFor(kind access.ResourceKind) *BackRef {
	if kind == access.KindTasks {
		return r.Tasks
	}
	return r.Calendar
}

// SetRefFor replaces the back-reference for one external resource kind.
func (r *Reminder) SetRefFor(kind access.ResourceKind, ref *BackRef) {
	if kind == access.KindTasks {
		r.Tasks = ref
		return
	}
	r.Calendar = ref
}
