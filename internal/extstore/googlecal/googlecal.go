// Package googlecal mirrors reminders into Google Calendar. Containers are
// the user's writable calendars, items are events, the single alarm maps to
// a popup reminder override at the event start.
package googlecal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/extstore"
)

type Store struct {
	credentialsFile string
	scope           string
	log             *zap.SugaredLogger
	svc             *calendar.Service
}

func New(credentialsFile, scope string, log *zap.SugaredLogger) *Store {
	return &Store{credentialsFile: credentialsFile, scope: scope, log: log}
}

func (s *Store) Kind() access.ResourceKind { return access.KindEvents }

func (s *Store) connect(ctx context.Context) (*calendar.Service, error) {
	if s.svc != nil {
		return s.svc, nil
	}
	data, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, s.scope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	svc, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// AuthorizationStatus derives the platform status from the configured OAuth
// scope on every call. The full calendar scope can enumerate calendars; the
// events-only scope can write events but not list calendars, which is
// exactly a write-only grant.
func (s *Store) AuthorizationStatus(ctx context.Context) access.Status {
	if s.credentialsFile == "" {
		return access.StatusNotDetermined
	}
	if _, err := s.connect(ctx); err != nil {
		return access.StatusDenied
	}
	switch s.scope {
	case calendar.CalendarScope:
		return access.StatusFullAccess
	case calendar.CalendarEventsScope:
		return access.StatusWriteOnly
	default:
		return access.StatusRestricted
	}
}

func (s *Store) RequestAccess(ctx context.Context) (bool, error) {
	if _, err := s.connect(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Containers(ctx context.Context) ([]extstore.Container, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}
	var out []extstore.Container
	for _, entry := range list.Items {
		if entry.Deleted {
			continue
		}
		out = append(out, extstore.Container{
			ID:       entry.Id,
			Name:     entry.Summary,
			ReadOnly: entry.AccessRole != "owner" && entry.AccessRole != "writer",
		})
	}
	return out, nil
}

func (s *Store) DefaultContainer(ctx context.Context) (*extstore.Container, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := svc.Calendars.Get("primary").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting primary calendar: %w", err)
	}
	return &extstore.Container{ID: cal.Id, Name: cal.Summary}, nil
}

func (s *Store) FindItem(ctx context.Context, containerID, id string) (*extstore.Item, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := svc.Events.Get(containerID, id).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	if ev.Status == "cancelled" {
		return nil, extstore.ErrNotFound
	}
	return eventToItem(containerID, ev), nil
}

func (s *Store) Save(ctx context.Context, item *extstore.Item) (*extstore.Item, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	ev := &calendar.Event{
		Summary:     item.Title,
		Description: item.Notes,
		Start:       &calendar.EventDateTime{DateTime: item.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: item.End.Format(time.RFC3339)},
		Reminders:   remindersFromAlarms(item.Start, item.Alarms),
	}

	var saved *calendar.Event
	if item.ID == "" {
		saved, err = svc.Events.Insert(item.ContainerID, ev).Context(ctx).Do()
	} else {
		saved, err = svc.Events.Update(item.ContainerID, item.ID, ev).Context(ctx).Do()
	}
	if err != nil {
		return nil, mapError(err)
	}
	return eventToItem(item.ContainerID, saved), nil
}

func (s *Store) Move(ctx context.Context, containerID, id, destContainerID string) (string, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	moved, err := svc.Events.Move(containerID, id, destContainerID).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}
	return moved.Id, nil
}

func (s *Store) Remove(ctx context.Context, containerID, id string) error {
	svc, err := s.connect(ctx)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(containerID, id).Context(ctx).Do(); err != nil {
		return mapError(err)
	}
	return nil
}

func eventToItem(containerID string, ev *calendar.Event) *extstore.Item {
	item := &extstore.Item{
		ID:          ev.Id,
		ContainerID: containerID,
		Title:       ev.Summary,
		Notes:       ev.Description,
	}
	if ev.Start != nil {
		item.Start, _ = time.Parse(time.RFC3339, ev.Start.DateTime)
	}
	if ev.End != nil {
		item.End, _ = time.Parse(time.RFC3339, ev.End.DateTime)
	}
	if ev.Reminders != nil {
		for _, o := range ev.Reminders.Overrides {
			item.Alarms = append(item.Alarms, extstore.Alarm{
				At: item.Start.Add(-time.Duration(o.Minutes) * time.Minute),
			})
		}
	}
	return item
}

// remindersFromAlarms replaces the event's reminder set wholesale, so every
// save clears whatever overrides were there before.
func remindersFromAlarms(start time.Time, alarms []extstore.Alarm) *calendar.EventReminders {
	overrides := make([]*calendar.EventReminder, 0, len(alarms))
	for _, a := range alarms {
		overrides = append(overrides, &calendar.EventReminder{
			Method:          "popup",
			Minutes:         int64(start.Sub(a.At) / time.Minute),
			ForceSendFields: []string{"Minutes"},
		})
	}
	return &calendar.EventReminders{
		UseDefault:      false,
		Overrides:       overrides,
		ForceSendFields: []string{"UseDefault"},
	}
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
		return extstore.ErrNotFound
	}
	return err
}
