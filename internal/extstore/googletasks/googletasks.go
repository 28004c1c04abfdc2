// Package googletasks mirrors reminders into Google Tasks. Containers are
// task lists, items are tasks. Tasks carry no alarms of their own; the
// reminder's single alarm instant becomes the task's due time.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/extstore"
)

// defaultTaskList is the magic id Google Tasks accepts for the user's
// default list.
const defaultTaskList = "@default"

type Store struct {
	credentialsFile string
	scope           string
	log             *zap.SugaredLogger
	svc             *tasks.Service
}

func New(credentialsFile, scope string, log *zap.SugaredLogger) *Store {
	return &Store{credentialsFile: credentialsFile, scope: scope, log: log}
}

func (s *Store) Kind() access.ResourceKind { return access.KindTasks }

func (s *Store) connect(ctx context.Context) (*tasks.Service, error) {
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
	svc, err := tasks.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating tasks service: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// AuthorizationStatus derives the platform status from the configured OAuth
// scope on every call. Google Tasks has no write-only scope, so the grant is
// either full or unusable.
func (s *Store) AuthorizationStatus(ctx context.Context) access.Status {
	if s.credentialsFile == "" {
		return access.StatusNotDetermined
	}
	if _, err := s.connect(ctx); err != nil {
		return access.StatusDenied
	}
	if s.scope == tasks.TasksScope {
		return access.StatusFullAccess
	}
	return access.StatusRestricted
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
	list, err := svc.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing task lists: %w", err)
	}
	var out []extstore.Container
	for _, tl := range list.Items {
		out = append(out, extstore.Container{ID: tl.Id, Name: tl.Title})
	}
	return out, nil
}

func (s *Store) DefaultContainer(ctx context.Context) (*extstore.Container, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	tl, err := svc.Tasklists.Get(defaultTaskList).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting default task list: %w", err)
	}
	return &extstore.Container{ID: tl.Id, Name: tl.Title}, nil
}

func (s *Store) FindItem(ctx context.Context, containerID, id string) (*extstore.Item, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	task, err := svc.Tasks.Get(containerID, id).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	if task.Deleted {
		return nil, extstore.ErrNotFound
	}
	return taskToItem(containerID, task), nil
}

func (s *Store) Save(ctx context.Context, item *extstore.Item) (*extstore.Item, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	task := itemToTask(item)
	var saved *tasks.Task
	if item.ID == "" {
		saved, err = svc.Tasks.Insert(item.ContainerID, task).Context(ctx).Do()
	} else {
		task.Id = item.ID
		saved, err = svc.Tasks.Update(item.ContainerID, item.ID, task).Context(ctx).Do()
	}
	if err != nil {
		return nil, mapError(err)
	}
	return taskToItem(item.ContainerID, saved), nil
}

// Move recreates the task in the destination list and deletes the original.
// Google Tasks cannot move a task across lists, so the id changes.
func (s *Store) Move(ctx context.Context, containerID, id, destContainerID string) (string, error) {
	svc, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	old, err := svc.Tasks.Get(containerID, id).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}
	fresh, err := svc.Tasks.Insert(destContainerID, &tasks.Task{
		Title:  old.Title,
		Notes:  old.Notes,
		Due:    old.Due,
		Status: old.Status,
	}).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}
	if err := svc.Tasks.Delete(containerID, id).Context(ctx).Do(); err != nil {
		s.log.Warnw("old task left behind after move", "list", containerID, "task", id, "error", err)
	}
	return fresh.Id, nil
}

func (s *Store) Remove(ctx context.Context, containerID, id string) error {
	svc, err := s.connect(ctx)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete(containerID, id).Context(ctx).Do(); err != nil {
		return mapError(err)
	}
	return nil
}

func taskToItem(containerID string, task *tasks.Task) *extstore.Item {
	item := &extstore.Item{
		ID:          task.Id,
		ContainerID: containerID,
		Title:       task.Title,
		Notes:       task.Notes,
	}
	if task.Due != "" {
		if due, err := time.Parse(time.RFC3339, task.Due); err == nil {
			item.Start = due
			item.End = due
			item.Alarms = []extstore.Alarm{{At: due}}
		}
	}
	return item
}

func itemToTask(item *extstore.Item) *tasks.Task {
	due := item.Start
	if len(item.Alarms) > 0 {
		due = item.Alarms[0].At
	}
	return &tasks.Task{
		Title:  item.Title,
		Notes:  item.Notes,
		Due:    due.UTC().Format(time.RFC3339),
		Status: "needsAction",
	}
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
		return extstore.ErrNotFound
	}
	return err
}
