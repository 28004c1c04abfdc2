// Package extstoretest provides an in-memory extstore.Store for tests.
package extstoretest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/extstore"
)

// Store is an in-memory external store. The zero value is not usable; use
// New. Status and error injection fields may be set between calls.
type Store struct {
	kind access.ResourceKind

	mu         sync.Mutex
	Status     access.Status
	Granted    bool
	SaveErr    error
	RemoveErr  error
	DefaultID  string
	containers []extstore.Container
	items      map[string]*extstore.Item // key: container/id
	nextID     int
}

func New(kind access.ResourceKind, containers ...extstore.Container) *Store {
	s := &Store{
		kind:       kind,
		Status:     access.StatusFullAccess,
		Granted:    true,
		containers: containers,
		items:      make(map[string]*extstore.Item),
	}
	if len(containers) > 0 {
		s.DefaultID = containers[0].ID
	}
	return s
}

func key(containerID, id string) string { return containerID + "/" + id }

func (s *Store) Kind() access.ResourceKind { return s.kind }

func (s *Store) AuthorizationStatus(ctx context.Context) access.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

func (s *Store) RequestAccess(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Granted, nil
}

func (s *Store) Containers(ctx context.Context) ([]extstore.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]extstore.Container, len(s.containers))
	copy(out, s.containers)
	return out, nil
}

func (s *Store) SetContainers(containers ...extstore.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers = containers
}

func (s *Store) DefaultContainer(ctx context.Context) (*extstore.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.containers {
		if s.containers[i].ID == s.DefaultID {
			c := s.containers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) FindItem(ctx context.Context, containerID, id string) (*extstore.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key(containerID, id)]
	if !ok {
		return nil, extstore.ErrNotFound
	}
	cp := *item
	cp.Alarms = append([]extstore.Alarm(nil), item.Alarms...)
	return &cp, nil
}

func (s *Store) Save(ctx context.Context, item *extstore.Item) (*extstore.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	if !s.hasContainer(item.ContainerID) {
		return nil, fmt.Errorf("unknown container %q", item.ContainerID)
	}
	cp := *item
	cp.Alarms = append([]extstore.Alarm(nil), item.Alarms...)
	if cp.ID == "" {
		s.nextID++
		cp.ID = "item-" + strconv.Itoa(s.nextID)
	} else if _, ok := s.items[key(cp.ContainerID, cp.ID)]; !ok {
		return nil, fmt.Errorf("stale item %q in %q", cp.ID, cp.ContainerID)
	}
	s.items[key(cp.ContainerID, cp.ID)] = &cp
	out := cp
	return &out, nil
}

func (s *Store) Move(ctx context.Context, containerID, id, destContainerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key(containerID, id)]
	if !ok {
		return "", extstore.ErrNotFound
	}
	if !s.hasContainer(destContainerID) {
		return "", fmt.Errorf("unknown container %q", destContainerID)
	}
	delete(s.items, key(containerID, id))
	item.ContainerID = destContainerID
	s.items[key(destContainerID, id)] = item
	return id, nil
}

func (s *Store) Remove(ctx context.Context, containerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.items[key(containerID, id)]; !ok {
		return extstore.ErrNotFound
	}
	delete(s.items, key(containerID, id))
	return nil
}

// ItemCount reports how many items the store holds across all containers.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Item returns the stored item, or nil.
func (s *Store) Item(containerID, id string) *extstore.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key(containerID, id)]
	if !ok {
		return nil
	}
	cp := *item
	cp.Alarms = append([]extstore.Alarm(nil), item.Alarms...)
	return &cp
}

func (s *Store) hasContainer(id string) bool {
	for i := range s.containers {
		if s.containers[i].ID == id {
			return true
		}
	}
	return false
}
