// Package settings holds per-user preferences in redis. Values are read at
// engine-call time, never cached, so a preference changed between two
// commits is always observed.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/quickremind/quickremind/internal/models"
	"github.com/quickremind/quickremind/internal/rounding"
)

const (
	keyCalendarContainer  = "quickremind:%d:calendar_container"
	keyTaskListContainer  = "quickremind:%d:tasklist_container"
	keyDefaultDestination = "quickremind:%d:default_destination"
	keyGridMinutes        = "quickremind:%d:grid_minutes"
	keyRoundingMode       = "quickremind:%d:rounding_mode"
)

// Prefs are one user's preferences with defaults applied.
type Prefs struct {
	CalendarContainerID string
	TaskListContainerID string
	DefaultDestination  models.Destination
	GridMinutes         int
	RoundingMode        rounding.Mode
}

func defaultPrefs() Prefs {
	return Prefs{
		DefaultDestination: models.DestinationAppOnly,
		GridMinutes:        5,
		RoundingMode:       rounding.Nearest,
	}
}

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// For loads the user's preferences in one round trip.
func (s *Store) For(ctx context.Context, userID int64) (Prefs, error) {
	p := defaultPrefs()
	vals, err := s.rdb.MGet(ctx,
		fmt.Sprintf(keyCalendarContainer, userID),
		fmt.Sprintf(keyTaskListContainer, userID),
		fmt.Sprintf(keyDefaultDestination, userID),
		fmt.Sprintf(keyGridMinutes, userID),
		fmt.Sprintf(keyRoundingMode, userID),
	).Result()
	if err != nil {
		return p, fmt.Errorf("reading settings: %w", err)
	}

	if v := asString(vals[0]); v != "" {
		p.CalendarContainerID = v
	}
	if v := asString(vals[1]); v != "" {
		p.TaskListContainerID = v
	}
	if v := asString(vals[2]); v != "" {
		p.DefaultDestination = models.ParseDestination(v)
	}
	if v := asString(vals[3]); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 60 {
			p.GridMinutes = n
		}
	}
	if v := asString(vals[4]); v != "" {
		p.RoundingMode = rounding.ParseMode(v)
	}
	return p, nil
}

func (s *Store) SetCalendarContainer(ctx context.Context, userID int64, id string) error {
	return s.set(ctx, keyCalendarContainer, userID, id)
}

func (s *Store) ClearCalendarContainer(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, fmt.Sprintf(keyCalendarContainer, userID)).Err()
}

func (s *Store) SetTaskListContainer(ctx context.Context, userID int64, id string) error {
	return s.set(ctx, keyTaskListContainer, userID, id)
}

func (s *Store) ClearTaskListContainer(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, fmt.Sprintf(keyTaskListContainer, userID)).Err()
}

func (s *Store) SetDefaultDestination(ctx context.Context, userID int64, d models.Destination) error {
	return s.set(ctx, keyDefaultDestination, userID, string(d))
}

func (s *Store) SetGridMinutes(ctx context.Context, userID int64, grid int) error {
	return s.set(ctx, keyGridMinutes, userID, strconv.Itoa(grid))
}

func (s *Store) SetRoundingMode(ctx context.Context, userID int64, mode rounding.Mode) error {
	return s.set(ctx, keyRoundingMode, userID, string(mode))
}

func (s *Store) set(ctx context.Context, keyFmt string, userID int64, value string) error {
	return s.rdb.Set(ctx, fmt.Sprintf(keyFmt, userID), value, 0).Err()
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
