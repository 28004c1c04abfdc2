package rounding

import (
	"fmt"
	"math"
	"time"
)

// Mode controls which direction Round snaps an instant.
type Mode string

const (
	Nearest Mode = "nearest"
	Up      Mode = "up"
	Down    Mode = "down"
)

// ParseMode maps a stored string to a Mode, defaulting to Nearest.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case Up:
		return Up
	case Down:
		return Down
	default:
		return Nearest
	}
}

// Grids are the minute intervals a user may pick. 60 pins the minute to :00.
var Grids = []int{1, 5, 15, 30, 60}

// Round snaps t onto the gridMinutes minute grid. The seconds component is
// zeroed first, then the instant is expressed as a count of grid-sized steps
// since the Unix epoch and the count is rounded per mode. Rounding an
// already-rounded instant returns it unchanged.
//
// gridMinutes outside (0, 60] is a programming error.
func Round(t time.Time, gridMinutes int, mode Mode) time.Time {
	if gridMinutes <= 0 || gridMinutes > 60 {
		panic(fmt.Sprintf("rounding: grid %d out of range (0, 60]", gridMinutes))
	}

	base := t.Add(-time.Duration(t.Second())*time.Second - time.Duration(t.Nanosecond())*time.Nanosecond)
	step := int64(gridMinutes) * 60

	q := float64(base.Unix()) / float64(step)
	var steps float64
	switch mode {
	case Up:
		steps = math.Ceil(q)
	case Down:
		steps = math.Floor(q)
	default:
		steps = math.Round(q)
	}
	return time.Unix(int64(steps)*step, 0).In(t.Location())
}
