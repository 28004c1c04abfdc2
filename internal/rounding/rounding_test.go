package rounding

import (
	"testing"
	"time"
)

func TestRound(t *testing.T) {
	base := time.Date(2025, 8, 30, 10, 7, 42, 123456789, time.UTC)

	cases := []struct {
		name string
		grid int
		mode Mode
		want time.Time
	}{
		{"nearest snaps down when closer", 5, Nearest, time.Date(2025, 8, 30, 10, 5, 0, 0, time.UTC)},
		{"up ceils", 5, Up, time.Date(2025, 8, 30, 10, 10, 0, 0, time.UTC)},
		{"down floors", 5, Down, time.Date(2025, 8, 30, 10, 5, 0, 0, time.UTC)},
		{"grid 15", 15, Nearest, time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)},
		{"grid 30 up", 30, Up, time.Date(2025, 8, 30, 10, 30, 0, 0, time.UTC)},
		{"top of hour nearest", 60, Nearest, time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)},
		{"top of hour up", 60, Up, time.Date(2025, 8, 30, 11, 0, 0, 0, time.UTC)},
		{"grid 1 drops seconds", 1, Down, time.Date(2025, 8, 30, 10, 7, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Round(base, c.grid, c.mode)
			if !got.Equal(c.want) {
				t.Errorf("Round(%v, %d, %s) = %v, want %v", base, c.grid, c.mode, got, c.want)
			}
		})
	}
}

func TestRoundIdempotent(t *testing.T) {
	base := time.Date(2025, 8, 30, 10, 7, 42, 0, time.UTC)
	for _, grid := range Grids {
		for _, mode := range []Mode{Nearest, Up, Down} {
			once := Round(base, grid, mode)
			twice := Round(once, grid, mode)
			if !twice.Equal(once) {
				t.Errorf("Round not idempotent for grid=%d mode=%s: %v then %v", grid, mode, once, twice)
			}
		}
	}
}

func TestRoundTopOfHourAlwaysZeroMinute(t *testing.T) {
	for _, mode := range []Mode{Nearest, Up, Down} {
		for h := 0; h < 24; h++ {
			in := time.Date(2025, 8, 30, h, 37, 12, 0, time.UTC)
			if got := Round(in, 60, mode); got.Minute() != 0 || got.Second() != 0 {
				t.Errorf("Round(%v, 60, %s) = %v, want :00", in, mode, got)
			}
		}
	}
}

func TestRoundPreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2025, 8, 30, 10, 7, 0, 0, loc)
	if got := Round(in, 5, Nearest); got.Location() != loc {
		t.Errorf("Round changed location: %v", got.Location())
	}
}

func TestRoundBadGridPanics(t *testing.T) {
	for _, grid := range []int{0, -5, 61} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Round with grid %d did not panic", grid)
				}
			}()
			Round(time.Now(), grid, Nearest)
		}()
	}
}
