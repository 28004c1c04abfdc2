package destination

import (
	"testing"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/models"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name          string
		d             models.Destination
		events, tasks access.Tier
		want          models.Destination
	}{
		{"all full keeps calendar", models.DestinationCalendar, access.TierFull, access.TierFull, models.DestinationCalendar},
		{"all full keeps tasks", models.DestinationTasks, access.TierFull, access.TierFull, models.DestinationTasks},
		{"all full keeps app only", models.DestinationAppOnly, access.TierFull, access.TierFull, models.DestinationAppOnly},
		{"no full tier forces app only", models.DestinationCalendar, access.TierWriteOnly, access.TierWriteOnly, models.DestinationAppOnly},
		{"tasks writeOnly events none forces app only", models.DestinationTasks, access.TierNone, access.TierWriteOnly, models.DestinationAppOnly},
		{"tasks lost falls back to calendar", models.DestinationTasks, access.TierFull, access.TierNone, models.DestinationCalendar},
		{"calendar lost falls back to tasks", models.DestinationCalendar, access.TierWriteOnly, access.TierFull, models.DestinationTasks},
		{"unknown value degrades to app only", models.Destination("both"), access.TierFull, access.TierFull, models.DestinationAppOnly},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.d, c.events, c.tasks)
			if got != c.want {
				t.Errorf("Normalize(%s, %v, %v) = %s, want %s", c.d, c.events, c.tasks, got, c.want)
			}
			// Normalizing again must not move the result.
			if again := Normalize(got, c.events, c.tasks); again != got {
				t.Errorf("Normalize not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestCanShowPicker(t *testing.T) {
	if CanShowPicker(access.TierWriteOnly, access.TierNone) {
		t.Error("picker offered without any full tier")
	}
	if !CanShowPicker(access.TierNone, access.TierFull) {
		t.Error("picker not offered with tasks at full tier")
	}
}
