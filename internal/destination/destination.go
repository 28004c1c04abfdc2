package destination

import (
	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/models"
)

// CanShowPicker reports whether the destination picker may be offered at
// all. Without full access to at least one external resource there is
// nothing legal to pick.
func CanShowPicker(events, tasks access.Tier) bool {
	return events == access.TierFull || tasks == access.TierFull
}

// Normalize corrects d against the current permission tiers. It never
// rejects: an illegal destination degrades to the best still-usable one.
// Idempotent, and cheap enough to run on every edit and permission change.
func Normalize(d models.Destination, events, tasks access.Tier) models.Destination {
	if !CanShowPicker(events, tasks) {
		return models.DestinationAppOnly
	}

	switch d {
	case models.DestinationTasks:
		if tasks != access.TierFull {
			if events == access.TierFull {
				return models.DestinationCalendar
			}
			return models.DestinationAppOnly
		}
	case models.DestinationCalendar:
		if events != access.TierFull {
			if tasks == access.TierFull {
				return models.DestinationTasks
			}
			return models.DestinationAppOnly
		}
	case models.DestinationAppOnly:
	default:
		// Unknown value from an old record.
		return models.DestinationAppOnly
	}
	return d
}
