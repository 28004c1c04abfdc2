package extstore

import (
	"context"
	"fmt"

	"github.com/quickremind/quickremind/internal/access"
)

// ResolveContainer picks the container a new item is written into.
//
// None tier resolves nothing. Write-only access cannot enumerate or validate
// containers, so the user selection is ignored and the system default is
// taken as-is. Full tier tries the user's selection, then the default, then
// the first writable container in enumeration order.
func ResolveContainer(ctx context.Context, store Store, tier access.Tier, selectedID string) (*Container, error) {
	switch tier {
	case access.TierNone:
		return nil, ErrPermissionDenied
	case access.TierWriteOnly:
		def, err := store.DefaultContainer(ctx)
		if err != nil || def == nil {
			return nil, ErrContainerUnresolvable
		}
		return def, nil
	}

	containers, err := store.Containers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s containers: %w", store.Kind(), err)
	}

	if selectedID != "" {
		for i := range containers {
			if containers[i].ID == selectedID && !containers[i].ReadOnly {
				return &containers[i], nil
			}
		}
	}
	if def, err := store.DefaultContainer(ctx); err == nil && def != nil && !def.ReadOnly {
		return def, nil
	}
	for i := range containers {
		if !containers[i].ReadOnly {
			return &containers[i], nil
		}
	}
	return nil, ErrContainerUnresolvable
}

// ListWritableContainers returns the containers the user may pick from.
// Anything below full tier gets an empty list. The returned selection is
// selectedID while that container still exists in the list, and empty
// otherwise, so a deleted container cannot linger as a dangling selection.
func ListWritableContainers(ctx context.Context, store Store, tier access.Tier, selectedID string) ([]Container, string, error) {
	if tier != access.TierFull {
		return nil, "", nil
	}

	all, err := store.Containers(ctx)
	if err != nil {
		return nil, selectedID, fmt.Errorf("listing %s containers: %w", store.Kind(), err)
	}

	var writable []Container
	keep := ""
	for _, c := range all {
		if c.ReadOnly {
			continue
		}
		if c.ID == selectedID {
			keep = selectedID
		}
		writable = append(writable, c)
	}
	return writable, keep, nil
}
