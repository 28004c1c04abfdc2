package extstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quickremind/quickremind/internal/access"
	"github.com/quickremind/quickremind/internal/extstore"
	"github.com/quickremind/quickremind/internal/extstore/extstoretest"
)

func threeContainers() *extstoretest.Store {
	return extstoretest.New(access.KindEvents,
		extstore.Container{ID: "default", Name: "Personal"},
		extstore.Container{ID: "shared", Name: "Team", ReadOnly: true},
		extstore.Container{ID: "work", Name: "Work"},
	)
}

func TestResolveContainerNoneTier(t *testing.T) {
	store := threeContainers()
	_, err := extstore.ResolveContainer(context.Background(), store, access.TierNone, "work")
	if !errors.Is(err, extstore.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestResolveContainerWriteOnlyIgnoresSelection(t *testing.T) {
	store := threeContainers()
	got, err := extstore.ResolveContainer(context.Background(), store, access.TierWriteOnly, "work")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "default" {
		t.Errorf("resolved %q, want system default", got.ID)
	}
}

func TestResolveContainerFullTier(t *testing.T) {
	ctx := context.Background()
	store := threeContainers()

	if got, _ := extstore.ResolveContainer(ctx, store, access.TierFull, "work"); got.ID != "work" {
		t.Errorf("valid selection: resolved %q, want work", got.ID)
	}
	// Read-only selection falls through to the default.
	if got, _ := extstore.ResolveContainer(ctx, store, access.TierFull, "shared"); got.ID != "default" {
		t.Errorf("read-only selection: resolved %q, want default", got.ID)
	}
	// Vanished selection falls through to the default.
	if got, _ := extstore.ResolveContainer(ctx, store, access.TierFull, "gone"); got.ID != "default" {
		t.Errorf("vanished selection: resolved %q, want default", got.ID)
	}
}

func TestResolveContainerFallsBackToFirstWritable(t *testing.T) {
	store := extstoretest.New(access.KindEvents,
		extstore.Container{ID: "shared", ReadOnly: true},
		extstore.Container{ID: "work"},
	)
	store.DefaultID = "shared" // default exists but is read-only

	got, err := extstore.ResolveContainer(context.Background(), store, access.TierFull, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "work" {
		t.Errorf("resolved %q, want first writable", got.ID)
	}
}

func TestResolveContainerUnresolvable(t *testing.T) {
	store := extstoretest.New(access.KindEvents,
		extstore.Container{ID: "shared", ReadOnly: true},
	)
	store.DefaultID = "shared"

	_, err := extstore.ResolveContainer(context.Background(), store, access.TierFull, "")
	if !errors.Is(err, extstore.ErrContainerUnresolvable) {
		t.Fatalf("err = %v, want ErrContainerUnresolvable", err)
	}
}

func TestListWritableContainers(t *testing.T) {
	ctx := context.Background()
	store := threeContainers()

	list, keep, err := extstore.ListWritableContainers(ctx, store, access.TierFull, "work")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d containers, want 2 writable", len(list))
	}
	if keep != "work" {
		t.Errorf("selection %q, want work kept", keep)
	}

	// A selection whose container vanished is cleared, not left dangling.
	_, keep, err = extstore.ListWritableContainers(ctx, store, access.TierFull, "gone")
	if err != nil {
		t.Fatal(err)
	}
	if keep != "" {
		t.Errorf("selection %q, want cleared", keep)
	}

	// Below full tier nothing is listable.
	list, keep, err = extstore.ListWritableContainers(ctx, store, access.TierWriteOnly, "work")
	if err != nil || len(list) != 0 || keep != "" {
		t.Errorf("writeOnly list = %v selection %q err %v, want empty", list, keep, err)
	}
}
