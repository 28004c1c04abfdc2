package extstore

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the tier is none for the requested
	// operation. Surfaced to the user as a settings prompt, never fatal.
	ErrPermissionDenied = errors.New("extstore: permission denied")

	// ErrContainerUnresolvable means no writable container was found even
	// though the tier was sufficient.
	ErrContainerUnresolvable = errors.New("extstore: no writable container")

	// ErrNotFound means the store has no item with the given id.
	ErrNotFound = errors.New("extstore: item not found")
)

// WriteRejectedError wraps a store's refusal to save or remove an item. The
// local reminder and its notification stay authoritative.
type WriteRejectedError struct {
	Backend string
	Err     error
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("extstore: %s rejected write: %v", e.Backend, e.Err)
}

func (e *WriteRejectedError) Unwrap() error { return e.Err }
