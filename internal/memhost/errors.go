package memhost

import "errors"

// Host errors.
var (
	// ErrViewNotFound is returned for an unknown view id.
	ErrViewNotFound = errors.New("view not found")

	// ErrUnknownStatusItem is returned when updating a status item that was never added.
	ErrUnknownStatusItem = errors.New("unknown status item")

	// ErrEditLoop is returned when plugin edits keep producing further edits.
	ErrEditLoop = errors.New("too many cascading plugin edits")
)
