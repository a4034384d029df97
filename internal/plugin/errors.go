package plugin

import "errors"

// Plugin errors.
var (
	// ErrSessionNotFound is returned when no session exists for a view.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotPublished is returned when a view's counts were never published,
	// because every refresh so far failed.
	ErrNotPublished = errors.New("counts not published")
)
