package script

import "errors"

// Script errors.
var (
	// ErrStateClosed is returned when using a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrFunctionNotFound is returned when a called global is not a function.
	ErrFunctionNotFound = errors.New("lua function not found")

	// ErrBadResult is returned when a function returns a value of the wrong type.
	ErrBadResult = errors.New("unexpected lua result")
)
