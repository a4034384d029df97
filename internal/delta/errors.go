package delta

import "errors"

// Delta errors.
var (
	// ErrBaseMismatch is returned when a delta is applied to text of the wrong length.
	ErrBaseMismatch = errors.New("delta base length does not match text")

	// ErrInvalidCopy is returned when a copy element falls outside the base
	// or is out of order.
	ErrInvalidCopy = errors.New("invalid copy element")

	// ErrUnorderedEdit is returned when builder edits overlap or go backwards.
	ErrUnorderedEdit = errors.New("edits must be ascending and non-overlapping")

	// ErrMalformedElement is returned when a JSON element is neither copy nor insert.
	ErrMalformedElement = errors.New("malformed delta element")
)
