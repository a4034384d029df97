package host

import (
	"errors"
	"fmt"
)

// Host query errors.
var (
	// ErrOffsetOutOfRange is returned when a byte offset lies outside the document.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrLineOutOfRange is returned when a line number does not exist.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrIO is returned when text could not be fetched from the editor.
	ErrIO = errors.New("buffer fetch failed")

	// ErrTransport is returned when the link to the editor is severed.
	ErrTransport = errors.New("host transport closed")
)

// QueryError describes a failed host query.
type QueryError struct {
	Op  string // Query name (e.g., "line_of_offset", "get_line")
	Arg int    // Offset or line number the query was made with
	Err error  // Underlying error
}

// NewQueryError creates a new QueryError.
func NewQueryError(op string, arg int, err error) *QueryError {
	return &QueryError{Op: op, Arg: arg, Err: err}
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s(%d): %v", e.Op, e.Arg, e.Err)
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsFatal reports whether err means the host can no longer be reached.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTransport)
}
