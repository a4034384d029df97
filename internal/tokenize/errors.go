package tokenize

import "errors"

// Tokenizer errors.
var (
	// ErrUnknownTokenizer is returned by New for an unregistered name.
	ErrUnknownTokenizer = errors.New("unknown tokenizer")

	// ErrMissingScript is returned when the lua tokenizer has no script path.
	ErrMissingScript = errors.New("missing tokenizer script")

	// ErrInvalidCount is returned when a script yields NaN or an infinity.
	ErrInvalidCount = errors.New("invalid word count")
)
