package app

import (
	"errors"
	"io/fs"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "op only",
			err:      &OperationError{Op: "serve"},
			expected: "serve",
		},
		{
			name:     "op and target",
			err:      &OperationError{Op: "stat", Target: "/path/file.txt"},
			expected: "stat /path/file.txt",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "stat", Target: "/path/file.txt", Err: errors.New("io error")},
			expected: "stat /path/file.txt: io error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", result, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("stat", "missing.txt", fs.ErrNotExist)

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected errors.Is to find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil Unwrap on nil receiver")
	}
}

func TestInitError(t *testing.T) {
	cause := errors.New("bad tokenizer")
	err := error(&InitError{Component: "components", Err: cause})

	if err.Error() != "initializing components: bad tokenizer" {
		t.Errorf("unexpected message: %s", err)
	}
	if !errors.Is(err, ErrInitialization) {
		t.Error("expected InitError to match ErrInitialization")
	}
	if !errors.Is(err, cause) {
		t.Error("expected InitError to unwrap to its cause")
	}
}
