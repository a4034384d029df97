// Package host defines the contract between the statistics core and the
// editor that owns the document.
//
// The core never holds document text beyond a single call. Everything it
// knows about a buffer comes through a View: byte-offset and line queries,
// text slices, edit submission and status-bar items. Implementations live
// in the adapters (internal/rpc for a spawned plugin process,
// internal/memhost for the in-process host used by the CLI and tests).
//
// # Units
//
// Offsets are byte offsets into the UTF-8 encoded document. Lines are
// 0-based and separated by '\n'. A document always has at least one line:
// the empty document is a single empty line.
//
// # Failures
//
// Query failures wrap one of ErrOffsetOutOfRange, ErrLineOutOfRange or
// ErrIO and are recoverable: the caller abandons the current operation and
// waits for the next notification. ErrTransport means the link to the
// editor is gone and is the only fatal condition.
package host
