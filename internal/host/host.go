package host

import (
	"context"
	"fmt"

	"github.com/dshills/wordcount/internal/delta"
)

// ViewID identifies one open editing session.
type ViewID string

// Alignment is the side of the status bar an item is placed on.
type Alignment string

const (
	// AlignLeft places the item on the left of the status bar.
	AlignLeft Alignment = "left"
	// AlignRight places the item on the right of the status bar.
	AlignRight Alignment = "right"
)

// ParseAlignment parses a configuration string into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(s) {
	case AlignLeft, AlignRight:
		return Alignment(s), nil
	case "":
		return AlignLeft, nil
	default:
		return "", fmt.Errorf("invalid alignment %q (must be left or right)", s)
	}
}

// BufferAccessor answers offset and line queries for one document.
type BufferAccessor interface {
	// BufSize returns the document size in bytes.
	BufSize(ctx context.Context) (int, error)

	// LineOfOffset returns the 0-based line containing offset.
	// offset == BufSize is valid and maps to the last line.
	LineOfOffset(ctx context.Context, offset int) (int, error)

	// OffsetOfLine returns the byte offset at which line starts.
	OffsetOfLine(ctx context.Context, line int) (int, error)

	// GetLine returns the text of line including its terminating '\n', if any.
	GetLine(ctx context.Context, line int) (string, error)

	// GetRegion returns the text in iv.
	GetRegion(ctx context.Context, iv delta.Interval) (string, error)
}

// EditOptions carries the opaque tags attached to a submitted edit.
type EditOptions struct {
	Priority    uint64
	AfterCursor bool
	Author      string
}

// EditEmitter submits edits to the editor. Submission is fire-and-forget:
// the editor may still reject the edit, in which case no notification follows.
type EditEmitter interface {
	Edit(ctx context.Context, d *delta.Delta, opts EditOptions) error
}

// StatusSink manages status-bar items.
type StatusSink interface {
	AddStatusItem(ctx context.Context, key, value string, align Alignment) error
	UpdateStatusItem(ctx context.Context, key, value string) error
}

// View is everything the core can do with one open document.
type View interface {
	ID() ViewID
	BufferAccessor
	EditEmitter
	StatusSink
}
