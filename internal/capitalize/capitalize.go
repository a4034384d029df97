// Package capitalize uppercases the word in front of a typed "!".
//
// The transform looks at one edit at a time. It fires only when the edit is
// a plain insertion of exactly "!"; pastes, deletions and replacements are
// ignored even if they contain a bang. The word is everything from the last
// whitespace on the line up to and including the inserted "!":
//
//	"hello world"  + "!"  ->  "hello WORLD!"
//
// The corrective edit is a replacement, so when it comes back as a
// notification it never fires the transform again.
package capitalize

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// Trigger is the inserted text that fires the transform.
const Trigger = "!"

// Outcome describes what the transform did with one edit.
type Outcome struct {
	// Triggered is true when the edit was a single "!" insertion.
	Triggered bool

	// Span is the document range that was uppercased.
	Span delta.Interval

	// Original is the span text before the transform.
	Original string

	// Replacement is the uppercased text.
	Replacement string

	// Emitted is true when an edit was submitted. It is false when the
	// replacement equals the original.
	Emitted bool
}

// Transform uppercases the word preceding a typed bang.
type Transform struct {
	opts  host.EditOptions
	upper cases.Caser
}

// New creates a transform tagging its edits with opts.
func New(opts host.EditOptions) *Transform {
	return &Transform{
		opts:  opts,
		upper: cases.Upper(language.Und),
	}
}

// EditOptions returns the tags attached to emitted edits.
func (t *Transform) EditOptions() host.EditOptions {
	return t.opts
}

// OnEdit inspects d, which has just been applied to view, and submits a
// corrective edit if it is a typed bang.
func (t *Transform) OnEdit(ctx context.Context, view host.View, d *delta.Delta) (Outcome, error) {
	if d == nil {
		return Outcome{}, nil
	}
	text, ok := d.SimpleInsert()
	if !ok || text != Trigger {
		return Outcome{}, nil
	}
	end, _ := d.InsertEnd()

	out := Outcome{Triggered: true}

	span, original, err := WordSpan(ctx, view, end)
	if err != nil {
		return out, err
	}
	out.Span = span
	out.Original = original
	out.Replacement = t.upper.String(original)

	if out.Replacement == original {
		return out, nil
	}

	size, err := view.BufSize(ctx)
	if err != nil {
		return out, fmt.Errorf("buffer size: %w", err)
	}
	b := delta.NewBuilder(size)
	if err := b.Replace(span, out.Replacement); err != nil {
		return out, err
	}
	if err := view.Edit(ctx, b.Build(), t.opts); err != nil {
		return out, fmt.Errorf("submitting edit: %w", err)
	}
	out.Emitted = true
	return out, nil
}

// WordSpan returns the range and text of the word ending at end: from just
// after the last whitespace on end's line, up to end.
func WordSpan(ctx context.Context, buf host.BufferAccessor, end int) (delta.Interval, string, error) {
	line, err := buf.LineOfOffset(ctx, end)
	if err != nil {
		return delta.Interval{}, "", err
	}
	lineStart, err := buf.OffsetOfLine(ctx, line)
	if err != nil {
		return delta.Interval{}, "", err
	}
	text, err := buf.GetLine(ctx, line)
	if err != nil {
		return delta.Interval{}, "", err
	}

	rel := end - lineStart
	if rel < 0 || rel > len(text) {
		return delta.Interval{}, "", host.NewQueryError("get_line", line, host.ErrOffsetOutOfRange)
	}

	start := WordStart(text, rel)
	return delta.Interval{Start: lineStart + start, End: end}, text[start:rel], nil
}

// WordStart scans line up to byte offset end and returns the offset just
// after the last whitespace rune before end, or 0 if there is none.
func WordStart(line string, end int) int {
	start := 0
	for i := 0; i < end && i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		if unicode.IsSpace(r) {
			start = i
		}
	}
	if start > end {
		start = end
	}
	return start
}
