package delta

import "fmt"

// Builder assembles a Delta from replace operations over a base document.
// Operations must be supplied in ascending, non-overlapping order.
type Builder struct {
	baseLen int
	pos     int
	els     []Element
	err     error
}

// NewBuilder creates a builder for a base document of baseLen bytes.
func NewBuilder(baseLen int) *Builder {
	return &Builder{baseLen: baseLen}
}

// Replace replaces the base text in iv with text.
func (b *Builder) Replace(iv Interval, text string) error {
	if b.err != nil {
		return b.err
	}
	if iv.Start < b.pos || iv.Start > iv.End || iv.End > b.baseLen {
		b.err = fmt.Errorf("%w: %s after %d (base %d)", ErrUnorderedEdit, iv, b.pos, b.baseLen)
		return b.err
	}
	if iv.Start > b.pos {
		b.els = append(b.els, Copy(b.pos, iv.Start))
	}
	if text != "" {
		b.els = append(b.els, Insert(text))
	}
	b.pos = iv.End
	return nil
}

// Insert inserts text at offset.
func (b *Builder) Insert(offset int, text string) error {
	return b.Replace(Interval{Start: offset, End: offset}, text)
}

// Delete removes the base text in iv.
func (b *Builder) Delete(iv Interval) error {
	return b.Replace(iv, "")
}

// Err returns the first error encountered while building.
func (b *Builder) Err() error {
	return b.err
}

// Build returns the assembled delta. Base text after the last operation is
// copied through unchanged.
func (b *Builder) Build() *Delta {
	els := make([]Element, len(b.els), len(b.els)+1)
	copy(els, b.els)
	if b.pos < b.baseLen {
		els = append(els, Copy(b.pos, b.baseLen))
	}
	return &Delta{BaseLen: b.baseLen, Els: els}
}
