// Package stats computes word, line and character counts for a document and
// publishes them to the editor's status bar.
//
// Counts are recomputed from scratch on every refresh. The document is read
// one line at a time through the host, so peak memory is bounded by the
// longest line rather than the document size.
package stats

import (
	"context"
	"fmt"

	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/tokenize"
)

// Status item keys. They are stable for the lifetime of a view.
const (
	KeyWords = "wordcount.words"
	KeyLines = "wordcount.lines"
	KeyChars = "wordcount.chars"
)

// Counts is a snapshot of document statistics.
// Chars is measured in bytes of UTF-8 text.
type Counts struct {
	Words int
	Lines int
	Chars int
}

// String returns a human-readable representation of the counts.
func (c Counts) String() string {
	return fmt.Sprintf("words=%d lines=%d chars=%d", c.Words, c.Lines, c.Chars)
}

// State is the per-view publication state the engine maintains.
type State struct {
	// Counts holds the last published counts.
	Counts Counts

	// Published is true once status items exist for the view.
	Published bool

	// published remembers the value last sent for each key. A key present
	// here has a status item on the host.
	published map[string]string
}

// Engine computes and publishes document statistics.
type Engine struct {
	tokenizer tokenize.Tokenizer
	alignment host.Alignment
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenizer sets the word tokenizer.
func WithTokenizer(t tokenize.Tokenizer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tokenizer = t
		}
	}
}

// WithAlignment sets the status bar side for new items.
func WithAlignment(a host.Alignment) Option {
	return func(e *Engine) {
		if a != "" {
			e.alignment = a
		}
	}
}

// NewEngine creates an engine using the word tokenizer and left alignment
// unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tokenizer: tokenize.Word(),
		alignment: host.AlignLeft,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tokenizer returns the tokenizer in use.
func (e *Engine) Tokenizer() tokenize.Tokenizer {
	return e.tokenizer
}

// Count computes the statistics of buf without publishing them.
func (e *Engine) Count(ctx context.Context, buf host.BufferAccessor) (Counts, error) {
	size, err := buf.BufSize(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("buffer size: %w", err)
	}

	lastLine, err := buf.LineOfOffset(ctx, size)
	if err != nil {
		return Counts{}, fmt.Errorf("last line: %w", err)
	}

	words := 0
	for line := 0; line <= lastLine; line++ {
		text, err := buf.GetLine(ctx, line)
		if err != nil {
			return Counts{}, fmt.Errorf("counting words: %w", err)
		}
		n, err := tokenize.Count(ctx, e.tokenizer, text)
		if err != nil {
			return Counts{}, fmt.Errorf("tokenizing line %d: %w", line, err)
		}
		words += n
	}

	return Counts{
		Words: words,
		Lines: lastLine + 1,
		Chars: size,
	}, nil
}

// Refresh recomputes the statistics of view and publishes them. The first
// successful refresh creates the status items; later ones update them.
//
// If counting fails nothing is published and st is left unchanged, so the
// previous counts stay on screen.
func (e *Engine) Refresh(ctx context.Context, view host.View, st *State) (Counts, error) {
	counts, err := e.Count(ctx, view)
	if err != nil {
		return st.Counts, err
	}

	if err := e.publish(ctx, view, st, counts); err != nil {
		return st.Counts, err
	}
	st.Counts = counts
	return counts, nil
}

// publish sends the items that changed. If one fails, items already
// updated in this call are set back to their previous values so the
// status bar keeps showing a single set of counts.
func (e *Engine) publish(ctx context.Context, sink host.StatusSink, st *State, c Counts) error {
	items := []statusValue{
		{KeyWords, FormatWords(c.Words)},
		{KeyLines, FormatLines(c.Lines)},
		{KeyChars, FormatChars(c.Chars)},
	}

	if st.published == nil {
		st.published = make(map[string]string, len(items))
	}

	var updated []statusValue
	for _, item := range items {
		prev, exists := st.published[item.key]
		var err error
		switch {
		case !exists:
			if err = sink.AddStatusItem(ctx, item.key, item.value, e.alignment); err != nil {
				err = fmt.Errorf("adding status item %s: %w", item.key, err)
			}
		case prev != item.value:
			if err = sink.UpdateStatusItem(ctx, item.key, item.value); err != nil {
				err = fmt.Errorf("updating status item %s: %w", item.key, err)
			}
		default:
			continue
		}
		if err != nil {
			e.rollback(ctx, sink, st, updated)
			return err
		}
		if exists {
			updated = append(updated, statusValue{key: item.key, value: prev})
		}
		st.published[item.key] = item.value
	}
	st.Published = len(st.published) == len(items)
	return nil
}

type statusValue struct {
	key   string
	value string
}

// rollback restores previously published values. Items added for the
// first time stay as they are.
func (e *Engine) rollback(ctx context.Context, sink host.StatusSink, st *State, updated []statusValue) {
	for _, u := range updated {
		if err := sink.UpdateStatusItem(ctx, u.key, u.value); err == nil {
			st.published[u.key] = u.value
		}
	}
}

// FormatWords returns the status text for a word count.
func FormatWords(n int) string { return fmt.Sprintf("Words: %d", n) }

// FormatLines returns the status text for a line count.
func FormatLines(n int) string { return fmt.Sprintf("Lines: %d", n) }

// FormatChars returns the status text for a character count.
func FormatChars(n int) string { return fmt.Sprintf("Chars: %d", n) }
