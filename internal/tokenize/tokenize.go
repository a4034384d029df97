// Package tokenize counts words in text fragments.
//
// The statistics engine counts a document one line at a time and sums the
// results, so every tokenizer here must be line-disjoint: splitting text at
// '\n' and summing the counts of the pieces gives the count of the whole.
// Word and Segment guarantee this because '\n' is never part of a word.
package tokenize

import (
	"fmt"
	"sort"
)

// Tokenizer counts word tokens in a text fragment.
type Tokenizer interface {
	CountWords(text string) int
}

// Func adapts an ordinary function to the Tokenizer interface.
type Func func(text string) int

// CountWords calls f(text).
func (f Func) CountWords(text string) int {
	return f(text)
}

// Options configures tokenizers created by New.
type Options struct {
	// Script is the Lua file for the "lua" tokenizer.
	Script string
}

// Tokenizer names accepted by New.
const (
	NameWord    = "word"
	NameSegment = "segment"
	NameLua     = "lua"
)

// New creates the tokenizer registered under name.
// The empty name selects the default word tokenizer.
func New(name string, opts Options) (Tokenizer, error) {
	switch name {
	case "", NameWord:
		return Word(), nil
	case NameSegment:
		return Segment(), nil
	case NameLua:
		if opts.Script == "" {
			return nil, fmt.Errorf("%w: lua tokenizer needs a script", ErrMissingScript)
		}
		return NewLua(opts.Script)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, name)
	}
}

// Names returns the tokenizer names accepted by New.
func Names() []string {
	names := []string{NameWord, NameSegment, NameLua}
	sort.Strings(names)
	return names
}
