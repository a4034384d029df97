package tokenize

import (
	"context"
	"fmt"
	"math"

	"github.com/dshills/wordcount/internal/script"
)

// luaEntryPoint is the global a tokenizer script must define.
const luaEntryPoint = "count_words"

// Lua counts words by calling count_words(text) in a sandboxed script.
type Lua struct {
	state *script.State
	path  string
}

// NewLua loads the script at path.
func NewLua(path string) (*Lua, error) {
	s, err := script.LoadFile(context.Background(), path)
	if err != nil {
		return nil, err
	}
	return &Lua{state: s, path: path}, nil
}

// CountWords implements Tokenizer. Script failures count as zero words;
// use CountWordsErr to observe them.
func (l *Lua) CountWords(text string) int {
	n, _ := l.CountWordsErr(context.Background(), text)
	return n
}

// CountWordsErr calls the script and reports its failures.
func (l *Lua) CountWordsErr(ctx context.Context, text string) (int, error) {
	n, err := l.state.CallNumber(ctx, luaEntryPoint, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%s returned %v: %w", luaEntryPoint, n, ErrInvalidCount)
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}

// Path returns the script location.
func (l *Lua) Path() string {
	return l.path
}

// Close releases the Lua state.
func (l *Lua) Close() {
	l.state.Close()
}

// Fallible is implemented by tokenizers that can fail, such as Lua.
// The statistics engine prefers it so a broken script aborts the refresh
// instead of publishing wrong counts.
type Fallible interface {
	CountWordsErr(ctx context.Context, text string) (int, error)
}

// Count calls t, using CountWordsErr when t supports it.
func Count(ctx context.Context, t Tokenizer, text string) (int, error) {
	if f, ok := t.(Fallible); ok {
		return f.CountWordsErr(ctx, text)
	}
	return t.CountWords(text), nil
}
