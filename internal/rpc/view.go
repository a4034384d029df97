package rpc

import (
	"context"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// caller is the part of *jsonrpc2.Conn a remote view uses.
type caller interface {
	Call(ctx context.Context, method string, params, result any, opts ...jsonrpc2.CallOption) error
	Notify(ctx context.Context, method string, params any, opts ...jsonrpc2.CallOption) error
}

// remoteView implements host.View by calling into the editor. Buffer size
// and lines are cached for the current revision.
type remoteView struct {
	id   host.ViewID
	conn caller

	mu     sync.Mutex
	rev    uint64
	size   int
	sized  bool
	lines  map[int]string
	hits   int
	misses int
}

func newRemoteView(id host.ViewID, conn caller, rev uint64) *remoteView {
	return &remoteView{id: id, conn: conn, rev: rev, lines: make(map[int]string)}
}

// ID implements host.View.
func (v *remoteView) ID() host.ViewID {
	return v.id
}

// Rev returns the revision the cache belongs to.
func (v *remoteView) Rev() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rev
}

// setRev moves the view to rev and drops the cache.
func (v *remoteView) setRev(rev uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rev = rev
	v.sized = false
	v.lines = make(map[int]string)
}

// BufSize implements host.BufferAccessor.
func (v *remoteView) BufSize(ctx context.Context) (int, error) {
	v.mu.Lock()
	if v.sized {
		size := v.size
		v.hits++
		v.mu.Unlock()
		return size, nil
	}
	rev := v.rev
	v.misses++
	v.mu.Unlock()

	var size int
	if err := v.conn.Call(ctx, MethodGetBufSize, ViewParams{ViewID: v.id}, &size); err != nil {
		return 0, queryError(MethodGetBufSize, 0, err)
	}

	v.mu.Lock()
	if v.rev == rev {
		v.size, v.sized = size, true
	}
	v.mu.Unlock()
	return size, nil
}

// LineOfOffset implements host.BufferAccessor.
func (v *remoteView) LineOfOffset(ctx context.Context, offset int) (int, error) {
	var line int
	params := OffsetParams{ViewID: v.id, Offset: offset}
	if err := v.conn.Call(ctx, MethodLineOfOffset, params, &line); err != nil {
		return 0, queryError(MethodLineOfOffset, offset, err)
	}
	return line, nil
}

// OffsetOfLine implements host.BufferAccessor.
func (v *remoteView) OffsetOfLine(ctx context.Context, line int) (int, error) {
	var offset int
	params := LineParams{ViewID: v.id, Line: line}
	if err := v.conn.Call(ctx, MethodOffsetOfLine, params, &offset); err != nil {
		return 0, queryError(MethodOffsetOfLine, line, err)
	}
	return offset, nil
}

// GetLine implements host.BufferAccessor.
func (v *remoteView) GetLine(ctx context.Context, line int) (string, error) {
	v.mu.Lock()
	if text, ok := v.lines[line]; ok {
		v.hits++
		v.mu.Unlock()
		return text, nil
	}
	rev := v.rev
	v.misses++
	v.mu.Unlock()

	var text string
	if err := v.conn.Call(ctx, MethodGetLine, LineParams{ViewID: v.id, Line: line}, &text); err != nil {
		return "", queryError(MethodGetLine, line, err)
	}

	v.mu.Lock()
	if v.rev == rev {
		v.lines[line] = text
	}
	v.mu.Unlock()
	return text, nil
}

// GetRegion implements host.BufferAccessor.
func (v *remoteView) GetRegion(ctx context.Context, iv delta.Interval) (string, error) {
	var text string
	params := RegionParams{ViewID: v.id, Start: iv.Start, End: iv.End}
	if err := v.conn.Call(ctx, MethodGetRegion, params, &text); err != nil {
		return "", queryError(MethodGetRegion, iv.Start, err)
	}
	return text, nil
}

// Edit implements host.EditEmitter. The edit carries the cached revision so
// the editor can reject it if the buffer has moved on.
func (v *remoteView) Edit(ctx context.Context, d *delta.Delta, opts host.EditOptions) error {
	params := EditParams{
		ViewID:      v.id,
		Rev:         v.Rev(),
		Delta:       d,
		Priority:    opts.Priority,
		AfterCursor: opts.AfterCursor,
		Author:      opts.Author,
	}
	if err := v.conn.Notify(ctx, MethodEdit, params); err != nil {
		return queryError(MethodEdit, 0, err)
	}
	return nil
}

// AddStatusItem implements host.StatusSink.
func (v *remoteView) AddStatusItem(ctx context.Context, key, value string, align host.Alignment) error {
	params := StatusParams{ViewID: v.id, Key: key, Value: value, Alignment: string(align)}
	if err := v.conn.Notify(ctx, MethodAddStatusItem, params); err != nil {
		return queryError(MethodAddStatusItem, 0, err)
	}
	return nil
}

// UpdateStatusItem implements host.StatusSink.
func (v *remoteView) UpdateStatusItem(ctx context.Context, key, value string) error {
	params := StatusParams{ViewID: v.id, Key: key, Value: value}
	if err := v.conn.Notify(ctx, MethodUpdateStatusItem, params); err != nil {
		return queryError(MethodUpdateStatusItem, 0, err)
	}
	return nil
}

// cacheStats returns cache hits and misses.
func (v *remoteView) cacheStats() (hits, misses int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hits, v.misses
}
