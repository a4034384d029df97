package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dshills/wordcount/internal/capitalize"
	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/memhost"
	"github.com/dshills/wordcount/internal/plugin"
	"github.com/dshills/wordcount/internal/stats"
)

// fakeEditor is the editor side of a connection, backed by a memhost document.
type fakeEditor struct {
	doc  *memhost.Document
	conn *jsonrpc2.Conn

	// closeOn makes the editor drop the connection when it receives this method.
	closeOn string

	mu     sync.Mutex
	calls  map[string]int
	edits  []EditParams
	status map[string]string
}

func (e *fakeEditor) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	e.mu.Lock()
	e.calls[req.Method]++
	closeOn := e.closeOn
	e.mu.Unlock()

	if req.Method == closeOn {
		conn.Close()
		return nil, errors.New("editor gone")
	}

	switch req.Method {
	case MethodGetBufSize:
		return e.doc.BufSize(ctx)
	case MethodLineOfOffset:
		var p OffsetParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, err
		}
		n, err := e.doc.LineOfOffset(ctx, p.Offset)
		return n, editorError(err)
	case MethodOffsetOfLine:
		var p LineParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, err
		}
		n, err := e.doc.OffsetOfLine(ctx, p.Line)
		return n, editorError(err)
	case MethodGetLine:
		var p LineParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, err
		}
		s, err := e.doc.GetLine(ctx, p.Line)
		return s, editorError(err)
	case MethodEdit:
		var p EditParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.edits = append(e.edits, p)
		e.mu.Unlock()
	case MethodAddStatusItem, MethodUpdateStatusItem:
		var p StatusParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.status[p.Key] = p.Value
		e.mu.Unlock()
	}
	return nil, nil
}

func editorError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, host.ErrOffsetOutOfRange):
		return &jsonrpc2.Error{Code: CodeOffsetOutOfRange, Message: err.Error()}
	case errors.Is(err, host.ErrLineOutOfRange):
		return &jsonrpc2.Error{Code: CodeLineOutOfRange, Message: err.Error()}
	default:
		return &jsonrpc2.Error{Code: CodeIO, Message: err.Error()}
	}
}

func (e *fakeEditor) callCount(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[method]
}

func (e *fakeEditor) statusValue(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status[key]
}

func (e *fakeEditor) submitted() []EditParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EditParams(nil), e.edits...)
}

// open announces the document to the plugin.
func (e *fakeEditor) open(ctx context.Context) error {
	return e.conn.Notify(ctx, MethodNewView, ViewParams{ViewID: e.doc.ID(), Rev: e.doc.Rev()})
}

// typeText inserts text into the document and sends the update request.
func (e *fakeEditor) typeText(ctx context.Context, offset int, text string) error {
	d := delta.NewInsert(len(e.doc.Text()), offset, text)
	if err := e.doc.Apply(d); err != nil {
		return err
	}
	params := UpdateParams{
		ViewID:   e.doc.ID(),
		Rev:      e.doc.Rev(),
		Delta:    d,
		EditType: "insert",
		Author:   "editor",
	}
	var res int
	return e.conn.Call(ctx, MethodUpdate, params, &res)
}

// startServer serves s on one end of a pipe and connects a fake editor
// holding text to the other.
func startServer(t *testing.T, s *Server, text string) (*fakeEditor, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pluginEnd, editorEnd := net.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(ctx, pluginEnd)
	}()

	e := &fakeEditor{
		doc:    memhost.NewDocument("v", text),
		calls:  make(map[string]int),
		status: make(map[string]string),
	}
	e.conn = jsonrpc2.NewConn(ctx, jsonrpc2.NewPlainObjectStream(editorEnd), jsonrpc2.HandlerWithError(e.handle))

	t.Cleanup(func() {
		e.conn.Close()
		pluginEnd.Close()
		cancel()
	})
	return e, errc
}

func newTestServer(opts ...Option) (*Server, *plugin.Plugin) {
	p := plugin.New(plugin.WithTransform(capitalize.New(host.EditOptions{Author: "wordcount"})))
	return NewServer(p, opts...), p
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitServe(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestServerPublishesCountsOnOpen(t *testing.T) {
	s, _ := newTestServer()
	e, _ := startServer(t, s, "one two\nthree")
	ctx := context.Background()

	if err := e.open(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, "status items", func() bool {
		return e.statusValue(stats.KeyChars) != ""
	})

	want := map[string]string{
		stats.KeyWords: "Words: 3",
		stats.KeyLines: "Lines: 2",
		stats.KeyChars: "Chars: 13",
	}
	for key, value := range want {
		if got := e.statusValue(key); got != value {
			t.Errorf("status %s = %q, want %q", key, got, value)
		}
	}
}

func TestServerCapitalizesTypedBang(t *testing.T) {
	s, _ := newTestServer()
	e, _ := startServer(t, s, "hello world")
	ctx := context.Background()

	if err := e.open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.typeText(ctx, 11, "!"); err != nil {
		t.Fatalf("update error = %v", err)
	}

	edits := e.submitted()
	if len(edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(edits))
	}
	edit := edits[0]
	if edit.Rev != 1 || edit.Author != "wordcount" || edit.ViewID != "v" {
		t.Errorf("edit = %+v, want rev 1 by wordcount on v", edit)
	}
	if err := e.doc.Apply(edit.Delta); err != nil {
		t.Fatalf("applying edit: %v", err)
	}
	if got := e.doc.Text(); got != "hello WORLD!" {
		t.Errorf("text = %q, want %q", got, "hello WORLD!")
	}
	if got := e.statusValue(stats.KeyChars); got != "Chars: 12" {
		t.Errorf("chars status = %q, want Chars: 12", got)
	}
}

func TestServerCachesQueriesPerRevision(t *testing.T) {
	s, _ := newTestServer()
	e, _ := startServer(t, s, "hello world")
	ctx := context.Background()

	if err := e.open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.typeText(ctx, 11, "!"); err != nil {
		t.Fatal(err)
	}

	// One fetch for the opening revision and one for the update; the
	// capitalization reuses the refresh's answers.
	if got := e.callCount(MethodGetBufSize); got != 2 {
		t.Errorf("get_buf_size calls = %d, want 2", got)
	}
	if got := e.callCount(MethodGetLine); got != 2 {
		t.Errorf("get_line calls = %d, want 2", got)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s, _ := newTestServer()
	e, _ := startServer(t, s, "")

	var res any
	err := e.conn.Call(context.Background(), "frobnicate", nil, &res)
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Fatalf("Call error = %v, want method not found", err)
	}
}

func TestServerRejectsInvalidUpdates(t *testing.T) {
	s, _ := newTestServer()
	e, _ := startServer(t, s, "ab")
	ctx := context.Background()

	wrongLen := 7
	bad := []any{
		map[string]any{"view_id": "v", "rev": 1},
		UpdateParams{ViewID: "v", Rev: 1, Delta: delta.NewInsert(2, 2, "c"), NewLen: &wrongLen},
		UpdateParams{ViewID: "v", Rev: 1, Delta: &delta.Delta{BaseLen: 2, Els: []delta.Element{delta.Copy(0, 5)}}},
	}
	for i, params := range bad {
		var res any
		err := e.conn.Call(ctx, MethodUpdate, params, &res)
		var rpcErr *jsonrpc2.Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeInvalidParams {
			t.Errorf("update %d error = %v, want invalid params", i, err)
		}
	}

	// The server keeps going; the view is created on its first valid update.
	if err := e.typeText(ctx, 2, "c"); err != nil {
		t.Fatalf("valid update error = %v", err)
	}
	if got := e.statusValue(stats.KeyChars); got != "Chars: 3" {
		t.Errorf("chars status = %q, want Chars: 3", got)
	}
}

func TestServerShutdown(t *testing.T) {
	s, p := newTestServer()
	e, errc := startServer(t, s, "x")
	ctx := context.Background()

	if err := e.open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.conn.Notify(ctx, MethodDidClose, ViewParams{ViewID: "v"}); err != nil {
		t.Fatal(err)
	}
	var res any
	if err := e.conn.Call(ctx, MethodShutdown, nil, &res); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	if err := waitServe(t, errc); err != nil {
		t.Errorf("Serve error = %v, want nil", err)
	}
	if len(s.views) != 0 || len(p.Views()) != 0 {
		t.Errorf("views left after close: server %d, plugin %v", len(s.views), p.Views())
	}
}

func TestServerEditorDisconnect(t *testing.T) {
	s, _ := newTestServer()
	e, errc := startServer(t, s, "x")

	e.conn.Close()
	if err := waitServe(t, errc); err != nil {
		t.Errorf("Serve error = %v, want nil on idle disconnect", err)
	}
}

func TestServerTransportLossIsFatal(t *testing.T) {
	s, _ := newTestServer()
	e, errc := startServer(t, s, "x")
	e.mu.Lock()
	e.closeOn = MethodGetBufSize
	e.mu.Unlock()

	if err := e.open(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := waitServe(t, errc)
	if !errors.Is(err, host.ErrTransport) {
		t.Errorf("Serve error = %v, want ErrTransport", err)
	}
}

func TestServerConfigChanged(t *testing.T) {
	var (
		s *Server
		p *plugin.Plugin
	)
	var hookCalls atomic.Int32
	s, p = newTestServer(WithConfigFunc(func(_ context.Context, c ConfigChange) (bool, error) {
		hookCalls.Add(1)
		if c.Capitalize == nil || *c.Capitalize {
			return false, nil
		}
		p.Reconfigure(nil, nil)
		return true, nil
	}))
	e, _ := startServer(t, s, "hello world")
	ctx := context.Background()

	if err := e.open(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, "first refresh", func() bool {
		return p.Metrics().Snapshot().RefreshCount == 1
	})

	send := func(changes string) {
		t.Helper()
		err := e.conn.Notify(ctx, MethodConfigChanged, ConfigParams{ViewID: "v", Changes: json.RawMessage(changes)})
		if err != nil {
			t.Fatal(err)
		}
	}

	// Settings of other plugins do not reach the hook.
	send(`{"tab_size":4}`)
	send(`{"wordcount.capitalize":false}`)
	eventually(t, "refresh after reconfigure", func() bool {
		return p.Metrics().Snapshot().RefreshCount == 2
	})
	if got := hookCalls.Load(); got != 1 {
		t.Errorf("hook calls = %d, want 1", got)
	}

	if err := e.typeText(ctx, 11, "!"); err != nil {
		t.Fatal(err)
	}
	if edits := e.submitted(); len(edits) != 0 {
		t.Errorf("edits after disabling capitalization = %+v, want none", edits)
	}
}
