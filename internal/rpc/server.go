package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
)

// Handler receives editor events. plugin.Plugin implements it.
type Handler interface {
	OnViewOpened(ctx context.Context, view host.View) error
	OnEditApplied(ctx context.Context, view host.View, d *delta.Delta, editKind, author string) error
	OnViewClosed(ctx context.Context, id host.ViewID) error
	OnSaved(ctx context.Context, id host.ViewID, path string) error
	OnConfigChanged(ctx context.Context, id host.ViewID, changes map[string]any) error
	Refresh(ctx context.Context, view host.View) error
}

// Logger is the logging used by the server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// printfLogger routes jsonrpc2's own diagnostics to a Logger.
type printfLogger struct{ l Logger }

func (p printfLogger) Printf(format string, v ...any) {
	p.l.Debug(format, v...)
}

// job is a unit of work for the dispatch goroutine.
type job struct {
	name string
	run  func(ctx context.Context) error
}

// Server runs the plugin side of the protocol.
type Server struct {
	handler  Handler
	logger   Logger
	onConfig ConfigFunc
	traffic  bool

	mu      sync.Mutex
	pending []job
	wake    chan struct{}

	// Owned by the dispatch goroutine.
	views   map[host.ViewID]*remoteView
	stopped bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfigFunc sets the function applying editor-provided settings.
func WithConfigFunc(fn ConfigFunc) Option {
	return func(s *Server) {
		s.onConfig = fn
	}
}

// WithTrafficLog logs every message sent and received at debug level.
func WithTrafficLog(enable bool) Option {
	return func(s *Server) {
		s.traffic = enable
	}
}

// NewServer creates a server delivering events to h.
func NewServer(h Handler, opts ...Option) *Server {
	s := &Server{
		handler: h,
		logger:  nopLogger{},
		wake:    make(chan struct{}, 1),
		views:   make(map[host.ViewID]*remoteView),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue schedules fn on the dispatch goroutine. It is safe to call from
// any goroutine; config reloads use it to avoid racing with editor events.
func (s *Server) Enqueue(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.pending = append(s.pending, job{name: name, run: fn})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Server) next() (job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return job{}, false
	}
	j := s.pending[0]
	s.pending[0] = job{}
	s.pending = s.pending[1:]
	return j, true
}

// ServeStdio serves the protocol on the process's stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, stdio{in: os.Stdin, out: os.Stdout})
}

// Serve runs the protocol on rwc until the editor sends shutdown, the
// connection closes or ctx is cancelled. It returns an error matching
// host.ErrTransport if the editor became unreachable while an event was
// being handled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []jsonrpc2.ConnOpt{jsonrpc2.SetLogger(printfLogger{s.logger})}
	if s.traffic {
		opts = append(opts, jsonrpc2.LogMessages(printfLogger{s.logger}))
	}
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewPlainObjectStream(rwc), handlerFunc(s.handle), opts...)
	defer conn.Close()

	for {
		j, ok := s.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-conn.DisconnectNotify():
				s.logger.Info("editor disconnected")
				return nil
			case <-s.wake:
			}
			continue
		}

		if err := j.run(ctx); err != nil {
			if host.IsFatal(err) {
				return fmt.Errorf("%s: %w", j.name, err)
			}
			s.logger.Warn("%s: %v", j.name, err)
		}
		if s.stopped {
			s.logger.Info("shutdown requested")
			return nil
		}
	}
}

// handlerFunc adapts a function to jsonrpc2.Handler.
type handlerFunc func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request)

func (f handlerFunc) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	f(ctx, conn, req)
}

// handle runs on the connection's read goroutine. It must not call back
// into the editor, so known methods are queued for the dispatch goroutine.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch req.Method {
	case MethodNewView, MethodUpdate, MethodDidClose, MethodDidSave, MethodConfigChanged, MethodShutdown:
		s.Enqueue(req.Method, func(ctx context.Context) error {
			return s.dispatch(ctx, conn, req)
		})
	default:
		if req.Notif {
			s.logger.Debug("ignoring notification %q", req.Method)
			return
		}
		_ = conn.ReplyWithError(ctx, req.ID, errMethodNotFound)
	}
}

// dispatch handles one editor message on the dispatch goroutine.
func (s *Server) dispatch(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) error {
	switch req.Method {
	case MethodNewView:
		var p ViewParams
		if err := decode(req, &p); err != nil || p.ViewID == "" {
			return s.invalid(ctx, conn, req, err)
		}
		v := newRemoteView(p.ViewID, conn, p.Rev)
		s.views[p.ViewID] = v
		return s.handler.OnViewOpened(ctx, v)

	case MethodUpdate:
		return s.update(ctx, conn, req)

	case MethodDidClose:
		var p ViewParams
		if err := decode(req, &p); err != nil {
			return s.invalid(ctx, conn, req, err)
		}
		delete(s.views, p.ViewID)
		return s.handler.OnViewClosed(ctx, p.ViewID)

	case MethodDidSave:
		var p SaveParams
		if err := decode(req, &p); err != nil {
			return s.invalid(ctx, conn, req, err)
		}
		return s.handler.OnSaved(ctx, p.ViewID, p.Path)

	case MethodConfigChanged:
		var p ConfigParams
		if err := decode(req, &p); err != nil {
			return s.invalid(ctx, conn, req, err)
		}
		return s.configChanged(ctx, p)

	case MethodShutdown:
		s.stopped = true
		if !req.Notif {
			return s.reply(ctx, conn, req, nil)
		}
		return nil
	}
	return nil
}

func (s *Server) update(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) error {
	var p UpdateParams
	if err := decode(req, &p); err != nil {
		return s.invalid(ctx, conn, req, err)
	}
	if p.Delta == nil {
		return s.invalid(ctx, conn, req, errors.New("missing delta"))
	}
	if err := p.Delta.Validate(); err != nil {
		return s.invalid(ctx, conn, req, err)
	}
	if p.NewLen != nil && *p.NewLen != p.Delta.NewLen() {
		return s.invalid(ctx, conn, req, fmt.Errorf("new_len %d does not match delta length %d", *p.NewLen, p.Delta.NewLen()))
	}

	v, ok := s.views[p.ViewID]
	if !ok {
		s.logger.Debug("update for unannounced view %s", p.ViewID)
		v = newRemoteView(p.ViewID, conn, p.Rev)
		s.views[p.ViewID] = v
	}
	v.setRev(p.Rev)

	if err := s.handler.OnEditApplied(ctx, v, p.Delta, p.EditType, p.Author); err != nil {
		if !req.Notif {
			_ = conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()})
		}
		return err
	}
	if req.Notif {
		return nil
	}
	return s.reply(ctx, conn, req, 0)
}

func (s *Server) configChanged(ctx context.Context, p ConfigParams) error {
	if err := s.handler.OnConfigChanged(ctx, p.ViewID, decodeChanges(p.Changes)); err != nil {
		return err
	}
	if s.onConfig == nil {
		return nil
	}
	change := ParseConfigChange(p.Changes)
	if change.IsZero() {
		return nil
	}
	changed, err := s.onConfig(ctx, change)
	if err != nil {
		return fmt.Errorf("applying editor settings: %w", err)
	}
	if !changed {
		return nil
	}
	return s.RefreshAll(ctx)
}

// RefreshAll recounts every open view in id order. Must run on the dispatch
// goroutine; use Enqueue from elsewhere.
func (s *Server) RefreshAll(ctx context.Context) error {
	ids := make([]host.ViewID, 0, len(s.views))
	for id := range s.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := s.handler.Refresh(ctx, s.views[id]); err != nil {
			return err
		}
	}
	return nil
}

// reply answers a request, mapping a closed connection to ErrTransport.
func (s *Server) reply(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, result any) error {
	if err := conn.Reply(ctx, req.ID, result); err != nil {
		return fmt.Errorf("replying to %s: %w", req.Method, transportError(err))
	}
	return nil
}

// invalid rejects a malformed message. The error is logged, not fatal.
func (s *Server) invalid(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, cause error) error {
	if cause == nil {
		cause = errors.New("missing view_id")
	}
	if !req.Notif {
		if err := conn.ReplyWithError(ctx, req.ID, errInvalidParams); err != nil && isClosed(err) {
			return transportError(err)
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidParams, cause)
}

func decode(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return errors.New("missing params")
	}
	return json.Unmarshal(*req.Params, v)
}

// stdio joins stdin and stdout into one stream.
type stdio struct{ in, out *os.File }

func (c stdio) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c stdio) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c stdio) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
