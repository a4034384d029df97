package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dshills/wordcount/internal/capitalize"
	"github.com/dshills/wordcount/internal/delta"
	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/stats"
)

// Plugin dispatches host notifications to the statistics engine and the
// capitalization transform. Hooks must not be called concurrently for the
// same view.
type Plugin struct {
	mu       sync.Mutex
	sessions map[host.ViewID]*Session

	engine    *stats.Engine
	transform *capitalize.Transform // nil when capitalization is disabled

	sink    Sink
	metrics *Metrics
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithEngine sets the statistics engine.
func WithEngine(e *stats.Engine) Option {
	return func(p *Plugin) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithTransform sets the capitalization transform. nil disables it.
func WithTransform(t *capitalize.Transform) Option {
	return func(p *Plugin) {
		p.transform = t
	}
}

// WithSink sets where recovered failures are reported.
func WithSink(s Sink) Option {
	return func(p *Plugin) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *Metrics) Option {
	return func(p *Plugin) {
		if m != nil {
			p.metrics = m
		}
	}
}

// New creates a plugin. By default it counts with the word tokenizer,
// capitalizes with an empty author tag and discards reports.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		sessions:  make(map[host.ViewID]*Session),
		engine:    stats.NewEngine(),
		transform: capitalize.New(host.EditOptions{}),
		sink:      Discard,
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Metrics returns the plugin's metrics tracker.
func (p *Plugin) Metrics() *Metrics {
	return p.metrics
}

// Reconfigure swaps the engine and transform. Existing sessions keep their
// status items; the next refresh uses the new engine.
func (p *Plugin) Reconfigure(e *stats.Engine, t *capitalize.Transform) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e != nil {
		p.engine = e
	}
	p.transform = t
}

// Session returns the session of a view.
func (p *Plugin) Session(id host.ViewID) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	return s, ok
}

// Counts returns the last published counts of a view.
func (p *Plugin) Counts(id host.ViewID) (stats.Counts, error) {
	s, ok := p.Session(id)
	if !ok {
		return stats.Counts{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !s.Published() {
		return stats.Counts{}, fmt.Errorf("%w: %s", ErrNotPublished, id)
	}
	return s.Counts(), nil
}

// Views returns the ids of all views with a session, sorted.
func (p *Plugin) Views() []host.ViewID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]host.ViewID, 0, len(p.sessions))
	for id := range p.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OnViewOpened creates the view's session and publishes its first counts.
func (p *Plugin) OnViewOpened(ctx context.Context, view host.View) error {
	return p.Refresh(ctx, view)
}

// OnEditApplied refreshes the view's counts and runs the capitalization
// transform on d.
func (p *Plugin) OnEditApplied(ctx context.Context, view host.View, d *delta.Delta, _, _ string) error {
	if err := p.Refresh(ctx, view); err != nil {
		return err
	}
	return p.capitalize(ctx, view, d)
}

// OnViewClosed drops the view's session.
func (p *Plugin) OnViewClosed(_ context.Context, id host.ViewID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, id)
	return nil
}

// OnSaved is a no-op.
func (p *Plugin) OnSaved(_ context.Context, _ host.ViewID, _ string) error {
	return nil
}

// OnConfigChanged is a no-op. Adapters that act on configuration call
// Reconfigure and Refresh themselves.
func (p *Plugin) OnConfigChanged(_ context.Context, _ host.ViewID, _ map[string]any) error {
	return nil
}

// Refresh recomputes and publishes the counts of view, creating its session
// if needed.
func (p *Plugin) Refresh(ctx context.Context, view host.View) error {
	s, engine, _ := p.acquire(view.ID())

	start := time.Now()
	_, err := engine.Refresh(ctx, view, &s.stats)
	if err != nil {
		p.metrics.RecordRefreshFailure()
		return p.absorb(s, OpRefresh, err)
	}
	s.refreshes++
	p.metrics.RecordRefresh(time.Since(start))
	return nil
}

func (p *Plugin) capitalize(ctx context.Context, view host.View, d *delta.Delta) error {
	s, _, transform := p.acquire(view.ID())
	if transform == nil {
		return nil
	}

	out, err := transform.OnEdit(ctx, view, d)
	if err != nil {
		p.metrics.RecordTransformFailure()
		return p.absorb(s, OpCapitalize, err)
	}
	if out.Triggered {
		s.triggers++
		p.metrics.RecordTrigger(out.Emitted)
	}
	return nil
}

// acquire returns the session for id, creating it, along with the engine
// and transform in effect.
func (p *Plugin) acquire(id host.ViewID) (*Session, *stats.Engine, *capitalize.Transform) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	if !ok {
		s = newSession(id)
		p.sessions[id] = s
	}
	return s, p.engine, p.transform
}

// absorb reports err to the sink unless it is fatal, in which case it is
// returned to the host adapter.
func (p *Plugin) absorb(s *Session, op string, err error) error {
	if host.IsFatal(err) {
		return err
	}
	s.failures++
	p.sink.Report(Report{View: s.id, Op: op, Err: err, Time: time.Now()})
	return nil
}
