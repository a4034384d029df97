package plugin

import (
	"sync/atomic"
	"time"
)

// Metrics tracks plugin activity across all views.
type Metrics struct {
	refreshCount    atomic.Uint64
	refreshTotalNs  atomic.Int64
	refreshMaxNs    atomic.Int64
	refreshFailures atomic.Uint64

	triggers          atomic.Uint64
	editsEmitted      atomic.Uint64
	transformFailures atomic.Uint64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	RefreshCount      uint64
	RefreshAvg        time.Duration
	RefreshMax        time.Duration
	RefreshFailures   uint64
	Triggers          uint64
	EditsEmitted      uint64
	TransformFailures uint64
	Uptime            time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRefresh records a successful refresh.
func (m *Metrics) RecordRefresh(d time.Duration) {
	ns := d.Nanoseconds()
	m.refreshCount.Add(1)
	m.refreshTotalNs.Add(ns)
	for {
		old := m.refreshMaxNs.Load()
		if ns <= old || m.refreshMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRefreshFailure records a refresh that was abandoned.
func (m *Metrics) RecordRefreshFailure() {
	m.refreshFailures.Add(1)
}

// RecordTrigger records a capitalization trigger and whether it emitted an edit.
func (m *Metrics) RecordTrigger(emitted bool) {
	m.triggers.Add(1)
	if emitted {
		m.editsEmitted.Add(1)
	}
}

// RecordTransformFailure records a trigger that could not be completed.
func (m *Metrics) RecordTransformFailure() {
	m.transformFailures.Add(1)
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		RefreshCount:      m.refreshCount.Load(),
		RefreshMax:        time.Duration(m.refreshMaxNs.Load()),
		RefreshFailures:   m.refreshFailures.Load(),
		Triggers:          m.triggers.Load(),
		EditsEmitted:      m.editsEmitted.Load(),
		TransformFailures: m.transformFailures.Load(),
		Uptime:            time.Since(m.startTime),
	}
	if s.RefreshCount > 0 {
		s.RefreshAvg = time.Duration(m.refreshTotalNs.Load() / int64(s.RefreshCount))
	}
	return s
}
