package plugin

import (
	"time"

	"github.com/dshills/wordcount/internal/host"
	"github.com/dshills/wordcount/internal/stats"
)

// Session is the plugin state for one open view.
type Session struct {
	id     host.ViewID
	opened time.Time

	stats stats.State

	refreshes int
	triggers  int
	failures  int
}

func newSession(id host.ViewID) *Session {
	return &Session{id: id, opened: time.Now()}
}

// ID returns the view id.
func (s *Session) ID() host.ViewID {
	return s.id
}

// Counts returns the last published counts.
func (s *Session) Counts() stats.Counts {
	return s.stats.Counts
}

// Published reports whether status items exist for the view.
func (s *Session) Published() bool {
	return s.stats.Published
}

// Refreshes returns how many refreshes succeeded.
func (s *Session) Refreshes() int {
	return s.refreshes
}

// Triggers returns how many times the capitalization transform fired.
func (s *Session) Triggers() int {
	return s.triggers
}

// Failures returns how many operations failed and were reported.
func (s *Session) Failures() int {
	return s.failures
}

// Opened returns when the view was opened.
func (s *Session) Opened() time.Time {
	return s.opened
}
