package plugin

import (
	"fmt"
	"time"

	"github.com/dshills/wordcount/internal/host"
)

// Operations named in reports.
const (
	OpRefresh    = "refresh"
	OpCapitalize = "capitalize"
)

// Report describes a failure the plugin recovered from.
type Report struct {
	View host.ViewID
	Op   string
	Err  error
	Time time.Time
}

// String returns a human-readable representation of the report.
func (r Report) String() string {
	return fmt.Sprintf("%s %s: %v", r.View, r.Op, r.Err)
}

// Sink receives recovered failures.
type Sink interface {
	Report(r Report)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Report)

// Report calls f(r).
func (f SinkFunc) Report(r Report) {
	f(r)
}

// Discard is a Sink that drops every report.
var Discard Sink = SinkFunc(func(Report) {})
