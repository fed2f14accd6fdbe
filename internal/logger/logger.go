// Package logger implements the pluggable logger pipeline: a polymorphic
// sink contract and the concrete sinks described in spec.md §4.2 — print,
// file, background (concurrent), crash (synchronous), multi (fan-out),
// prefix, collecting, and HTTP POST — plus severity filtering.
//
// Every Logger implementation must ensure that events delivered before
// Close returns have been fully processed, and Close must be idempotent.
package logger

import (
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// Logger is the sink contract every pipeline stage implements.
type Logger interface {
	// Log delivers one event. Fire-and-forget unless the concrete sink
	// documents synchronous delivery (the crash logger does).
	Log(event logevent.LoggingEvent)
	// Close flushes and releases resources. Idempotent: a second call
	// is a no-op and must not return an error once the first call has
	// succeeded.
	Close() error
}

// Filter decides whether an event should be accepted by a sink, per
// spec.md §4.2: Progress is opt-in via LogProgress, independent of the
// numeric MinSeverity threshold applied to every other severity.
type Filter struct {
	MinSeverity severity.Severity
	LogProgress bool
}

// Accept reports whether e passes the filter.
func (f Filter) Accept(e logevent.LoggingEvent) bool {
	if e.Severity == severity.Progress {
		return f.LogProgress
	}
	return e.Severity >= f.MinSeverity
}

// NoFilter accepts every event, including Progress.
var NoFilter = Filter{MinSeverity: severity.Debug, LogProgress: true}

// Filtered wraps inner so that only events accepted by filter reach it.
type Filtered struct {
	Inner  Logger
	Filter Filter
}

// NewFiltered returns a Logger that forwards to inner only the events
// filter accepts.
func NewFiltered(inner Logger, filter Filter) *Filtered {
	return &Filtered{Inner: inner, Filter: filter}
}

func (f *Filtered) Log(e logevent.LoggingEvent) {
	if f.Filter.Accept(e) {
		f.Inner.Log(e)
	}
}

func (f *Filtered) Close() error {
	return f.Inner.Close()
}
