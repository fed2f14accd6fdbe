package logger

import (
	"sync"

	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// Collecting is an in-memory sink intended for tests and short-lived
// synchronous captures, grounded on the teacher's test-only in-memory
// capture helpers scattered through internal/dispatcher/*_test.go.
type Collecting struct {
	mu     sync.Mutex
	events []logevent.LoggingEvent
	closed bool
}

// NewCollecting returns an empty Collecting logger.
func NewCollecting() *Collecting {
	return &Collecting{}
}

func (c *Collecting) Log(e logevent.LoggingEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.events = append(c.events, e)
}

// Snapshot returns a copy-safe slice of every event collected so far.
func (c *Collecting) Snapshot() []logevent.LoggingEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]logevent.LoggingEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Collecting) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
