package logger

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// Crash is the synchronous single-threaded variant of Background: Log
// blocks until Action has run (and, for a file-backed Action, flushed),
// so an event submitted before a crash is guaranteed to be on disk before
// Log returns. Grounded on the teacher's synchronous, fsync-before-return
// write path in internal/sinks/local_file_sink.go, applied here as the
// contract of the whole sink rather than one write call.
type Crash struct {
	Filter      Filter
	Action      func(logevent.LoggingEvent) error
	CloseAction func() error

	internalLog *logrus.Logger
	mu          sync.Mutex
	closed      bool
}

// NewCrash constructs a Crash logger. internalLog may be nil.
func NewCrash(filter Filter, action func(logevent.LoggingEvent) error, closeAction func() error, internalLog *logrus.Logger) *Crash {
	if internalLog == nil {
		internalLog = logrus.StandardLogger()
	}
	return &Crash{Filter: filter, Action: action, CloseAction: closeAction, internalLog: internalLog}
}

func (c *Crash) Log(e logevent.LoggingEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.Filter.Accept(e) {
		return
	}
	if err := c.Action(e); err != nil {
		c.internalLog.WithError(err).Error("crash logger: action failed")
	}
}

func (c *Crash) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.CloseAction != nil {
		return c.CloseAction()
	}
	return nil
}
