package logger

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/stefanspringer1/goworkflow/internal/metrics"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// Background is the concurrent (background-queue) logger: it owns a
// single-threaded worker and a completion counter. Log enqueues and
// returns immediately; the worker applies Filter and invokes Action.
// Close blocks until the queue drains and CloseAction has run; once
// closed, further Log calls are silently dropped. Grounded on the
// teacher's Dispatcher.worker/queue/drainQueue single-worker discipline.
type Background struct {
	Filter      Filter
	Action      func(logevent.LoggingEvent)
	CloseAction func() error

	// Name labels this logger's queue-depth gauge (metrics.BackgroundQueueDepth).
	// Left empty, every unnamed Background shares the "" label.
	Name string

	internalLog *logrus.Logger
	queue       chan logevent.LoggingEvent
	done        chan struct{}
	closed      atomic.Bool
	closeOnce   sync.Once
	closeErr    error
	completed   int64
	dropped     int64
}

// NewBackground starts a Background logger with the given queue capacity.
// internalLog may be nil, in which case a standard logrus.Logger is used
// for diagnostics about dropped events.
func NewBackground(queueSize int, filter Filter, action func(logevent.LoggingEvent), closeAction func() error, internalLog *logrus.Logger) *Background {
	if internalLog == nil {
		internalLog = logrus.StandardLogger()
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	b := &Background{
		Filter:      filter,
		Action:      action,
		CloseAction: closeAction,
		internalLog: internalLog,
		queue:       make(chan logevent.LoggingEvent, queueSize),
		done:        make(chan struct{}),
	}
	go b.worker()
	return b
}

func (b *Background) worker() {
	defer close(b.done)
	for e := range b.queue {
		if b.Filter.Accept(e) {
			b.Action(e)
		}
		atomic.AddInt64(&b.completed, 1)
		metrics.SetBackgroundQueueDepth(b.Name, len(b.queue))
	}
}

// Completed returns the number of events the worker has finished
// processing (filtered-out events count as processed too).
func (b *Background) Completed() int64 {
	return atomic.LoadInt64(&b.completed)
}

// Dropped returns the number of events silently discarded because the
// queue was full or the logger was already closed.
func (b *Background) Dropped() int64 {
	return atomic.LoadInt64(&b.dropped)
}

func (b *Background) Log(e logevent.LoggingEvent) {
	if b.closed.Load() {
		atomic.AddInt64(&b.dropped, 1)
		return
	}
	select {
	case b.queue <- e:
		metrics.SetBackgroundQueueDepth(b.Name, len(b.queue))
	default:
		atomic.AddInt64(&b.dropped, 1)
		b.internalLog.WithField("severity", e.Severity.String()).Warn("background logger: queue full, dropping event")
	}
}

func (b *Background) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		close(b.queue)
		<-b.done
		if b.CloseAction != nil {
			b.closeErr = b.CloseAction()
		}
	})
	return b.closeErr
}
