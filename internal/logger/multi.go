package logger

import (
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// Multi fans an event out to an ordered list of child sinks, grounded on
// the teacher's Dispatcher.processBatch loop over d.sinks. Dispatch order
// matches registration order; Close closes every child even if one
// fails, returning the first error.
type Multi struct {
	children []Logger
}

// NewMulti builds a fan-out logger over children, in dispatch order.
func NewMulti(children ...Logger) *Multi {
	return &Multi{children: append([]Logger(nil), children...)}
}

// Add appends another child sink, to be dispatched after all previously
// registered ones.
func (m *Multi) Add(child Logger) {
	m.children = append(m.children, child)
}

func (m *Multi) Log(e logevent.LoggingEvent) {
	for _, c := range m.children {
		c.Log(e)
	}
}

func (m *Multi) Close() error {
	var first error
	for _, c := range m.children {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
