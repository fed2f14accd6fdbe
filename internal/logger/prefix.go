package logger

import (
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/message"
)

// Prefixed decorates every outgoing event by prepending Prefix to every
// language variant of Fact (and Solution, if present) before forwarding
// to Inner. Double-wrapping concatenates prefixes: the outer layer
// prefixes first and the inner layer prepends its own prefix to that
// text, so the innermost layer's prefix comes first.
type Prefixed struct {
	Inner  Logger
	Prefix string
}

// NewPrefixed wraps inner with a text prefix.
func NewPrefixed(inner Logger, prefix string) *Prefixed {
	return &Prefixed{Inner: inner, Prefix: prefix}
}

func prefixText(t message.LocalizedText, prefix string) message.LocalizedText {
	if len(t) == 0 {
		return t
	}
	out := make(message.LocalizedText, len(t))
	for tag, text := range t {
		out[tag] = prefix + text
	}
	return out
}

func (p *Prefixed) Log(e logevent.LoggingEvent) {
	e.Fact = prefixText(e.Fact, p.Prefix)
	if e.HasSolution() {
		e.Solution = prefixText(e.Solution, p.Prefix)
	}
	p.Inner.Log(e)
}

func (p *Prefixed) Close() error {
	return p.Inner.Close()
}
