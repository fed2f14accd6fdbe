package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// PrintLogger writes each event as a single human-readable line to
// standard output or standard error, grounded on the teacher's
// print/console path (mirrored in spirit by its logrus text formatter):
// Error and above go to stderr unless ErrorsToStandard is set.
type PrintLogger struct {
	Options          FormatOptions
	ErrorsToStandard bool

	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	closed bool
}

// NewPrintLogger returns a PrintLogger writing to os.Stdout/os.Stderr with
// DefaultFormatOptions.
func NewPrintLogger() *PrintLogger {
	return &PrintLogger{
		Options: DefaultFormatOptions,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithWriters overrides the destinations, useful for tests.
func (p *PrintLogger) WithWriters(stdout, stderr io.Writer) *PrintLogger {
	p.stdout = stdout
	p.stderr = stderr
	return p
}

func (p *PrintLogger) Log(e logevent.LoggingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	line := FormatLine(e, p.Options)
	w := p.stdout
	if !p.ErrorsToStandard && e.Severity >= severity.Error {
		w = p.stderr
	}
	fmt.Fprintln(w, line)
}

func (p *PrintLogger) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
