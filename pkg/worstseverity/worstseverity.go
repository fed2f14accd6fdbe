// Package worstseverity implements the thread-safe monotonic accumulator
// that summarizes the worst (post-appease) severity observed across an
// execution, readable from multiple goroutines including parallel
// sibling supervisors that share one accumulator.
package worstseverity

import (
	"sync"

	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// Accumulator tracks the worst severity seen so far. The zero value is
// ready to use and starts at severity.Info, per spec.md §3.
type Accumulator struct {
	mu    sync.RWMutex
	worst severity.Severity
	init  bool
}

// New returns an Accumulator initialized to severity.Info.
func New() *Accumulator {
	return &Accumulator{worst: severity.Info, init: true}
}

func (a *Accumulator) ensureInit() {
	if !a.init {
		a.worst = severity.Info
		a.init = true
	}
}

// Update merges s into the accumulator: the stored value becomes
// severity.Max(current, s). Never decreases.
func (a *Accumulator) Update(s severity.Severity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureInit()
	a.worst = severity.Max(a.worst, s)
}

// Worst returns the current worst severity.
func (a *Accumulator) Worst() severity.Severity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.init {
		return severity.Info
	}
	return a.worst
}

// Stopped reports whether the accumulated worst severity has reached
// Fatal or above.
func (a *Accumulator) Stopped() bool {
	return a.Worst().StopsExecution()
}
