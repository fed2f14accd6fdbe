package supervisor

import (
	"fmt"
	"time"

	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

// Effectuate runs body as the step identified by step, deduplicating by
// StepId per spec.md §4.1. ok reports whether body actually ran; when it
// did not (the execution is stopped, or the step was already executed and
// the current force frame is not true), result is the zero value of T.
func Effectuate[T any](s *Supervisor, step stepid.StepId, body func() T) (result T, ok bool) {
	var zero T

	if s.Stopped() {
		s.emitDebug(fmt.Sprintf("skipping step %s (execution stopped)", step.String()))
		return zero, false
	}

	_, seen := s.executedSteps[step]
	if seen && !s.topForce() {
		if s.debug {
			s.emitDebug(fmt.Sprintf("skipping step %s (already executed)", step.String()))
		}
		return zero, false
	}

	s.awaitPauseGate()
	s.emitProgress(fmt.Sprintf(">> STEP %s", step.String()))

	s.runBeforeHook(step)
	s.pushEffectuation(stepid.EffectuationStep(step))
	s.forceStack = append(s.forceStack, false)
	s.executedSteps[step] = struct{}{}

	start := time.Now()
	defer func() {
		duration := sinceSeconds(start)
		stopped := s.Stopped()
		s.popEffectuation()
		s.emitProgress(stepDoneText(step, stopped, duration))
		s.forceStack = s.forceStack[:len(s.forceStack)-1]
		s.runAfterHook(step)
	}()

	result = body()
	ok = true
	return
}

// runBeforeHook pre-increments the operation counter and invokes the
// configured hook (if any); a hook returning false rolls the counter back
// (spec.md §4.1, "Before/after hooks").
func (s *Supervisor) runBeforeHook(step stepid.StepId) {
	s.operationCount++
	if s.beforeStepHook != nil && !s.beforeStepHook(s.operationCount, step) {
		s.operationCount--
	}
}

func (s *Supervisor) runAfterHook(step stepid.StepId) {
	if s.afterStepHook != nil {
		s.afterStepHook(s.operationCount, step)
	}
}

// Force runs body with the force flag set: nested Effectuate calls bypass
// the dedup check for exactly one nesting level. No frame is pushed onto
// the effectuation stack.
func Force[T any](s *Supervisor, body func() T) T {
	s.forceStack = append(s.forceStack, true)
	defer func() { s.forceStack = s.forceStack[:len(s.forceStack)-1] }()
	return body()
}

// InheritForced runs body with the force flag inherited from the current
// top of forceStack (false if the stack is empty), so force propagates to
// grandchildren instead of resetting at each level.
func InheritForced[T any](s *Supervisor, body func() T) T {
	s.forceStack = append(s.forceStack, s.topForce())
	defer func() { s.forceStack = s.forceStack[:len(s.forceStack)-1] }()
	return body()
}

// Disremember runs body, then restores executedSteps to the snapshot
// taken before body ran: any steps effectuated inside body are forgotten
// and may run again once Disremember returns.
func Disremember[T any](s *Supervisor, body func() T) T {
	snapshot := make(map[stepid.StepId]struct{}, len(s.executedSteps))
	for step := range s.executedSteps {
		snapshot[step] = struct{}{}
	}
	defer func() { s.executedSteps = snapshot }()
	return body()
}

// Optional runs body only if name is in activatedOptions and not in
// dispensedWith (dispensing always wins). ok reports whether body ran.
func Optional[T any](s *Supervisor, name string, body func() T) (result T, ok bool) {
	var zero T

	_, activated := s.activatedOptions[name]
	_, dispensed := s.dispensedWith[name]
	if !activated || dispensed {
		s.emitProgress(fmt.Sprintf("OPTIONAL PART %q NOT ACTIVATED", name))
		return zero, false
	}

	s.emitProgress(fmt.Sprintf(">> START OPTIONAL PART %q", name))
	s.pushEffectuation(stepid.EffectuationOptionalPart(name))
	defer func() {
		s.popEffectuation()
		s.emitProgress(fmt.Sprintf("<< DONE OPTIONAL PART %q", name))
	}()

	result = body()
	ok = true
	return
}

// Dispensable runs body unless name is in dispensedWith. ok reports
// whether body ran.
func Dispensable[T any](s *Supervisor, name string, body func() T) (result T, ok bool) {
	var zero T

	if _, dispensed := s.dispensedWith[name]; dispensed {
		s.emitProgress(fmt.Sprintf("DISPENSABLE PART %q DEACTIVATED", name))
		return zero, false
	}

	s.emitProgress(fmt.Sprintf(">> START DISPENSABLE PART %q", name))
	s.pushEffectuation(stepid.EffectuationDispensablePart(name))
	defer func() {
		s.popEffectuation()
		s.emitProgress(fmt.Sprintf("<< DONE DISPENSABLE PART %q", name))
	}()

	result = body()
	ok = true
	return
}

// DispensableIsActive reports whether name would currently run if passed
// to Dispensable, emitting the same progress event Dispensable would
// (IS ACTIVE or DEACTIVATED) but never running a body.
func (s *Supervisor) DispensableIsActive(name string) bool {
	_, dispensed := s.dispensedWith[name]
	if dispensed {
		s.emitProgress(fmt.Sprintf("DISPENSABLE PART %q DEACTIVATED", name))
		return false
	}
	s.emitProgress(fmt.Sprintf("DISPENSABLE PART %q IS ACTIVE", name))
	return true
}

// Appease runs body with cap pushed onto appeaseStack: while active,
// every event this supervisor logs with severity greater than cap is
// rewritten to cap before reaching the main logger (the crash logger, if
// it receives the event, always sees the original severity), and the
// worst-severity accumulator only ever observes the rewritten value.
func Appease[T any](s *Supervisor, cap severity.Severity, body func() T) T {
	s.appeaseStack = append(s.appeaseStack, cap)
	defer func() { s.appeaseStack = s.appeaseStack[:len(s.appeaseStack)-1] }()
	return body()
}

// AppeaseDefault is Appease with the default cap of severity.Error, per
// spec.md §4.1's `appease(severity = Error, body)` signature (Go has no
// default parameters for generic functions).
func AppeaseDefault[T any](s *Supervisor, body func() T) T {
	return Appease(s, severity.Error, body)
}

// Doing runs body inside a described-part frame, emitting START/DONE
// DOING progress events around it. id, if non-empty, becomes the
// MessageID of those two progress events.
func Doing[T any](s *Supervisor, id, description string, body func() T) T {
	startMsg := progressMessage(fmt.Sprintf("START DOING %s", description))
	startMsg.ID = id
	s.dispatch(startMsg, "", false)

	s.pushEffectuation(stepid.EffectuationDescribedPart(description))
	defer func() {
		s.popEffectuation()
		doneMsg := progressMessage(fmt.Sprintf("DONE DOING %s", description))
		doneMsg.ID = id
		s.dispatch(doneMsg, "", false)
	}()

	return body()
}
