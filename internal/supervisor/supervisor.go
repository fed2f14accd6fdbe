// Package supervisor implements the execution supervisor: effectuation
// identity, the dedup set, the nested context stacks (force, appease,
// options, dispensable), and the logging path that turns a Message into a
// LoggingEvent and routes it through the main and crash loggers while
// updating the worst-severity accumulator. Grounded on the teacher's
// internal/dispatcher.Dispatcher (central orchestrator holding the sink
// fan-out, a dedup set of processed entries, and its own operation
// counters), generalized here from log-record dispatch to nested-step
// supervision.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/internal/metrics"
	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
	"github.com/stefanspringer1/goworkflow/pkg/worstseverity"
)

// StepHook is invoked around step entries only, never around force,
// optional, dispensable, appease, disremember or inheritForced. Returning
// false rolls back the pre-increment of the operation counter.
type StepHook func(operationCount int, step stepid.StepId) bool

// Config supplies the collaborators and fixed fields a Supervisor is
// built from. Logger is required; everything else is optional.
type Config struct {
	Logger             logger.Logger
	CrashLogger        logger.Logger
	ApplicationName    string
	ProcessID          string
	ItemInfo           string
	AlwaysAddCrashInfo bool
	Debug              bool
	ActivatedOptions   []string
	DispensedWith      []string
	BeforeStepHook     StepHook
	AfterStepHook      StepHook
	// Tracer, if set, opens an OpenTelemetry span per effectuation frame
	// (step, optional part, dispensable part, described part), closed on
	// pop. Nil disables tracing entirely at zero cost.
	Tracer trace.Tracer
}

// Supervisor holds the state described in spec.md §3: the dedup set, the
// nested context stacks, the worst-severity accumulator, and the pause
// gate. One Supervisor is created per work item by the caller and is not
// safe for concurrent use by itself — use Parallel to obtain a sibling
// usable from another goroutine.
type Supervisor struct {
	logger      logger.Logger
	crashLogger logger.Logger

	applicationName    string
	processID          string
	itemInfo           string
	alwaysAddCrashInfo bool
	debug              bool

	executedSteps     map[stepid.StepId]struct{}
	effectuationStack []stepid.Effectuation
	forceStack        []bool
	appeaseStack      []severity.Severity

	activatedOptions map[string]struct{}
	dispensedWith    map[string]struct{}

	beforeStepHook StepHook
	afterStepHook  StepHook
	operationCount int

	worstSeverity *worstseverity.Accumulator
	pauseGate     chan struct{}

	attached map[string]any

	tracer    trace.Tracer
	spanCtx   context.Context
	spanStack []trace.Span
}

// New constructs a root Supervisor for one work item.
func New(cfg Config) *Supervisor {
	if cfg.Logger == nil {
		panic("supervisor: Config.Logger is required")
	}
	s := &Supervisor{
		logger:             cfg.Logger,
		crashLogger:        cfg.CrashLogger,
		applicationName:    cfg.ApplicationName,
		processID:          cfg.ProcessID,
		itemInfo:           cfg.ItemInfo,
		alwaysAddCrashInfo: cfg.AlwaysAddCrashInfo,
		debug:              cfg.Debug,
		executedSteps:      make(map[stepid.StepId]struct{}),
		activatedOptions:   toSet(cfg.ActivatedOptions),
		dispensedWith:      toSet(cfg.DispensedWith),
		beforeStepHook:     cfg.BeforeStepHook,
		afterStepHook:      cfg.AfterStepHook,
		worstSeverity:      worstseverity.New(),
		pauseGate:          newPauseGate(),
		attached:           make(map[string]any),
		tracer:             cfg.Tracer,
		spanCtx:            context.Background(),
	}
	return s
}

func toSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func newPauseGate() chan struct{} {
	gate := make(chan struct{}, 1)
	gate <- struct{}{}
	return gate
}

// Stopped reports whether the worst-severity accumulator has reached
// Fatal or above, per spec.md §7.
func (s *Supervisor) Stopped() bool {
	return s.worstSeverity.Stopped()
}

// WorstSeverity returns the current worst (post-appease) severity seen by
// this execution (shared with any parallel siblings).
func (s *Supervisor) WorstSeverity() severity.Severity {
	return s.worstSeverity.Worst()
}

// Attach stores a value under key in the supervisor's untyped attached
// map, per spec.md §3.
func (s *Supervisor) Attach(key string, value any) {
	s.attached[key] = value
}

// Attached retrieves a previously Attach-ed value, type-asserted to T.
// Supplements spec.md with a convenience accessor; it adds no new
// semantics beyond the untyped map named in §3.
func Attached[T any](s *Supervisor, key string) (T, bool) {
	var zero T
	v, ok := s.attached[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Pause acquires the single-slot pause gate, so that the next step entry
// to call awaitPauseGate blocks until Proceed is called.
func (s *Supervisor) Pause() {
	<-s.pauseGate
}

// Proceed releases the pause gate. A Proceed without a matching Pause is
// a safe no-op (the gate is already open).
func (s *Supervisor) Proceed() {
	select {
	case s.pauseGate <- struct{}{}:
	default:
	}
}

// awaitPauseGate is the checkpoint every synchronous step entry performs:
// acquire then immediately release, so a held gate stalls here until
// Proceed is called elsewhere, and an open gate passes through instantly.
func (s *Supervisor) awaitPauseGate() {
	<-s.pauseGate
	s.pauseGate <- struct{}{}
}

// CloseLoggers closes the main logger (transitively closing its
// children, e.g. through a Multi fan-out) and the crash logger if one is
// configured, returning the first error encountered while still
// attempting to close both.
func (s *Supervisor) CloseLoggers() error {
	var first error
	if s.crashLogger != nil {
		if err := s.crashLogger.Close(); err != nil {
			first = err
		}
	}
	if err := s.logger.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Parallel forks a sibling supervisor sharing logger, crashLogger,
// worstSeverity, applicationName, processID, itemInfo,
// alwaysAddCrashInfo and debug, plus a snapshot of the current
// effectuation stack. The sibling owns an independent, empty dedup set,
// independent force/appease stacks, and its own pause gate, per spec.md
// §4.1's parallel operator.
func Parallel(s *Supervisor) *Supervisor {
	stackCopy := append([]stepid.Effectuation(nil), s.effectuationStack...)
	return &Supervisor{
		logger:             s.logger,
		crashLogger:        s.crashLogger,
		applicationName:    s.applicationName,
		processID:          s.processID,
		itemInfo:           s.itemInfo,
		alwaysAddCrashInfo: s.alwaysAddCrashInfo,
		debug:              s.debug,
		executedSteps:      make(map[stepid.StepId]struct{}),
		effectuationStack:  stackCopy,
		activatedOptions:   s.activatedOptions,
		dispensedWith:      s.dispensedWith,
		beforeStepHook:     s.beforeStepHook,
		afterStepHook:      s.afterStepHook,
		worstSeverity:      s.worstSeverity,
		pauseGate:          newPauseGate(),
		attached:           make(map[string]any),
		tracer:             s.tracer,
		spanCtx:            s.spanCtx,
	}
}

// pushEffectuation appends frame to the live stack and, when tracing is
// enabled, opens a child span named after the frame's canonical text.
func (s *Supervisor) pushEffectuation(frame stepid.Effectuation) {
	s.effectuationStack = append(s.effectuationStack, frame)
	if s.tracer != nil {
		ctx, span := s.tracer.Start(s.spanCtx, frame.Text())
		s.spanCtx = ctx
		s.spanStack = append(s.spanStack, span)
	}
}

// popEffectuation removes the top frame, ending its span if tracing is
// enabled.
func (s *Supervisor) popEffectuation() {
	if s.tracer != nil && len(s.spanStack) > 0 {
		n := len(s.spanStack) - 1
		s.spanStack[n].End()
		s.spanStack = s.spanStack[:n]
	}
	n := len(s.effectuationStack) - 1
	s.effectuationStack = s.effectuationStack[:n]
}

func (s *Supervisor) topForce() bool {
	if n := len(s.forceStack); n > 0 {
		return s.forceStack[n-1]
	}
	return false
}

// snapshot copies the live effectuation stack for embedding into a
// LoggingEvent — spec.md §3 forbids aliasing the live, still-mutating
// stack.
func (s *Supervisor) snapshot() []stepid.Effectuation {
	return append([]stepid.Effectuation(nil), s.effectuationStack...)
}

// dispatch composes a LoggingEvent from msg and the current supervisor
// state and routes it per spec.md §4.1's log operator: crash sink first
// (original severity), then appease rewriting, then main sink, then the
// worst-severity update (post-appease).
func (s *Supervisor) dispatch(msg message.Message, positionInfo string, addCrashInfo bool) {
	event := s.composeEvent(msg, positionInfo)

	if (addCrashInfo || s.alwaysAddCrashInfo) && s.crashLogger != nil {
		s.crashLogger.Log(event)
	}

	final := event
	if n := len(s.appeaseStack); n > 0 {
		cap := s.appeaseStack[n-1]
		if final.Severity > cap {
			final = final.WithSeverity(cap)
		}
	}

	s.logger.Log(final)
	s.worstSeverity.Update(final.Severity)

	metrics.RecordEvent(final.Severity)
	metrics.SetWorstSeverity(s.worstSeverity.Worst())
}

func (s *Supervisor) composeEvent(msg message.Message, positionInfo string) logevent.LoggingEvent {
	stack := s.snapshot()
	return logevent.LoggingEvent{
		MessageID:         msg.ID,
		Severity:          msg.Severity,
		ExecutionLevel:    len(stack),
		ProcessID:         s.processID,
		ApplicationName:   s.applicationName,
		Fact:              msg.Fact,
		Solution:          msg.Solution,
		ItemInfo:          s.itemInfo,
		ItemPositionInfo:  positionInfo,
		EffectuationStack: stack,
		Timestamp:         time.Now(),
	}
}

// Log composes a LoggingEvent from msg (after positional-argument
// substitution) and the supervisor's current state, and routes it per
// spec.md §4.1.
func (s *Supervisor) Log(msg message.Message, positionInfo string, addCrashInfo bool, args ...string) {
	s.dispatch(msg.WithArgs(args...), positionInfo, addCrashInfo)
}

// emitProgress logs an English-only Progress message, used for the fixed
// step/optional/dispensable/doing progress lines specified in spec.md §6.
func (s *Supervisor) emitProgress(text string) {
	s.dispatch(progressMessage(text), "", false)
}

// emitDebug logs an English-only Debug message, used for the skip events
// of spec.md §4.1.
func (s *Supervisor) emitDebug(text string) {
	s.dispatch(debugMessage(text), "", false)
}

func progressMessage(text string) message.Message {
	return message.Message{Severity: severity.Progress, Fact: message.LocalizedText{langtag.EN: text}}
}

func debugMessage(text string) message.Message {
	return message.Message{Severity: severity.Debug, Fact: message.LocalizedText{langtag.EN: text}}
}

func stepDoneText(step stepid.StepId, stopped bool, durationSeconds float64) string {
	verb := "DONE"
	if stopped {
		verb = "ABORDED"
	}
	return fmt.Sprintf("<< %s STEP %s (duration: %s seconds)", verb, step.String(), formatDuration(durationSeconds))
}

func formatDuration(seconds float64) string {
	return fmt.Sprintf("%.6f", seconds)
}

// sinceSeconds reports the elapsed time since start, in seconds, per the
// Utilities ("elapsed-nanoseconds") leaf named in spec.md §2.
func sinceSeconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}
