// Package async mirrors the supervisor's operators with suspension-aware
// signatures for cooperative, single-owner use from one logical task at a
// time, per spec.md §4/§5. It does not add synchronization of its own:
// the single-owner discipline is a caller contract, not a lock, exactly
// as spec.md §5 describes it ("concurrent use of the same supervisor
// across tasks is not permitted").
//
// Grounded on the teacher's internal/dispatcher goroutine-per-sink
// workers: those are genuinely concurrent background workers, whereas
// this package is cooperative scheduling inside a single goroutine —
// body closures may themselves call other async-aware code and yield via
// normal Go scheduling, but never release supervisor ownership to another
// goroutine.
package async

import (
	"context"
	"fmt"
	"time"

	"github.com/stefanspringer1/goworkflow/internal/supervisor"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

// Body is an async step/part body: it receives a context for
// cancellation propagation (a Go-idiomatic substitute for arbitrary
// suspension points) and returns a result.
type Body[T any] func(ctx context.Context) T

// Effectuate mirrors supervisor.Effectuate for async bodies. It runs
// through supervisor.Effectuate's step entry unchanged, including that
// entry's pause-gate checkpoint: while the supervisor is paused, an async
// step entry blocks until Proceed is called, and that wait does not
// observe ctx.
func Effectuate[T any](ctx context.Context, s *supervisor.Supervisor, step stepid.StepId, body Body[T]) (result T, ok bool) {
	return supervisor.Effectuate(s, step, func() T {
		return body(ctx)
	})
}

// AwaitPauseGate is the explicit opt-in named in spec.md §9 ("An
// implementation may add an explicit awaitPauseGate and require async
// step entries to call it"): it blocks until the supervisor's pause gate
// is open, honoring ctx cancellation, then releases it immediately like
// the synchronous checkpoint does.
func AwaitPauseGate(ctx context.Context, s *supervisor.Supervisor) error {
	done := make(chan struct{})
	go func() {
		s.Pause()
		s.Proceed()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Force mirrors supervisor.Force for async bodies.
func Force[T any](ctx context.Context, s *supervisor.Supervisor, body Body[T]) T {
	return supervisor.Force(s, func() T { return body(ctx) })
}

// InheritForced mirrors supervisor.InheritForced for async bodies.
func InheritForced[T any](ctx context.Context, s *supervisor.Supervisor, body Body[T]) T {
	return supervisor.InheritForced(s, func() T { return body(ctx) })
}

// Disremember mirrors supervisor.Disremember for async bodies.
func Disremember[T any](ctx context.Context, s *supervisor.Supervisor, body Body[T]) T {
	return supervisor.Disremember(s, func() T { return body(ctx) })
}

// Optional mirrors supervisor.Optional for async bodies.
func Optional[T any](ctx context.Context, s *supervisor.Supervisor, name string, body Body[T]) (result T, ok bool) {
	return supervisor.Optional(s, name, func() T { return body(ctx) })
}

// Dispensable mirrors supervisor.Dispensable for async bodies.
func Dispensable[T any](ctx context.Context, s *supervisor.Supervisor, name string, body Body[T]) (result T, ok bool) {
	return supervisor.Dispensable(s, name, func() T { return body(ctx) })
}

// Appease mirrors supervisor.Appease for async bodies.
func Appease[T any](ctx context.Context, s *supervisor.Supervisor, cap severity.Severity, body Body[T]) T {
	return supervisor.Appease(s, cap, func() T { return body(ctx) })
}

// Doing mirrors supervisor.Doing for async bodies.
func Doing[T any](ctx context.Context, s *supervisor.Supervisor, id, description string, body Body[T]) T {
	return supervisor.Doing(s, id, description, func() T { return body(ctx) })
}

// WithTimeout runs body under a context that is cancelled after d,
// returning fmt.Errorf-wrapped ctx.Err() if it fired before body
// returned. It is a thin convenience, not a suspension primitive of its
// own — the underlying step/part bodies are still expected to observe
// ctx themselves.
func WithTimeout[T any](ctx context.Context, d time.Duration, body Body[T]) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
	}
	resultCh := make(chan outcome, 1)
	go func() {
		resultCh <- outcome{value: body(ctx)}
	}()

	select {
	case o := <-resultCh:
		return o.value, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("async: timed out after %s: %w", d, ctx.Err())
	}
}
