package async

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/internal/supervisor"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

func TestEffectuateDedupsLikeSync(t *testing.T) {
	s := supervisor.New(supervisor.Config{Logger: logger.NewCollecting(), ApplicationName: "app"})
	step := stepid.New("A", "f1")
	ctx := context.Background()

	runs := 0
	_, ok1 := Effectuate(ctx, s, step, func(context.Context) any { runs++; return nil })
	_, ok2 := Effectuate(ctx, s, step, func(context.Context) any { runs++; return nil })

	require.True(t, ok1)
	require.False(t, ok2)
	require.Equal(t, 1, runs)
}

func TestAwaitPauseGateBlocksUntilProceed(t *testing.T) {
	s := supervisor.New(supervisor.Config{Logger: logger.NewCollecting(), ApplicationName: "app"})
	s.Pause()

	done := make(chan error, 1)
	go func() {
		done <- AwaitPauseGate(context.Background(), s)
	}()

	select {
	case <-done:
		t.Fatal("expected AwaitPauseGate to block while paused")
	case <-time.After(50 * time.Millisecond):
	}

	s.Proceed()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected AwaitPauseGate to unblock after Proceed")
	}
}

func TestAwaitPauseGateHonorsContextCancellation(t *testing.T) {
	s := supervisor.New(supervisor.Config{Logger: logger.NewCollecting(), ApplicationName: "app"})
	s.Pause()
	defer s.Proceed()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := AwaitPauseGate(ctx, s)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeoutReturnsErrorWhenBodyOutlivesDeadline(t *testing.T) {
	_, err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) any {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	require.Error(t, err)
}

func TestWithTimeoutReturnsValueWhenBodyFinishesInTime(t *testing.T) {
	v, err := WithTimeout(context.Background(), time.Second, func(context.Context) int {
		return 42
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
