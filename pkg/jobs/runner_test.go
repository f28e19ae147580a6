package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name     string
	failures int
	runs     int
}

func (t *fakeTask) Name() string { return t.name }

func (t *fakeTask) Run(ctx context.Context) error {
	t.runs++
	if t.runs <= t.failures {
		return errors.New("transient failure")
	}
	return nil
}

func TestRunner_SucceedsFirstAttempt(t *testing.T) {
	r := NewRunner(RunnerOptions{MaxAttempts: 3, BaseDelay: time.Millisecond})
	task := &fakeTask{name: "ok"}
	require.NoError(t, r.Run(context.Background(), task))
	require.Equal(t, 1, task.runs)
}

func TestRunner_RetriesUntilSuccess(t *testing.T) {
	r := NewRunner(RunnerOptions{MaxAttempts: 3, BaseDelay: time.Millisecond})
	task := &fakeTask{name: "flaky", failures: 2}
	require.NoError(t, r.Run(context.Background(), task))
	require.Equal(t, 3, task.runs)
}

func TestRunner_ExhaustsAttempts(t *testing.T) {
	r := NewRunner(RunnerOptions{MaxAttempts: 2, BaseDelay: time.Millisecond})
	task := &fakeTask{name: "broken", failures: 10}
	err := r.Run(context.Background(), task)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed after 2 attempts")
	require.Equal(t, 2, task.runs)
}

func TestRunner_CancelledContext(t *testing.T) {
	r := NewRunner(RunnerOptions{MaxAttempts: 5, BaseDelay: time.Hour})
	task := &fakeTask{name: "slow", failures: 10}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Run(ctx, task)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, task.runs, "should not retry once cancelled")
}
