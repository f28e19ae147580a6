package jobs

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Task is one unit of background work. Tasks must be idempotent: the runner
// delivers at-least-once and will re-run the whole task after a failure.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Func adapts a bare function to a named Task.
func Func(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{name: name, fn: fn}
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t *funcTask) Name() string                  { return t.name }
func (t *funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

type RunnerOptions struct {
	// MaxAttempts bounds how many times a failing task is tried in total.
	MaxAttempts int
	// BaseDelay is the first retry delay; each subsequent retry doubles it.
	BaseDelay time.Duration
	Logger    *logrus.Entry
}

type Runner struct {
	opts RunnerOptions
}

func NewRunner(opts RunnerOptions) *Runner {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	return &Runner{opts: opts}
}

// Run executes the task, retrying with exponential backoff until it succeeds,
// attempts run out, or the context is cancelled.
func (r *Runner) Run(ctx context.Context, task Task) error {
	var lastErr error
	delay := r.opts.BaseDelay

	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = task.Run(ctx)
		if lastErr == nil {
			return nil
		}

		if r.opts.Logger != nil {
			r.opts.Logger.WithError(lastErr).WithFields(logrus.Fields{
				"task":    task.Name(),
				"attempt": attempt,
			}).Warn("task attempt failed")
		}

		if attempt == r.opts.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return errors.Wrapf(lastErr, "task %s failed after %d attempts", task.Name(), r.opts.MaxAttempts)
}
