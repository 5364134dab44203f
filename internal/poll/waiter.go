package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Outcome says how a wait ended.
type Outcome int

const (
	Completed Outcome = iota
	TimedOut
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var ErrCancelled = errors.New("wait cancelled")

// TimeoutError is returned when the attempt budget or the waiter's own
// deadline runs out before the condition holds.
type TimeoutError struct {
	Attempts int
	Deadline bool
}

func (e *TimeoutError) Error() string {
	if e.Deadline {
		return fmt.Sprintf("timed out waiting for condition: deadline reached after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("timed out waiting for condition after %d attempts", e.Attempts)
}

// Condition reports whether the awaited state has been reached. A returned
// error ends the wait immediately.
type Condition func(ctx context.Context) (bool, error)

// Waiter evaluates a Condition at most MaxAttempts times, sleeping a backoff
// delay between evaluations. With Factor <= 1 every delay equals Interval.
type Waiter struct {
	MaxAttempts int
	Interval    time.Duration
	Factor      float64
	MaxInterval time.Duration
	// Timeout bounds the whole wait. Zero means attempts are the only bound.
	Timeout time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewWaiter(maxAttempts int, interval time.Duration) *Waiter {
	return &Waiter{
		MaxAttempts: maxAttempts,
		Interval:    interval,
		Factor:      1,
	}
}

func (w *Waiter) backoff() wait.Backoff {
	b := wait.Backoff{
		Duration: w.Interval,
		Steps:    w.MaxAttempts,
		Cap:      w.MaxInterval,
	}
	if w.Factor > 1 {
		b.Factor = w.Factor
	}
	return b
}

// Until blocks until cond returns true, cond fails, attempts run out, or ctx
// is done.
func (w *Waiter) Until(ctx context.Context, cond Condition) (Outcome, error) {
	if w.MaxAttempts < 1 {
		return Failed, fmt.Errorf("poll: max attempts must be positive, got %d", w.MaxAttempts)
	}
	sleep := w.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	waitCtx := ctx
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	backoff := w.backoff()
	for attempt := 1; attempt <= w.MaxAttempts; attempt++ {
		if waitCtx.Err() != nil {
			return w.interrupted(ctx, attempt-1)
		}
		ok, err := cond(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return w.interrupted(ctx, attempt)
			}
			return Failed, err
		}
		if ok {
			return Completed, nil
		}
		if attempt == w.MaxAttempts {
			break
		}
		if err := sleep(waitCtx, backoff.Step()); err != nil {
			return w.interrupted(ctx, attempt)
		}
	}
	return TimedOut, &TimeoutError{Attempts: w.MaxAttempts}
}

// interrupted separates the caller cancelling from the waiter's own deadline.
func (w *Waiter) interrupted(parent context.Context, attempts int) (Outcome, error) {
	if err := parent.Err(); err != nil {
		return Cancelled, fmt.Errorf("%w after %d attempts: %w", ErrCancelled, attempts, err)
	}
	return TimedOut, &TimeoutError{Attempts: attempts, Deadline: true}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
