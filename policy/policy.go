package policy

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Options configures how a single step operation is executed. The zero value
// means: one attempt, no timeout, errors returned as-is.
type Options struct {
	// RetryCount is the number of additional attempts after the first one
	// fails. RetryCount = 2 means up to 3 attempts total.
	RetryCount int

	// Timeout bounds each attempt individually. When an attempt does not
	// settle within Timeout, the executor stops waiting for it and treats
	// the attempt as failed with an error matching ErrTimeout. The
	// underlying operation is signalled through its context but is not
	// forcibly stopped.
	Timeout time.Duration

	// CaptureErrors changes the failure mode: after all attempts are
	// exhausted, Run returns Capture{Err: lastErr} with a nil error instead
	// of returning the error. On success it returns Capture{Data: value}.
	CaptureErrors bool
}

// Op is a single-step operation. The context carries the per-attempt
// timeout when Options.Timeout is set.
type Op func(ctx context.Context) (any, error)

// Executor runs one operation under Options. It is an interface so the
// chain engine can be tested with a fake that records calls.
type Executor interface {
	Run(ctx context.Context, op Op, opts Options) (any, error)
}

// Capture is the non-throwing result envelope produced when
// Options.CaptureErrors is set: exactly one of Data and Err is meaningful.
// Later pipeline steps that consume a captured result must check Err
// themselves; the engine does not unwrap envelopes.
type Capture struct {
	Data any
	Err  error
}

// Failed reports whether the envelope holds an error.
func (c Capture) Failed() bool { return c.Err != nil }

// AsCapture returns v as a Capture if it is one.
func AsCapture(v any) (Capture, bool) {
	c, ok := v.(Capture)
	return c, ok
}

// ErrTimeout marks an attempt that exceeded Options.Timeout. Use
// IsTimeout (or errors.Is) to test for it; the concrete error also carries
// the budget that was exceeded.
var ErrTimeout = errors.New("step timed out")

// IsTimeout reports whether err is (or wraps) a step timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// Runner is the default Executor: retries, per-attempt timeouts, and
// optional error capture, composed in that order (capture applies only
// once retries are exhausted).
type Runner struct{}

// Run executes op under opts. Attempts run strictly one after another;
// a canceled parent context stops further attempts.
func (Runner) Run(ctx context.Context, op Op, opts Options) (any, error) {
	attempts := opts.RetryCount + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		v, err := runOnce(ctx, op, opts.Timeout)
		if err == nil {
			if opts.CaptureErrors {
				return Capture{Data: v}, nil
			}
			return v, nil
		}
		lastErr = err
	}
	if opts.CaptureErrors {
		return Capture{Err: lastErr}, nil
	}
	return nil, lastErr
}

// runOnce runs a single attempt. With no timeout the op runs inline.
// With a timeout the op runs in its own goroutine and the attempt loses a
// race against the deadline: the result channel is buffered so an op that
// ignores its context can still finish and be collected by the runtime.
func runOnce(ctx context.Context, op Op, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type settled struct {
		v   any
		err error
	}
	done := make(chan settled, 1)
	go func() {
		v, err := op(attemptCtx)
		done <- settled{v, err}
	}()
	select {
	case s := <-done:
		return s.v, s.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// Ensure Runner implements Executor.
var _ Executor = Runner{}
