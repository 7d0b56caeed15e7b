package chain

import (
	"context"
	"fmt"

	"github.com/dcshock/dbchain/policy"
)

// Value returns a step that ignores the handle and records v as the step's
// result. Useful to seed later steps or as a test placeholder.
func Value[H any](v any) Step[H] {
	return func(ctx context.Context, _ H) (any, error) {
		return v, nil
	}
}

// Tap returns a step that calls fn for its side effect (logging, metrics)
// and records nil as its result.
func Tap[H any](fn func(ctx context.Context, handle H)) Step[H] {
	return func(ctx context.Context, h H) (any, error) {
		fn(ctx, h)
		return nil, nil
	}
}

// At returns the result of the step at pos (1-based) asserted to type T.
// Captured envelopes are not unwrapped; use Unwrap first when the producing
// step ran with CaptureErrors.
func At[T any](r *Results, pos int) (T, error) {
	v := r.Get(pos)
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("results: step %d: expected %T, got %T", pos, zero, v)
	}
	return t, nil
}

// Prior builds a results-accessor step from the typed result of one prior
// step: fn receives the handle and the result of step pos asserted to T.
func Prior[H, T any](pos int, fn func(ctx context.Context, handle H, prior T) (any, error)) ResultStep[H] {
	return func(r *Results) Step[H] {
		return func(ctx context.Context, h H) (any, error) {
			prior, err := At[T](r, pos)
			if err != nil {
				return nil, err
			}
			return fn(ctx, h, prior)
		}
	}
}

// Unwrap returns v as a capture envelope if it is one. Steps consuming the
// result of a CaptureErrors step use it to branch on success/failure.
func Unwrap(v any) (policy.Capture, bool) {
	return policy.AsCapture(v)
}
