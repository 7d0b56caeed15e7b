package chain

import "fmt"

// Results is the accumulator of step results for one Invoke. It is
// append-only and order-significant: position 1 holds the first step's
// result, position 2 the second, and so on. When a step ran with
// CaptureErrors, the recorded value is the policy.Capture envelope, not the
// raw value. A Results value lives only for the duration of one Invoke.
type Results struct {
	values []any
}

func newResults(capacity int) *Results {
	return &Results{values: make([]any, 0, capacity)}
}

func (r *Results) record(v any) {
	r.values = append(r.values, v)
}

// Len returns how many step results have been recorded so far.
func (r *Results) Len() int { return len(r.values) }

// Empty reports whether no step has completed yet (i.e. the current step is
// the first one).
func (r *Results) Empty() bool { return len(r.values) == 0 }

// Get returns the result of step at position pos (1-based). Positions out of
// range return nil.
func (r *Results) Get(pos int) any {
	if pos < 1 || pos > len(r.values) {
		return nil
	}
	return r.values[pos-1]
}

// Last returns the most recently recorded result, or nil if none.
func (r *Results) Last() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[len(r.values)-1]
}

// Key returns the canonical positional key for step results, e.g.
// "result of step 1". Map uses these keys.
func Key(pos int) string { return fmt.Sprintf("result of step %d", pos) }

// Map returns a record view of the accumulator keyed by Key(pos). Intended
// for observers and debugging output; mutating the returned map does not
// affect the accumulator.
func (r *Results) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[Key(i+1)] = v
	}
	return m
}
