// Package policy executes a single step operation under a retry, timeout,
// and error-capture configuration.
//
// The chain engine wraps every step through an Executor; Runner is the
// default. Semantics, in composition order:
//
//  1. RetryCount = N runs up to N+1 attempts; each failed attempt is
//     retried with the same inputs.
//  2. Timeout bounds each attempt individually. A timed-out attempt counts
//     as a failure (matching ErrTimeout) and is retried like any other.
//     The executor stops waiting; it does not guarantee the operation
//     itself stops (the attempt context is canceled so cooperative
//     operations can abort).
//  3. CaptureErrors converts the final outcome into a Capture envelope:
//     Capture{Data: v} on success, Capture{Err: lastErr} once attempts are
//     exhausted. Run then returns a nil error either way.
//
// With zero Options the operation runs exactly once and failures are
// returned directly.
package policy
