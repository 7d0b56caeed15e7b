package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcshock/dbchain/policy"
	"github.com/google/uuid"
)

// Step is a direct operation: it receives the bound handle (or, inside a
// transaction, the transactional handle) and produces the step's value.
type Step[H any] func(ctx context.Context, handle H) (any, error)

// ResultStep is a results-accessor operation: it first receives the
// accumulator of all prior steps' results and returns the Step to run.
// Append with ChainResults. The accessor is re-invoked on every retry
// attempt so each attempt sees the same accumulator state.
type ResultStep[H any] func(r *Results) Step[H]

// Adapter runs a callback inside a transaction for a specific handle kind.
// Transaction must commit iff fn returns nil, and must roll back and return
// the error otherwise. The tx handle passed to fn is only valid for the
// duration of the call and must not be retained by step bodies.
type Adapter[H any] interface {
	Transaction(ctx context.Context, handle H, fn func(ctx context.Context, tx H) error) error
}

// Configuration errors returned by Invoke before any step runs. They are
// never retried or captured; they indicate caller misuse.
var (
	ErrUnbound         = errors.New("chain: no handle bound (call Use or Transaction first)")
	ErrAdapterRequired = errors.New("chain: transactional pipeline requires an adapter")
)

// resource binds the handle a pipeline executes against. Created once per
// Use/Transaction call and never mutated; rebinding replaces it wholesale.
type resource[H any] struct {
	handle        H
	adapter       Adapter[H]
	transactional bool
}

type step[H any] struct {
	run  func(ctx context.Context, handle H, r *Results) (any, error)
	opts *policy.Options
}

// Pipeline is an immutable builder for a sequence of dependent steps that
// run against a shared handle. Every builder call (Use, Transaction, Chain,
// ChainResults, WithExecutor, WithObserver) returns a new pipeline value;
// the receiver is never modified, so pipelines are safe to fork and reuse.
//
// A pipeline with no bound handle cannot be invoked. Steps accumulate their
// results per Invoke (see Results); invoking the same pipeline twice walks
// the same steps again with a fresh accumulator against the same handle.
type Pipeline[H any] struct {
	steps []step[H]
	res   *resource[H]
	exec  policy.Executor
	obs   Observer
}

// Use returns a new empty pipeline bound to handle for sequential
// (non-transactional) execution. The adapter is optional and only consulted
// if the pipeline is later rebound with Transaction semantics via config or
// by the caller; plain sequential execution never touches it.
func Use[H any](handle H, adapter ...Adapter[H]) *Pipeline[H] {
	return (&Pipeline[H]{}).Use(handle, adapter...)
}

// Transaction returns a new empty pipeline bound to handle for transactional
// execution through adapter. Invoke fails with ErrAdapterRequired when the
// adapter is nil.
func Transaction[H any](handle H, adapter Adapter[H]) *Pipeline[H] {
	return (&Pipeline[H]{}).Transaction(handle, adapter)
}

// fork returns a shallow copy; step storage is shared until appendStep
// copies on append.
func (p *Pipeline[H]) fork() *Pipeline[H] {
	q := *p
	return &q
}

// Use rebinds the pipeline to handle for sequential execution, preserving
// the step sequence. Returns a new pipeline value.
func (p *Pipeline[H]) Use(handle H, adapter ...Adapter[H]) *Pipeline[H] {
	q := p.fork()
	res := &resource[H]{handle: handle}
	if len(adapter) > 0 {
		res.adapter = adapter[0]
	}
	q.res = res
	return q
}

// Transaction rebinds the pipeline to handle for transactional execution,
// preserving the step sequence. Returns a new pipeline value.
func (p *Pipeline[H]) Transaction(handle H, adapter Adapter[H]) *Pipeline[H] {
	q := p.fork()
	q.res = &resource[H]{handle: handle, adapter: adapter, transactional: true}
	return q
}

// Chain appends a direct-operation step. opts may be nil (run once, no
// timeout, errors returned directly). Returns a new pipeline value; the
// receiver keeps its original step sequence.
func (p *Pipeline[H]) Chain(s Step[H], opts *policy.Options) *Pipeline[H] {
	return p.appendStep(step[H]{
		run: func(ctx context.Context, h H, _ *Results) (any, error) {
			return s(ctx, h)
		},
		opts: opts,
	})
}

// ChainResults appends a results-accessor step: s receives the accumulator
// of prior results and returns the operation to run against the handle.
// Appended as the first step, s sees an empty accumulator. opts may be nil.
func (p *Pipeline[H]) ChainResults(s ResultStep[H], opts *policy.Options) *Pipeline[H] {
	return p.appendStep(step[H]{
		run: func(ctx context.Context, h H, r *Results) (any, error) {
			return s(r)(ctx, h)
		},
		opts: opts,
	})
}

func (p *Pipeline[H]) appendStep(s step[H]) *Pipeline[H] {
	q := p.fork()
	// Full slice expression pins capacity so two forks appending to the
	// same parent can never write into a shared backing array.
	q.steps = append(p.steps[:len(p.steps):len(p.steps)], s)
	return q
}

// Len returns the number of appended steps.
func (p *Pipeline[H]) Len() int { return len(p.steps) }

// WithExecutor returns a new pipeline value whose steps run through exec
// instead of the default policy.Runner.
func (p *Pipeline[H]) WithExecutor(exec policy.Executor) *Pipeline[H] {
	q := p.fork()
	q.exec = exec
	return q
}

// WithObserver returns a new pipeline value that reports invoke and step
// lifecycle events to obs. Each Invoke is identified by a generated run ID.
func (p *Pipeline[H]) WithObserver(obs Observer) *Pipeline[H] {
	q := p.fork()
	q.obs = obs
	return q
}

// Invoke executes the step sequence and returns the LAST step's value.
//
// Sequential (Use) pipelines walk the steps in insertion order against the
// bound handle; a step error leaves earlier side effects in place.
// Transactional (Transaction) pipelines perform the identical walk against
// the handle supplied by the adapter; the adapter commits iff the walk
// completes and rolls everything back otherwise, so a failed transactional
// Invoke leaves no side effects.
//
// A step that fails without CaptureErrors aborts the walk: later steps are
// never started and Invoke returns the error prefixed with the step
// position. A captured failure is recorded as that step's result
// (policy.Capture) and the walk continues.
func (p *Pipeline[H]) Invoke(ctx context.Context) (any, error) {
	if p.res == nil {
		return nil, ErrUnbound
	}
	if p.res.transactional && p.res.adapter == nil {
		return nil, ErrAdapterRequired
	}
	exec := p.exec
	if exec == nil {
		exec = policy.Runner{}
	}
	runID := ""
	if p.obs != nil {
		runID = uuid.New().String()
		if err := p.obs.BeforeInvoke(ctx, runID, len(p.steps)); err != nil {
			return nil, fmt.Errorf("before invoke: %w", err)
		}
	}
	var last any
	var err error
	if p.res.transactional {
		err = p.res.adapter.Transaction(ctx, p.res.handle, func(txCtx context.Context, tx H) error {
			v, walkErr := p.walk(txCtx, tx, exec, runID)
			last = v
			return walkErr
		})
		if err != nil {
			last = nil
		}
	} else {
		last, err = p.walk(ctx, p.res.handle, exec, runID)
	}
	if p.obs != nil {
		if postErr := p.obs.AfterInvoke(ctx, runID, last, err); postErr != nil && err == nil {
			err = fmt.Errorf("after invoke: %w", postErr)
		}
	}
	return last, err
}

// walk runs the steps strictly in order against handle, recording each
// result before the next step starts. Step positions are 1-based in hook
// calls and error messages, matching the accumulator keys.
func (p *Pipeline[H]) walk(ctx context.Context, handle H, exec policy.Executor, runID string) (any, error) {
	results := newResults(len(p.steps))
	var last any
	for i, s := range p.steps {
		pos := i + 1
		if p.obs != nil {
			if err := p.obs.BeforeStep(ctx, runID, pos, results); err != nil {
				return nil, fmt.Errorf("before step %d: %w", pos, err)
			}
		}
		var opts policy.Options
		if s.opts != nil {
			opts = *s.opts
		}
		run := s.run
		start := time.Now()
		v, err := exec.Run(ctx, func(opCtx context.Context) (any, error) {
			return run(opCtx, handle, results)
		}, opts)
		if p.obs != nil {
			if postErr := p.obs.AfterStep(ctx, runID, pos, v, err, time.Since(start)); postErr != nil && err == nil {
				err = fmt.Errorf("after step %d: %w", pos, postErr)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", pos, err)
		}
		results.record(v)
		last = v
	}
	return last, nil
}
