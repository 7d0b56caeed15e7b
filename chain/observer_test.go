package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

// hookObserver lets each test override only the hooks it cares about.
type hookObserver struct {
	beforeInvoke func(ctx context.Context, runID string, steps int) error
	afterInvoke  func(ctx context.Context, runID string, result any, err error) error
	beforeStep   func(ctx context.Context, runID string, pos int, prior *Results) error
	afterStep    func(ctx context.Context, runID string, pos int, result any, err error, duration time.Duration) error
}

func (o *hookObserver) BeforeInvoke(ctx context.Context, runID string, steps int) error {
	if o.beforeInvoke != nil {
		return o.beforeInvoke(ctx, runID, steps)
	}
	return nil
}

func (o *hookObserver) AfterInvoke(ctx context.Context, runID string, result any, err error) error {
	if o.afterInvoke != nil {
		return o.afterInvoke(ctx, runID, result, err)
	}
	return nil
}

func (o *hookObserver) BeforeStep(ctx context.Context, runID string, pos int, prior *Results) error {
	if o.beforeStep != nil {
		return o.beforeStep(ctx, runID, pos, prior)
	}
	return nil
}

func (o *hookObserver) AfterStep(ctx context.Context, runID string, pos int, result any, err error, duration time.Duration) error {
	if o.afterStep != nil {
		return o.afterStep(ctx, runID, pos, result, err, duration)
	}
	return nil
}

func TestObserver_HookOrderAndRunID(t *testing.T) {
	ctx := context.Background()
	var runIDSeen string
	var order []string
	obs := &hookObserver{
		beforeInvoke: func(ctx context.Context, runID string, steps int) error {
			runIDSeen = runID
			order = append(order, fmt.Sprintf("BeforeInvoke:%d", steps))
			return nil
		},
		afterInvoke: func(ctx context.Context, runID string, result any, err error) error {
			order = append(order, "AfterInvoke")
			return nil
		},
		beforeStep: func(ctx context.Context, runID string, pos int, prior *Results) error {
			order = append(order, fmt.Sprintf("BeforeStep:%d", pos))
			return nil
		},
		afterStep: func(ctx context.Context, runID string, pos int, result any, err error, d time.Duration) error {
			order = append(order, fmt.Sprintf("AfterStep:%d", pos))
			return nil
		},
	}

	p := Use(seededStore()).
		Chain(Value[*memStore](1), nil).
		Chain(Value[*memStore](2), nil).
		WithObserver(obs)
	if _, err := p.Invoke(ctx); err != nil {
		t.Fatal(err)
	}
	if runIDSeen == "" {
		t.Error("expected a generated run ID")
	}
	want := []string{"BeforeInvoke:2", "BeforeStep:1", "AfterStep:1", "BeforeStep:2", "AfterStep:2", "AfterInvoke"}
	if len(order) != len(want) {
		t.Fatalf("order: got %d hooks, want %d: %v", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d]: got %q, want %q", i, order[i], want[i])
		}
	}
}

func TestObserver_AfterStepErrorDoesNotMaskStepError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	obs := &hookObserver{
		afterStep: func(ctx context.Context, runID string, pos int, result any, err error, d time.Duration) error {
			return errors.New("hook failure")
		},
	}
	p := Use(seededStore()).
		Chain(func(ctx context.Context, s *memStore) (any, error) { return nil, boom }, nil).
		WithObserver(obs)
	_, err := p.Invoke(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("step error masked by hook error: %v", err)
	}
}

func TestObserver_ConfigErrorsAreNotObserved(t *testing.T) {
	called := false
	obs := &hookObserver{
		beforeInvoke: func(ctx context.Context, runID string, steps int) error {
			called = true
			return nil
		},
	}
	p := (&Pipeline[*memStore]{}).WithObserver(obs)
	if _, err := p.Invoke(context.Background()); !errors.Is(err, ErrUnbound) {
		t.Fatalf("expected ErrUnbound, got %v", err)
	}
	if called {
		t.Error("misuse must surface before any observer hook fires")
	}
}

func TestLogObserver_NeverFailsPipeline(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := Use(seededStore()).
		Chain(Value[*memStore]("ok"), nil).
		Chain(func(ctx context.Context, s *memStore) (any, error) {
			return nil, errors.New("boom")
		}, nil).
		WithObserver(NewLogObserver(logger))

	_, err := p.Invoke(ctx)
	if err == nil || !errorContains(err, "boom") {
		t.Fatalf("logging must not change outcomes, got %v", err)
	}
}

func TestMultiObserver_AllCalledFirstErrorWins(t *testing.T) {
	ctx := context.Background()
	var calls []string
	mk := func(name string, fail bool) Observer {
		return &hookObserver{
			beforeStep: func(ctx context.Context, runID string, pos int, prior *Results) error {
				calls = append(calls, name)
				if fail {
					return fmt.Errorf("%s failed", name)
				}
				return nil
			},
		}
	}
	p := Use(seededStore()).
		Chain(Value[*memStore](1), nil).
		WithObserver(MultiObserver(mk("a", false), mk("b", true), mk("c", false)))

	_, err := p.Invoke(ctx)
	if err == nil || !errorContains(err, "b failed") {
		t.Fatalf("expected first hook error, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Errorf("calls = %v, expected [a b]", calls)
	}
}
