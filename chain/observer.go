package chain

import (
	"context"
	"log/slog"
	"time"
)

// Observer provides pre/post hooks around Invoke and each step, for logging
// and monitoring. Attach with WithObserver. Hooks receive the run ID
// generated for the Invoke; BeforeStep additionally sees the accumulator of
// prior results, AfterStep the step's result (or capture envelope), error,
// and duration. A hook error from BeforeStep aborts the walk; AfterStep and
// AfterInvoke errors never mask a step error.
type Observer interface {
	BeforeInvoke(ctx context.Context, runID string, steps int) error
	AfterInvoke(ctx context.Context, runID string, result any, err error) error
	BeforeStep(ctx context.Context, runID string, pos int, prior *Results) error
	AfterStep(ctx context.Context, runID string, pos int, result any, err error, duration time.Duration) error
}

// MultiObserver combines observers; each hook calls every observer in order
// and returns the first error.
func MultiObserver(list ...Observer) Observer {
	return multiObserver(list)
}

type multiObserver []Observer

func (m multiObserver) BeforeInvoke(ctx context.Context, runID string, steps int) error {
	for _, o := range m {
		if err := o.BeforeInvoke(ctx, runID, steps); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) AfterInvoke(ctx context.Context, runID string, result any, err error) error {
	for _, o := range m {
		if hookErr := o.AfterInvoke(ctx, runID, result, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}

func (m multiObserver) BeforeStep(ctx context.Context, runID string, pos int, prior *Results) error {
	for _, o := range m {
		if err := o.BeforeStep(ctx, runID, pos, prior); err != nil {
			return err
		}
	}
	return nil
}

func (m multiObserver) AfterStep(ctx context.Context, runID string, pos int, result any, err error, duration time.Duration) error {
	for _, o := range m {
		if hookErr := o.AfterStep(ctx, runID, pos, result, err, duration); hookErr != nil {
			return hookErr
		}
	}
	return nil
}

// LogObserver logs invoke and step lifecycle through slog. Hook errors are
// never produced, so logging cannot fail a pipeline.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns a LogObserver writing to logger, or slog.Default()
// when logger is nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) BeforeInvoke(ctx context.Context, runID string, steps int) error {
	o.logger.InfoContext(ctx, "pipeline invoke", "run_id", runID, "steps", steps)
	return nil
}

func (o *LogObserver) AfterInvoke(ctx context.Context, runID string, result any, err error) error {
	if err != nil {
		o.logger.ErrorContext(ctx, "pipeline failed", "run_id", runID, "error", err)
		return nil
	}
	o.logger.InfoContext(ctx, "pipeline completed", "run_id", runID)
	return nil
}

func (o *LogObserver) BeforeStep(ctx context.Context, runID string, pos int, prior *Results) error {
	o.logger.DebugContext(ctx, "step start", "run_id", runID, "step", pos, "prior", prior.Len())
	return nil
}

func (o *LogObserver) AfterStep(ctx context.Context, runID string, pos int, result any, err error, duration time.Duration) error {
	if err != nil {
		o.logger.WarnContext(ctx, "step failed", "run_id", runID, "step", pos, "error", err, "duration", duration)
		return nil
	}
	o.logger.DebugContext(ctx, "step done", "run_id", runID, "step", pos, "duration", duration)
	return nil
}

var _ Observer = (*LogObserver)(nil)
