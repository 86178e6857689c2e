package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
)

const recordTimeout = 2 * time.Second

// Recorder stores the timings of every launch of one program.
type Recorder struct {
	store   Store
	program string
	logger  *slog.Logger
}

// NewRecorder returns a recorder that labels its runs with program.
func NewRecorder(store Store, program string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: store, program: program, logger: logger}
}

// Hook returns a timing hook that records each launch. Failures are logged
// and never reach the caller.
func (r *Recorder) Hook() orchestrator.TimingHook {
	return func(t orchestrator.Timings, executionMs float64, executed bool) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		run := &Run{
			Program:     r.program,
			ParseMs:     t.ParseMs,
			CheckMs:     t.CheckMs,
			TranspileMs: t.TranspileMs,
			ExecutionMs: executionMs,
			Executed:    executed,
		}
		if err := r.store.RecordRun(ctx, run); err != nil {
			r.logger.Warn("failed to record run", "program", r.program, "error", err)
		}
	}
}
