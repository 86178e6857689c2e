// Package state records the history of program runs in SQLite.
//
// Only compile and execution timings are kept, never program state.
package state

import (
	"context"
	"time"
)

// Run is one launch of a program.
type Run struct {
	ID          string    `json:"id"`
	Program     string    `json:"program"`
	StartedAt   time.Time `json:"startedAt"`
	ParseMs     float64   `json:"parseMs"`
	CheckMs     float64   `json:"checkMs"`
	TranspileMs float64   `json:"transpileMs"`
	ExecutionMs float64   `json:"executionMs"`
	Executed    bool      `json:"executed"`
}

// CompileMs is the total time spent before execution.
func (r *Run) CompileMs() float64 {
	return r.ParseMs + r.CheckMs + r.TranspileMs
}

// Summary aggregates every recorded run.
type Summary struct {
	Runs           int     `json:"runs"`
	Executed       int     `json:"executed"`
	AvgCompileMs   float64 `json:"avgCompileMs"`
	AvgExecutionMs float64 `json:"avgExecutionMs"`
}

// Store persists runs.
type Store interface {
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Summary(ctx context.Context) (*Summary, error)
	Close() error
}
