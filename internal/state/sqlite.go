package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var errNotOpen = errors.New("database not opened")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store. Call Open or UseDB before using it.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger, now: time.Now}
}

// Open opens the database at path, creating its directory if needed.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.UseDB(db)
	s.logger.Debug("opened history database", slog.String("path", path))
	return nil
}

// UseDB makes the store use an already open database.
func (s *SQLiteStore) UseDB(db *sql.DB) {
	s.db = db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts run. A missing ID or start time is filled in.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return errNotOpen
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, program, started_at, parse_ms, check_ms, transpile_ms, execution_ms, executed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Program, run.StartedAt.UnixMilli(),
		run.ParseMs, run.CheckMs, run.TranspileMs, run.ExecutionMs, run.Executed,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("recorded run", slog.String("id", run.ID), slog.Bool("executed", run.Executed))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program, started_at, parse_ms, check_ms, transpile_ms, execution_ms, executed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		var (
			run     Run
			started int64
		)
		if err := rows.Scan(&run.ID, &run.Program, &started, &run.ParseMs, &run.CheckMs,
			&run.TranspileMs, &run.ExecutionMs, &run.Executed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Summary aggregates all recorded runs. Execution time is averaged over
// runs that executed.
func (s *SQLiteStore) Summary(ctx context.Context) (*Summary, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	var (
		sum     Summary
		avgComp sql.NullFloat64
		avgExec sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(executed), 0),
		        AVG(parse_ms + check_ms + transpile_ms),
		        AVG(CASE WHEN executed THEN execution_ms END)
		 FROM runs`,
	).Scan(&sum.Runs, &sum.Executed, &avgComp, &avgExec)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize runs: %w", err)
	}
	sum.AvgCompileMs = avgComp.Float64
	sum.AvgExecutionMs = avgExec.Float64
	return &sum, nil
}
