// Package testutil provides loggers for tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log.
// Output only shows on failure or with -v. Records logged after the test
// has finished, by goroutines it left behind, are dropped.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newTestHandler(t))
}

func newTestHandler(t testing.TB) slog.Handler {
	w := &testWriter{t: t}
	t.Cleanup(w.close)
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}

type testWriter struct {
	t      testing.TB
	mu     sync.Mutex
	closed bool
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.t.Log(strings.TrimSuffix(string(p), "\n"))
	}
	return len(p), nil
}

func (w *testWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Records collects log records so tests can assert on what was logged.
type Records struct {
	mu      sync.Mutex
	entries []slog.Record
}

// Messages returns the messages logged at exactly level, in order.
func (r *Records) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.entries {
		if rec.Level == level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// NewRecordingLogger returns a logger that writes to t.Log and keeps every
// record in the returned Records.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *Records) {
	t.Helper()
	records := &Records{}
	return slog.New(&recordingHandler{next: newTestHandler(t), records: records}), records
}

type recordingHandler struct {
	next    slog.Handler
	records *Records
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *recordingHandler) Handle(ctx context.Context, rec slog.Record) error {
	h.records.mu.Lock()
	h.records.entries = append(h.records.entries, rec.Clone())
	h.records.mu.Unlock()
	return h.next.Handle(ctx, rec)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{next: h.next.WithAttrs(attrs), records: h.records}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{next: h.next.WithGroup(name), records: h.records}
}
