package console

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/state"
	"github.com/leapstack-labs/portugo/internal/stream"
	"github.com/leapstack-labs/portugo/internal/ui/notifier"
	"github.com/leapstack-labs/portugo/pkg/event"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Handlers provides HTTP handlers for the console feature.
type Handlers struct {
	orch     *orchestrator.Orchestrator
	store    state.Store
	notifier *notifier.Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	lastEvent json.RawMessage
	subs      *stream.Set
}

// NewHandlers creates handlers for orch. store may be nil when run history
// is disabled. Close releases the subscriptions it makes.
func NewHandlers(orch *orchestrator.Orchestrator, store state.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handlers{
		orch:     orch,
		store:    store,
		notifier: notify,
		logger:   logger,
		subs:     &stream.Set{},
	}
	h.subs.Add(orch.Events().Subscribe(h.recordEvent))
	return h
}

// Close stops tracking console events.
func (h *Handlers) Close() {
	h.subs.Release()
}

func (h *Handlers) recordEvent(e event.Event) {
	data, err := event.Marshal(e)
	if err != nil {
		h.logger.Warn("failed to encode event", "kind", e.Kind(), "error", err)
		return
	}
	h.mu.Lock()
	h.lastEvent = data
	h.mu.Unlock()
}

func (h *Handlers) snapshot() Signals {
	h.mu.Lock()
	last := h.lastEvent
	h.mu.Unlock()
	return Signals{
		Output:       h.orch.Transcript(),
		PendingInput: h.orch.IsPendingInput(),
		Running:      h.orch.IsRunning(),
		LastEvent:    last,
	}
}

// UpdatesSSE is the long-lived SSE endpoint. It sends the current state on
// connect and again whenever the console changes.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(h.snapshot()); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.MarshalAndPatchSignals(h.snapshot()); err != nil {
				h.logger.Debug("console client gone", "error", err)
				return
			}
		}
	}
}

// RunSSE compiles and runs the posted program.
func (h *Handlers) RunSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals RunSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.orch.Run(signals.Code)
	h.respond(w, r)
}

// KeysSSE feeds keystrokes to the console line buffer.
func (h *Handlers) KeysSSE(w http.ResponseWriter, r *http.Request) {
	var signals KeySignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.orch.Keys(signals.Keys)
	h.respond(w, r)
}

// StopSSE stops the running program and clears the console.
func (h *Handlers) StopSSE(w http.ResponseWriter, r *http.Request) {
	h.orch.Stop()
	h.respond(w, r)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(h.snapshot()); err != nil {
		h.logger.Debug("failed to patch signals", "error", err)
	}
}

// Serialized returns the compiled form of the active program.
func (h *Handlers) Serialized(w http.ResponseWriter, _ *http.Request) {
	data, ok := h.orch.Serialized()
	if !ok {
		http.Error(w, "no program is running", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="programa.starc"`)
	_, _ = w.Write(data)
}

// History returns recent runs as JSON.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			http.Error(w, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		h.logger.Debug("failed to write runs", "error", err)
	}
}
