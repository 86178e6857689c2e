package orchestrator

import (
	"errors"
	"sync"
	"testing"

	"github.com/leapstack-labs/portugo/internal/stream"
	"github.com/leapstack-labs/portugo/internal/testutil"
	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/event"
)

// fakeRunner is a Runner driven by the test.
type fakeRunner struct {
	code    string
	output  *stream.Stream[string]
	pending *stream.Stream[bool]
	running *stream.Stream[bool]
	events  *stream.Stream[event.Event]

	// panicIn names the method that panics: "run" or "serialized".
	panicIn string

	mu        sync.Mutex
	submitted []string
	started   int
	destroyed int
}

func newFakeRunner(code string) *fakeRunner {
	return &fakeRunner{
		code:    code,
		output:  stream.New[string](),
		pending: stream.New[bool](),
		running: stream.New[bool](),
		events:  stream.NewBuffered[event.Event](),
	}
}

func (r *fakeRunner) Submit(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, line)
}

func (r *fakeRunner) Output() stream.Source[string]     { return r.output }
func (r *fakeRunner) PendingInput() stream.Source[bool] { return r.pending }
func (r *fakeRunner) Running() stream.Source[bool]      { return r.running }

func (r *fakeRunner) Serialized() []byte {
	if r.panicIn == "serialized" {
		panic("serialize exploded")
	}
	return []byte("compiled:" + r.code)
}

func (r *fakeRunner) Run() stream.Source[event.Event] {
	if r.panicIn == "run" {
		panic("run exploded")
	}
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
	return r.events
}

func (r *fakeRunner) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed++
}

func (r *fakeRunner) Submitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.submitted...)
}

func (r *fakeRunner) Destroyed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// fakeFactory records every runner it builds.
type fakeFactory struct {
	mu      sync.Mutex
	runners []*fakeRunner
	err     error
	panics  bool
	// runnerPanicIn is copied to every runner built.
	runnerPanicIn string
	// gate, when set, is called after a runner is built and before it is
	// returned.
	gate func()
}

func (f *fakeFactory) New(code string) (Runner, error) {
	if f.panics {
		panic("factory exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	r := newFakeRunner(code)
	r.panicIn = f.runnerPanicIn
	f.mu.Lock()
	f.runners = append(f.runners, r)
	f.mu.Unlock()
	if f.gate != nil {
		f.gate()
	}
	return r, nil
}

func (f *fakeFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runners)
}

func (f *fakeFactory) All() []*fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeRunner(nil), f.runners...)
}

func (f *fakeFactory) Last() *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runners[len(f.runners)-1]
}

// pipelineFunc adapts a function to Pipeline.
type pipelineFunc func(code string) Request

func (f pipelineFunc) Compile(code string) Request { return f(code) }

// fixedPipeline compiles every program to the same diagnostics.
func fixedPipeline(syntax, semantic []diag.Diagnostic) Pipeline {
	return pipelineFunc(func(code string) Request {
		return Request{
			Code:                code,
			GeneratedCode:       "gen:" + code,
			SyntaxDiagnostics:   syntax,
			SemanticDiagnostics: semantic,
			Timings:             Timings{ParseMs: 1, CheckMs: 2, TranspileMs: 3},
		}
	})
}

type hookCall struct {
	timings     Timings
	executionMs float64
	executed    bool
}

// harness wires an orchestrator to fakes and records everything it publishes.
type harness struct {
	o       *Orchestrator
	factory *fakeFactory

	mu      sync.Mutex
	outputs []string
	pending []bool
	running []bool
	events  []event.Event
	hooks   []hookCall
}

func newHarness(t *testing.T, pipeline Pipeline) *harness {
	t.Helper()
	h := &harness{factory: &fakeFactory{}}
	h.o = New(pipeline, h.factory.New,
		WithLogger(testutil.NewTestLogger(t)),
		WithTimingHook(func(tm Timings, ms float64, executed bool) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.hooks = append(h.hooks, hookCall{tm, ms, executed})
		}),
	)
	h.o.Output().Subscribe(func(s string) { h.record(func() { h.outputs = append(h.outputs, s) }) })
	h.o.PendingInput().Subscribe(func(b bool) { h.record(func() { h.pending = append(h.pending, b) }) })
	h.o.Running().Subscribe(func(b bool) { h.record(func() { h.running = append(h.running, b) }) })
	h.o.Events().Subscribe(func(e event.Event) { h.record(func() { h.events = append(h.events, e) }) })
	return h
}

func (h *harness) record(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

func (h *harness) lastOutput() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.outputs) == 0 {
		return ""
	}
	return h.outputs[len(h.outputs)-1]
}

func (h *harness) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outputs, h.pending, h.running, h.events, h.hooks = nil, nil, nil, nil, nil
}

var errBoom = errors.New("boom")
