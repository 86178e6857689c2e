// Package orchestrator drives program text through compilation and into a
// runner, and multiplexes the runner's lifecycle back to a host.
//
// The host sees four streams: the accumulated console transcript, whether the
// program is waiting for input, whether it is running, and lifecycle events.
// Keystrokes enter through Key and are line-buffered the way a terminal
// would: completed lines go to the active runner.
//
// At most one runner is live at a time. Every run starts by resetting the
// previous one, and values still in flight from a retired runner are
// dropped.
package orchestrator

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/portugo/internal/stream"
	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/event"
)

// Sentinel errors for launch failures. They never reach callers of Run; they
// are logged and converted into the failure transcript.
var (
	ErrSyntax   = errors.New("program has syntax errors")
	ErrNoRunner = errors.New("runner factory returned no runner")
)

// Runner executes generated code.
type Runner interface {
	// Submit delivers one line of user input.
	Submit(line string)
	// Output carries chunks of program output.
	Output() stream.Source[string]
	// PendingInput reports whether the program is waiting for input.
	PendingInput() stream.Source[bool]
	// Running reports whether the program is executing.
	Running() stream.Source[bool]
	// Run starts execution and returns its lifecycle events.
	Run() stream.Source[event.Event]
	// Serialized returns an exportable form of the runner's program.
	Serialized() []byte
	// Destroy stops the runner and releases its resources.
	Destroy()
}

// RunnerFactory builds a runner for generated code.
type RunnerFactory func(generatedCode string) (Runner, error)

// Timings holds per-phase compilation times in milliseconds.
type Timings struct {
	ParseMs     float64 `json:"parseMs"`
	CheckMs     float64 `json:"checkMs"`
	TranspileMs float64 `json:"transpileMs"`
}

// Request is the result of compiling one program.
type Request struct {
	Code                string
	GeneratedCode       string
	SyntaxDiagnostics   []diag.Diagnostic
	SemanticDiagnostics []diag.Diagnostic
	Timings             Timings
}

// TimingHook receives the timings of every launch. executed is false when
// the program never ran, in which case executionMs is zero.
type TimingHook func(t Timings, executionMs float64, executed bool)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimingHook sets the hook called with launch timings.
func WithTimingHook(hook TimingHook) Option {
	return func(o *Orchestrator) {
		o.hook = hook
	}
}

// Orchestrator owns the console state and the active runner.
type Orchestrator struct {
	pipeline Pipeline
	factory  RunnerFactory
	hook     TimingHook
	logger   *slog.Logger

	// launchMu serializes launches and resets. It is held while a launch
	// replays events buffered by the new runner, so listeners must not call
	// Run, RunTranspiled, Reset or Stop synchronously.
	launchMu sync.Mutex

	mu          sync.Mutex
	inputBuffer []rune
	output      string
	outputSeq   uint64
	pending     bool
	running     bool
	runner      Runner
	serialized  []byte
	generation  uint64
	subs        stream.Set

	// publishMu orders transcript publications. published is the sequence
	// number of the last transcript delivered.
	publishMu sync.Mutex
	published uint64

	outputStream  *stream.Stream[string]
	pendingStream *stream.Stream[bool]
	runningStream *stream.Stream[bool]
	events        *stream.Stream[event.Event]
}

// New creates an orchestrator compiling with pipeline and running with factory.
func New(pipeline Pipeline, factory RunnerFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipeline:      pipeline,
		factory:       factory,
		logger:        slog.New(slog.DiscardHandler),
		outputStream:  stream.New[string](),
		pendingStream: stream.New[bool](),
		runningStream: stream.New[bool](),
		events:        stream.New[event.Event](),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Output publishes the full transcript after every change. Listeners never
// see an older transcript after a newer one, and must not call back into the
// orchestrator.
func (o *Orchestrator) Output() stream.Source[string] { return o.outputStream }

// PendingInput publishes the runner's waiting-for-input state.
func (o *Orchestrator) PendingInput() stream.Source[bool] { return o.pendingStream }

// Running publishes the runner's running state.
func (o *Orchestrator) Running() stream.Source[bool] { return o.runningStream }

// Events publishes lifecycle events of the active runner, plus ParseError
// when a launch fails.
func (o *Orchestrator) Events() stream.Source[event.Event] { return o.events }

// Transcript returns the current transcript.
func (o *Orchestrator) Transcript() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.output
}

// InputBuffer returns the keystrokes typed since the last line was committed.
func (o *Orchestrator) InputBuffer() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return string(o.inputBuffer)
}

// IsPendingInput reports whether the program is waiting for input.
func (o *Orchestrator) IsPendingInput() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// IsRunning reports whether the program is executing.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Serialized returns the serialized program of the active runner, and false
// when there is none.
func (o *Orchestrator) Serialized() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.runner == nil {
		return nil, false
	}
	return o.serialized, true
}

// snapshotLocked numbers the current transcript. o.mu must be held.
func (o *Orchestrator) snapshotLocked() (string, uint64) {
	o.outputSeq++
	return o.output, o.outputSeq
}

// publishOutput delivers a transcript snapshot unless a newer one was
// already delivered.
func (o *Orchestrator) publishOutput(out string, seq uint64) {
	o.publishMu.Lock()
	defer o.publishMu.Unlock()
	if seq <= o.published {
		return
	}
	o.published = seq
	o.outputStream.Publish(out)
}

// writeOutput applies fn to the transcript and publishes the result.
func (o *Orchestrator) writeOutput(fn func()) {
	o.mu.Lock()
	fn()
	out, seq := o.snapshotLocked()
	o.mu.Unlock()
	o.publishOutput(out, seq)
}
