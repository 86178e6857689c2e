// Package starlark runs generated Portugol programs on the Starlark
// interpreter.
//
// A Runner owns one compiled program and one interpreter thread. Program
// output, input requests and lifecycle events are published on streams;
// user input arrives through Submit and is queued until leia consumes it.
package starlark

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/portugo/internal/stream"
	"github.com/leapstack-labs/portugo/pkg/event"
)

// Filename is the module name generated programs are compiled under.
const Filename = "programa.star"

const (
	// DefaultMaxDepth bounds nested calls, so runaway recursion fails
	// instead of exhausting the Go stack.
	DefaultMaxDepth = 5000

	// guardInterval is how many steps run between limit checks.
	guardInterval = 1000
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxSteps stops the program after n interpreter steps. Zero means no
// limit.
func WithMaxSteps(n uint64) Option {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// WithMaxDepth limits nested calls. Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(r *Runner) {
		r.maxDepth = n
	}
}

// Runner executes one compiled program.
type Runner struct {
	program    *starlark.Program
	serialized []byte
	thread     *starlark.Thread
	logger     *slog.Logger
	maxSteps   uint64
	maxDepth   int

	output  *stream.Stream[string]
	pending *stream.Stream[bool]
	running *stream.Stream[bool]
	events  *stream.Stream[event.Event]

	mu     sync.Mutex
	queue  []string
	ready  chan struct{}
	done   chan struct{}
	result error

	startOnce   sync.Once
	destroyOnce sync.Once
	destroyed   atomic.Bool
	finished    chan struct{}
}

// New compiles generated Starlark source into a runner.
func New(code string, opts ...Option) (*Runner, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyProgram
	}
	_, prog, err := starlark.SourceProgramOptions(fileOptions, Filename, code, isPredeclared)
	if err != nil {
		return nil, fmt.Errorf("compile program: %w", err)
	}
	return newRunner(prog, opts...)
}

// FromSerialized loads a program previously returned by Serialized.
func FromSerialized(data []byte, opts ...Option) (*Runner, error) {
	prog, err := starlark.CompiledProgram(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load compiled program: %w", err)
	}
	return newRunner(prog, opts...)
}

func newRunner(prog *starlark.Program, opts ...Option) (*Runner, error) {
	var buf bytes.Buffer
	if err := prog.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize program: %w", err)
	}

	r := &Runner{
		program:    prog,
		serialized: buf.Bytes(),
		logger:     slog.New(slog.DiscardHandler),
		maxDepth:   DefaultMaxDepth,
		output:     stream.New[string](),
		pending:    stream.New[bool](),
		running:    stream.New[bool](),
		events:     stream.NewBuffered[event.Event](),
		ready:      make(chan struct{}, 1),
		done:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.thread = &starlark.Thread{
		Name:  Filename,
		Print: func(_ *starlark.Thread, msg string) { r.output.Publish(msg + "\n") },
	}
	if r.maxSteps > 0 || r.maxDepth > 0 {
		r.thread.OnMaxSteps = r.guard
		r.thread.SetMaxExecutionSteps(r.nextCheck(0))
	}
	return r, nil
}

func isPredeclared(name string) bool { return predeclaredNames[name] }

// Output carries everything the program writes.
func (r *Runner) Output() stream.Source[string] { return r.output }

// PendingInput is true while leia waits for a line.
func (r *Runner) PendingInput() stream.Source[bool] { return r.pending }

// Running is true from start to finish of the program.
func (r *Runner) Running() stream.Source[bool] { return r.running }

// Serialized returns the compiled program. FromSerialized accepts it.
func (r *Runner) Serialized() []byte { return r.serialized }

// Submit queues one line of input for leia. It never blocks.
func (r *Runner) Submit(line string) {
	r.mu.Lock()
	r.queue = append(r.queue, line)
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Run starts the program on its own goroutine and returns its events:
// Start, then Finish or Error. Events published before the first
// subscription are held for it. Calling Run again returns the same stream.
func (r *Runner) Run() stream.Source[event.Event] {
	r.startOnce.Do(func() { go r.execute() })
	return r.events
}

// Wait blocks until a started program ends and returns its runtime error.
func (r *Runner) Wait() error {
	<-r.finished
	return r.result
}

// Destroy cancels the program and unblocks a pending leia. The program
// publishes nothing further. Destroy returns without waiting.
func (r *Runner) Destroy() {
	r.destroyOnce.Do(func() {
		r.destroyed.Store(true)
		r.thread.Cancel(reasonDestroyed)
		close(r.done)
	})
}

func (r *Runner) execute() {
	defer close(r.finished)

	r.running.Publish(true)
	r.events.Publish(event.Start{})
	start := time.Now()

	err := r.init()
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	var rerr *RuntimeError
	if err != nil {
		rerr = newRuntimeError(err)
		r.result = rerr
	}
	if r.destroyed.Load() {
		r.logger.Debug("program stopped", "elapsed_ms", elapsed)
		return
	}
	if rerr != nil {
		r.logger.Debug("program failed", "error", rerr.Message, "backtrace", rerr.Backtrace)
		r.events.Publish(event.Error{Message: rerr.Message})
	} else {
		r.events.Publish(event.Finish{Time: elapsed})
	}
	r.running.Publish(false)
}

func (r *Runner) init() (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("program panicked", "panic", fmt.Sprint(p))
			err = fmt.Errorf("erro interno: %v", p)
		}
	}()
	_, err = r.program.Init(r.thread, r.predeclared())
	return err
}

// readLine waits for a submitted line.
func (r *Runner) readLine() (string, error) {
	r.pending.Publish(true)
	defer r.pending.Publish(false)

	for {
		r.mu.Lock()
		if len(r.queue) > 0 {
			line := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()
			return line, nil
		}
		r.mu.Unlock()

		select {
		case <-r.ready:
		case <-r.done:
			return "", fmt.Errorf("%s%s", cancelledPrefix, reasonDestroyed)
		}
	}
}

// guard runs every guardInterval steps and enforces the step and depth
// limits.
func (r *Runner) guard(thread *starlark.Thread) {
	steps := thread.ExecutionSteps()
	switch {
	case r.maxDepth > 0 && thread.CallStackDepth() > r.maxDepth:
		thread.Cancel(reasonDepth)
	case r.maxSteps > 0 && steps >= r.maxSteps:
		thread.Cancel(reasonSteps)
	default:
		thread.SetMaxExecutionSteps(r.nextCheck(steps))
	}
}

func (r *Runner) nextCheck(steps uint64) uint64 {
	next := steps + guardInterval
	if r.maxSteps > 0 && next > r.maxSteps {
		next = r.maxSteps
	}
	return next
}
