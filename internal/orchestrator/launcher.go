package orchestrator

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/portugo/pkg/event"
)

// Run compiles code and launches it.
func (o *Orchestrator) Run(code string) {
	o.RunTranspiled(o.pipeline.Compile(code))
}

// RunTranspiled launches a compiled request. It never fails: problems are
// written to the transcript and reported as a ParseError event.
//
// Syntax diagnostics stop the launch. Semantic diagnostics are listed in the
// transcript and the program runs anyway.
//
// Launches do not overlap: a concurrent Run, Reset or Stop waits until this
// one has attached its runner or failed.
func (o *Orchestrator) RunTranspiled(req Request) {
	o.launchMu.Lock()
	defer o.launchMu.Unlock()

	o.reset(false)

	if err := o.launch(req); err != nil {
		if errors.Is(err, ErrSyntax) {
			o.logger.Debug("launch stopped by syntax errors", "count", len(req.SyntaxDiagnostics))
		} else {
			o.logger.Error("launch failed", "error", err)
		}
		o.fail(req)
	}
}

func (o *Orchestrator) launch(req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("launch panicked: %v", r)
		}
	}()

	if len(req.SyntaxDiagnostics) > 0 {
		return ErrSyntax
	}

	if len(req.SemanticDiagnostics) > 0 {
		text := warningText(req.Code, req.SemanticDiagnostics)
		o.writeOutput(func() { o.output += text })
	}

	runner, err := o.factory(req.GeneratedCode)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	if runner == nil {
		return ErrNoRunner
	}

	o.attach(runner, req.Timings)
	return nil
}

// attach makes runner the active runner and forwards its streams. The runner
// is owned before any of its methods is called, so a panic in one of them
// still leaves it to the failure path's reset.
func (o *Orchestrator) attach(runner Runner, timings Timings) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.runner = runner
	o.mu.Unlock()

	serialized := runner.Serialized()
	o.update(gen, func() { o.serialized = serialized })

	o.subs.Add(runner.Output().Subscribe(func(chunk string) {
		o.updateOutput(gen, func() { o.output += chunk })
	}))
	o.subs.Add(runner.PendingInput().Subscribe(func(pending bool) {
		if o.update(gen, func() { o.pending = pending }) {
			o.pendingStream.Publish(pending)
		}
	}))
	o.subs.Add(runner.Running().Subscribe(func(running bool) {
		if o.update(gen, func() { o.running = running }) {
			o.runningStream.Publish(running)
		}
	}))

	fwd := &forwarder{o: o, gen: gen, timings: timings}
	o.subs.Add(runner.Run().Subscribe(fwd.handle))
}

// update applies fn to the state if gen is still the active generation.
func (o *Orchestrator) update(gen uint64, fn func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	fn()
	return true
}

// updateOutput is update for transcript changes: the resulting transcript is
// published.
func (o *Orchestrator) updateOutput(gen uint64, fn func()) bool {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return false
	}
	fn()
	out, seq := o.snapshotLocked()
	o.mu.Unlock()

	o.publishOutput(out, seq)
	return true
}

// fail writes the failure line, reports timings without execution, tears
// down and publishes ParseError.
func (o *Orchestrator) fail(req Request) {
	o.writeOutput(func() { o.output += asLine(o.output, failureLine) })
	o.callHook(req.Timings, 0, false)
	o.reset(false)
	o.events.Publish(event.ParseError{Errors: req.SyntaxDiagnostics})
}

func (o *Orchestrator) callHook(t Timings, executionMs float64, executed bool) {
	if o.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("timing hook panicked", "panic", fmt.Sprint(r))
		}
	}()
	o.hook(t, executionMs, executed)
}

// forwarder applies lifecycle events of one runner generation to the
// orchestrator and republishes them.
type forwarder struct {
	o       *Orchestrator
	gen     uint64
	timings Timings
}

func (f *forwarder) handle(e event.Event) {
	if !f.o.update(f.gen, func() {}) {
		return
	}
	e.Accept(f)
	f.o.events.Publish(e)
}

func (f *forwarder) Start(event.Start) {}

func (f *forwarder) Finish(e event.Finish) {
	if f.o.updateOutput(f.gen, func() { f.o.output += asLine(f.o.output, finishText(e.Time)) }) {
		f.o.callHook(f.timings, e.Time, true)
	}
}

func (f *forwarder) Clear(event.Clear) {
	f.o.updateOutput(f.gen, func() {
		f.o.output = ""
		f.o.inputBuffer = f.o.inputBuffer[:0]
	})
}

func (f *forwarder) Error(e event.Error) {
	f.o.updateOutput(f.gen, func() { f.o.output += asLine(f.o.output, errorText(e.Message)) })
}

func (f *forwarder) ParseError(event.ParseError) {}
