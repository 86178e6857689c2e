package orchestrator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/portugo/pkg/diag"
)

// Pipeline compiles program text into a launch request.
type Pipeline interface {
	Compile(code string) Request
}

// Parser parses program text. Syntax problems are passed to report whether
// or not Parse fails.
type Parser[T any] interface {
	Parse(code string, report func(diag.Diagnostic)) (T, error)
}

// Checker statically checks a parse tree.
type Checker[T any] interface {
	Check(tree T) ([]diag.Diagnostic, error)
}

// Generator translates a parse tree into runner code.
type Generator[T any] interface {
	Generate(tree T) (string, error)
}

// ParseFunc adapts a function to Parser.
type ParseFunc[T any] func(code string, report func(diag.Diagnostic)) (T, error)

func (f ParseFunc[T]) Parse(code string, report func(diag.Diagnostic)) (T, error) {
	return f(code, report)
}

// CheckFunc adapts a function to Checker.
type CheckFunc[T any] func(tree T) ([]diag.Diagnostic, error)

func (f CheckFunc[T]) Check(tree T) ([]diag.Diagnostic, error) { return f(tree) }

// GenerateFunc adapts a function to Generator.
type GenerateFunc[T any] func(tree T) (string, error)

func (f GenerateFunc[T]) Generate(tree T) (string, error) { return f(tree) }

// Toolchain runs parse, check and generate in sequence.
type Toolchain[T any] struct {
	parser    Parser[T]
	checker   Checker[T]
	generator Generator[T]
	logger    *slog.Logger
	now       func() time.Time
}

// ToolchainOption configures a Toolchain.
type ToolchainOption[T any] func(*Toolchain[T])

// WithToolchainLogger sets the logger used for phase failures.
func WithToolchainLogger[T any](logger *slog.Logger) ToolchainOption[T] {
	return func(tc *Toolchain[T]) {
		if logger != nil {
			tc.logger = logger
		}
	}
}

// WithClock replaces the clock used to time phases.
func WithClock[T any](now func() time.Time) ToolchainOption[T] {
	return func(tc *Toolchain[T]) {
		tc.now = now
	}
}

// NewToolchain creates a toolchain from its three phases.
func NewToolchain[T any](p Parser[T], c Checker[T], g Generator[T], opts ...ToolchainOption[T]) *Toolchain[T] {
	tc := &Toolchain[T]{
		parser:    p,
		checker:   c,
		generator: g,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Compile runs every phase it can. A phase that fails, by error or panic,
// stops the phases after it; whatever was produced so far is kept and the
// timings of phases that did not run stay zero.
func (tc *Toolchain[T]) Compile(code string) Request {
	req := Request{Code: code}
	var (
		syntax diag.Collector
		tree   T
	)

	ok := tc.phase("parse", &req.Timings.ParseMs, func() (err error) {
		tree, err = tc.parser.Parse(code, syntax.Report)
		return err
	})
	req.SyntaxDiagnostics = syntax.Diagnostics()
	if !ok {
		return req
	}

	ok = tc.phase("check", &req.Timings.CheckMs, func() (err error) {
		req.SemanticDiagnostics, err = tc.checker.Check(tree)
		return err
	})
	if !ok {
		return req
	}

	tc.phase("transpile", &req.Timings.TranspileMs, func() (err error) {
		req.GeneratedCode, err = tc.generator.Generate(tree)
		return err
	})
	return req
}

// phase runs fn, stores its duration in elapsed and reports whether it
// succeeded.
func (tc *Toolchain[T]) phase(name string, elapsed *float64, fn func() error) (ok bool) {
	start := tc.now()
	defer func() {
		*elapsed = milliseconds(tc.now().Sub(start))
		if r := recover(); r != nil {
			tc.logger.Error("compile phase panicked", "phase", name, "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		tc.logger.Debug("compile phase failed", "phase", name, "error", err)
		return false
	}
	return true
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
