// Package toolchain assembles the Portugol compiler and the Starlark runner
// into a ready orchestrator.
package toolchain

import (
	"log/slog"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/starlark"
	"github.com/leapstack-labs/portugo/pkg/checker"
	"github.com/leapstack-labs/portugo/pkg/codegen"
	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/parser"
)

// Config holds the settings shared by the pipeline and the runners.
type Config struct {
	Logger     *slog.Logger
	MaxSteps   uint64
	MaxDepth   int
	TimingHook orchestrator.TimingHook
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Pipeline returns the parse, check and transpile phases for Portugol.
func Pipeline(logger *slog.Logger) *orchestrator.Toolchain[*parser.Program] {
	return orchestrator.NewToolchain[*parser.Program](
		orchestrator.ParseFunc[*parser.Program](func(code string, report func(diag.Diagnostic)) (*parser.Program, error) {
			return parser.Parse(code, report)
		}),
		orchestrator.CheckFunc[*parser.Program](checker.Check),
		orchestrator.GenerateFunc[*parser.Program](codegen.Generate),
		orchestrator.WithToolchainLogger[*parser.Program](logger),
	)
}

// Factory returns a RunnerFactory that builds Starlark runners. Empty code
// is rejected.
func Factory(cfg Config) orchestrator.RunnerFactory {
	return func(code string) (orchestrator.Runner, error) {
		r, err := starlark.New(code, cfg.runnerOptions()...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// CompiledFactory returns a RunnerFactory that ignores the generated code
// and loads data, a program serialized by a previous run.
func CompiledFactory(cfg Config, data []byte) orchestrator.RunnerFactory {
	return func(string) (orchestrator.Runner, error) {
		r, err := starlark.FromSerialized(data, cfg.runnerOptions()...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func (c Config) runnerOptions() []starlark.Option {
	opts := []starlark.Option{
		starlark.WithLogger(c.logger().With("component", "runner")),
		starlark.WithMaxSteps(c.MaxSteps),
	}
	if c.MaxDepth != 0 {
		opts = append(opts, starlark.WithMaxDepth(c.MaxDepth))
	}
	return opts
}

// New returns an orchestrator that compiles Portugol and runs it on
// Starlark.
func New(cfg Config) *orchestrator.Orchestrator {
	logger := cfg.logger()
	return orchestrator.New(
		Pipeline(logger.With("component", "pipeline")),
		Factory(cfg),
		orchestrator.WithLogger(logger.With("component", "orchestrator")),
		orchestrator.WithTimingHook(cfg.TimingHook),
	)
}

// NewCompiled returns an orchestrator that runs a serialized program.
// Run still needs program text; RunTranspiled with an empty Request runs
// data directly.
func NewCompiled(cfg Config, data []byte) *orchestrator.Orchestrator {
	logger := cfg.logger()
	return orchestrator.New(
		Pipeline(logger.With("component", "pipeline")),
		CompiledFactory(cfg, data),
		orchestrator.WithLogger(logger.With("component", "orchestrator")),
		orchestrator.WithTimingHook(cfg.TimingHook),
	)
}
