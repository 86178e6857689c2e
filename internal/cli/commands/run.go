package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/portugo/internal/cli/console"
	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/toolchain"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Mode     string
	Watch    bool
	Compiled bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a Portugol program in the console",
		Long: `Compile a Portugol program to Starlark and run it in an interactive console.

Input modes:
  raw   every keystroke goes through the console line buffer (terminal only)
  line  each input line is edited with readline, with history
  pipe  input lines are read from stdin when the program asks for them
  auto  raw on a terminal, pipe otherwise

The command fails when the program has syntax errors or stops with a
runtime error.`,
		Example: `  # Run a program
  portugo run media.por

  # Feed input from a file
  portugo run media.por < notas.txt

  # Re-run on every save
  portugo run media.por --watch

  # Run a program serialized by 'portugo transpile --serialized'
  portugo run media.starc --compiled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", string(console.ModeAuto), "Input mode ("+strings.Join(console.Modes, "|")+")")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the program when the file changes")
	cmd.Flags().BoolVar(&opts.Compiled, "compiled", false, "The file is a serialized compiled program")
	cmd.Flags().Duration("debounce", 0, "Delay before re-running after a change (default 200ms)")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return console.Modes, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRun(cmd *cobra.Command, path string, opts *RunOptions) error {
	mode, err := console.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	if opts.Compiled && opts.Watch {
		return errors.New("--watch cannot be used with --compiled")
	}

	cc := NewCommandContext(cmd)
	store, closeStore, err := cc.OpenHistory()
	if err != nil {
		return err
	}
	defer closeStore()

	tcfg := cc.Toolchain(store, filepath.Base(path))

	var (
		orch *orchestrator.Orchestrator
		code string
	)
	if opts.Compiled {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		orch = toolchain.NewCompiled(tcfg, data)
	} else {
		if code, err = readProgram(cmd, path); err != nil {
			return err
		}
		orch = toolchain.New(tcfg)
	}

	host, err := console.New(orch, console.Config{
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
		Mode:        mode,
		HistoryFile: cc.InputHistoryPath(),
		Logger:      cc.Logger.With("component", "console"),
	})
	if err != nil {
		return err
	}
	defer func() { _ = host.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if opts.Compiled {
		return runOutcome(host.RunTranspiled(ctx, orchestrator.Request{}))
	}
	if !opts.Watch {
		return runOutcome(host.Run(ctx, code, nil))
	}

	changes, err := watchProgram(ctx, path, cc.Cfg.WatchDebounce, cc.Logger)
	if err != nil {
		return err
	}
	for {
		err := host.Run(ctx, code, changes)
		if ctx.Err() != nil {
			return nil
		}
		if outcome := runOutcome(err); outcome != nil {
			cc.Logger.Debug("run ended", "error", outcome)
		}
		select {
		case next, ok := <-changes:
			if !ok {
				return nil
			}
			code = next
		case <-ctx.Done():
			return nil
		}
	}
}

// runOutcome turns a console result into the command's error. The console
// already showed the details.
func runOutcome(err error) error {
	var rerr *console.RuntimeError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, console.ErrSyntax):
		return errors.New("o programa tem erros de sintaxe")
	case errors.As(err, &rerr):
		return errors.New("o programa terminou com erro")
	case errors.Is(err, context.Canceled), errors.Is(err, console.ErrInterrupted):
		return console.ErrInterrupted
	default:
		return err
	}
}
