package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/portugo/internal/cli/config"
	"github.com/leapstack-labs/portugo/internal/cli/output"
	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/state"
	"github.com/leapstack-labs/portugo/internal/toolchain"
)

// inputHistoryFile is the readline history kept next to the run history.
const inputHistoryFile = "input_history"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// OpenHistory opens the run history database. It returns a nil store when
// history is disabled. The cleanup function is never nil.
func (c *CommandContext) OpenHistory() (state.Store, func(), error) {
	if !c.Cfg.HistoryEnabled() {
		return nil, func() {}, nil
	}

	store := state.NewSQLiteStore(c.Logger.With("component", "history"))
	if err := store.Open(c.Cfg.HistoryPath); err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate run history: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// Toolchain returns the toolchain settings for a program, recording its
// runs in store when store is not nil.
func (c *CommandContext) Toolchain(store state.Store, program string) toolchain.Config {
	var hook orchestrator.TimingHook
	if store != nil {
		hook = state.NewRecorder(store, program, c.Logger).Hook()
	}
	return toolchain.Config{
		Logger:     c.Logger,
		MaxSteps:   c.Cfg.MaxSteps,
		MaxDepth:   c.Cfg.MaxDepth,
		TimingHook: hook,
	}
}

// InputHistoryPath returns where line mode keeps typed input, or "" when
// history is disabled.
func (c *CommandContext) InputHistoryPath() string {
	if !c.Cfg.HistoryEnabled() {
		return ""
	}
	return filepath.Join(filepath.Dir(c.Cfg.HistoryPath), inputHistoryFile)
}

// readProgram reads a program file. "-" reads stdin.
func readProgram(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
