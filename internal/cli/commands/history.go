package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/portugo/internal/cli/output"
	"github.com/leapstack-labs/portugo/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show the most recent runs recorded in the history database, with the
time spent parsing, checking, transpiling and executing each program.`,
		Example: `  portugo history
  portugo history --limit 50 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit <= 0 {
		return errors.New("--limit must be positive")
	}

	cc := NewCommandContext(cmd)
	store, closeStore, err := cc.OpenHistory()
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return errors.New("run history is disabled (history_path is empty)")
	}

	ctx := cmd.Context()
	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	summary, err := store.Summary(ctx)
	if err != nil {
		return err
	}

	return renderHistory(cc.Renderer, runs, summary)
}

func renderHistory(r *output.Renderer, runs []*state.Run, summary *state.Summary) error {
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(struct {
			Runs    []*state.Run   `json:"runs"`
			Summary *state.Summary `json:"summary"`
		}{runs, summary})
	}

	if len(runs) == 0 {
		r.Muted("Nenhuma execução registrada.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(table.Row{"Quando", "Programa", "Análise (ms)", "Execução (ms)", "Executou"})
	for _, run := range runs {
		executed := "não"
		if run.Executed {
			executed = "sim"
		}
		t.AppendRow(table.Row{
			run.StartedAt.Local().Format(time.DateTime),
			run.Program,
			fmt.Sprintf("%.2f", run.CompileMs()),
			fmt.Sprintf("%.2f", run.ExecutionMs),
			executed,
		})
	}
	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%d execuções", summary.Runs),
		fmt.Sprintf("%.2f", summary.AvgCompileMs),
		fmt.Sprintf("%.2f", summary.AvgExecutionMs),
		fmt.Sprintf("%d", summary.Executed),
	})

	if mode == output.ModeMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
