package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/portugo/internal/cli/console"
	"github.com/leapstack-labs/portugo/internal/cli/output"
	"github.com/leapstack-labs/portugo/internal/cli/testutil"
	"github.com/leapstack-labs/portugo/internal/state"
	"github.com/leapstack-labs/portugo/pkg/diag"
)

const (
	cleanProgram = `programa {
	funcao inicio() {
		escreva("olá\n")
	}
}`
	warnProgram = `programa {
	funcao inicio() {
		inteiro x
		x = "texto"
	}
}`
	brokenProgram = `programa {
	funcao inicio() {
		escreva("sem fim"
	}
}`
)

type result struct {
	out, errOut string
	err         error
}

// execute runs cmd with args the way the root command would: usage and the
// returned error are left to the caller.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func inProject(t *testing.T, programs map[string]string) string {
	t.Helper()
	dir := testutil.SetupTestProject(t, programs)
	t.Chdir(dir)
	return dir
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewRunCommand(), "run <file>", []string{"mode", "watch", "compiled", "debounce"}},
		{NewCheckCommand(), "check <file>...", []string{"format"}},
		{NewTranspileCommand(), "transpile <file>", []string{"serialized"}},
		{NewHistoryCommand(), "history", []string{"limit"}},
		{NewServeCommand(), "serve", []string{"addr"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "flag %q should exist", f)
			}
		})
	}
}

func TestCheck_Formats(t *testing.T) {
	inProject(t, map[string]string{"ok.por": cleanProgram, "warn.por": warnProgram})

	t.Run("markdown", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), "", "ok.por", "warn.por")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "## warn.por")
		assert.NotContains(t, res.out, "## ok.por")
		assert.Contains(t, res.out, "2 arquivo(s), 0 erro(s), 1 aviso(s)")
		testutil.AssertNoANSI(t, res.out)
		testutil.AssertValidMarkdown(t, res.out)
	})

	t.Run("yaml", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), "", "ok.por", "warn.por", "--format", "yaml")
		require.NoError(t, res.err)

		var reports []FileReport
		require.NoError(t, yaml.Unmarshal([]byte(res.out), &reports))
		require.Len(t, reports, 2)
		assert.Equal(t, "ok.por", reports[0].File)
		assert.Empty(t, reports[0].Warnings)
		assert.Equal(t, "warn.por", reports[1].File)
		require.Len(t, reports[1].Warnings, 1)
		assert.Equal(t, 4, reports[1].Warnings[0].Line)
	})

	t.Run("json", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), "", "warn.por", "--format", "json")
		require.NoError(t, res.err)

		var reports []FileReport
		require.NoError(t, json.Unmarshal([]byte(res.out), &reports))
		require.Len(t, reports, 1)
		assert.Len(t, reports[0].Warnings, 1)
	})

	t.Run("unknown format", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), "", "ok.por", "--format", "xml")
		require.Error(t, res.err)
	})
}

func TestCheck_SyntaxErrorsFail(t *testing.T) {
	inProject(t, map[string]string{"ok.por": cleanProgram, "broken.por": brokenProgram})

	res := execute(t, NewCheckCommand(), "", "ok.por", "broken.por")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "1 arquivo(s) com erros de sintaxe")
	assert.Contains(t, res.out, "**erro**")
}

func TestCheck_MissingFile(t *testing.T) {
	inProject(t, nil)

	res := execute(t, NewCheckCommand(), "", "nao-existe.por")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "failed to read nao-existe.por")
}

func TestRenderReports_Text(t *testing.T) {
	r := testutil.NewTestRenderer(output.ModeText, false)

	renderReports(r.Renderer, []FileReport{
		{File: "a.por", Errors: []diag.Diagnostic{{Message: "esperado ')'", Line: 3, Column: 20}}},
		{File: "b.por"},
	})

	assert.Contains(t, r.Output(), "a.por")
	assert.Contains(t, r.Output(), "   3:20   erro   esperado ')'")
	assert.Contains(t, r.Output(), "1 erro(s), 0 aviso(s)")
	assert.NotContains(t, r.Output(), "b.por")
}

func TestRenderReports_TextClean(t *testing.T) {
	r := testutil.NewTestRenderer(output.ModeText, false)
	renderReports(r.Renderer, []FileReport{{File: "a.por"}})
	assert.Contains(t, r.Output(), "✓ 1 arquivo(s) sem problemas")
}

func TestTranspile(t *testing.T) {
	dir := inProject(t, map[string]string{"ok.por": cleanProgram, "broken.por": brokenProgram})

	t.Run("prints generated code", func(t *testing.T) {
		res := execute(t, NewTranspileCommand(), "", "ok.por")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "def f_inicio(")
	})

	t.Run("reads stdin", func(t *testing.T) {
		res := execute(t, NewTranspileCommand(), cleanProgram, "-")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "def f_inicio(")
	})

	t.Run("syntax errors", func(t *testing.T) {
		res := execute(t, NewTranspileCommand(), "", "broken.por")
		require.Error(t, res.err)
		assert.Contains(t, res.errOut, "erro: ")
		assert.NotContains(t, res.errOut, "Usage:")
		assert.Empty(t, res.out)
	})

	t.Run("serialized program runs", func(t *testing.T) {
		compiled := filepath.Join(dir, "ok.starc")
		res := execute(t, NewTranspileCommand(), "", "ok.por", "--serialized", compiled)
		require.NoError(t, res.err)

		data, err := os.ReadFile(compiled)
		require.NoError(t, err)
		assert.NotEmpty(t, data)

		res = execute(t, NewRunCommand(), "", compiled, "--compiled", "--mode", "pipe")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.out, "olá\n"), res.out)
	})
}

func TestRun(t *testing.T) {
	inProject(t, map[string]string{
		"echo.por":   testutil.EchoProgram,
		"broken.por": brokenProgram,
	})

	t.Run("pipe input", func(t *testing.T) {
		res := execute(t, NewRunCommand(), "21\n", "echo.por", "--mode", "pipe")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.out, "Digite um número: 21\nO dobro é 42\n"), res.out)
	})

	t.Run("syntax error", func(t *testing.T) {
		res := execute(t, NewRunCommand(), "", "broken.por", "--mode", "pipe")
		require.Error(t, res.err)
		assert.Contains(t, res.out, "Não foi possível executar o código")
	})

	t.Run("input closed", func(t *testing.T) {
		res := execute(t, NewRunCommand(), "", "echo.por", "--mode", "pipe")
		assert.ErrorIs(t, res.err, console.ErrInputClosed)
	})

	t.Run("bad mode", func(t *testing.T) {
		res := execute(t, NewRunCommand(), "", "echo.por", "--mode", "tty")
		require.Error(t, res.err)
	})

	t.Run("watch with compiled", func(t *testing.T) {
		res := execute(t, NewRunCommand(), "", "echo.por", "--watch", "--compiled")
		require.Error(t, res.err)
	})
}

func TestRunOutcome(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want string
	}{
		{"success", nil, ""},
		{"syntax", console.ErrSyntax, "o programa tem erros de sintaxe"},
		{"runtime", &console.RuntimeError{Message: "divisão por zero"}, "o programa terminou com erro"},
		{"cancelled", context.Canceled, console.ErrInterrupted.Error()},
		{"input closed", console.ErrInputClosed, console.ErrInputClosed.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runOutcome(tt.in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestRenderHistory(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	runs := []*state.Run{
		{Program: "media.por", StartedAt: started, ParseMs: 1, CheckMs: 0.5, TranspileMs: 0.5, ExecutionMs: 12.25, Executed: true},
		{Program: "erro.por", StartedAt: started, ParseMs: 3},
	}
	summary := &state.Summary{Runs: 2, Executed: 1, AvgCompileMs: 2.5, AvgExecutionMs: 12.25}

	t.Run("markdown", func(t *testing.T) {
		r := testutil.NewTestRenderer(output.ModeMarkdown, false)
		require.NoError(t, renderHistory(r.Renderer, runs, summary))
		assert.Contains(t, r.Output(), "| 2024-03-01 12:00:00 | media.por | 2.00 | 12.25 | sim |")
		assert.Contains(t, r.Output(), "erro.por | 3.00 | 0.00 | não")
		assert.Contains(t, r.Output(), "2 execuções")
	})

	t.Run("json", func(t *testing.T) {
		r := testutil.NewTestRenderer(output.ModeJSON, false)
		require.NoError(t, renderHistory(r.Renderer, runs, summary))

		var got struct {
			Runs    []state.Run   `json:"runs"`
			Summary state.Summary `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(r.Out.Bytes(), &got))
		assert.Len(t, got.Runs, 2)
		assert.Equal(t, 2, got.Summary.Runs)
	})

	t.Run("text", func(t *testing.T) {
		r := testutil.NewTestRenderer(output.ModeText, false)
		require.NoError(t, renderHistory(r.Renderer, runs, summary))
		assert.Contains(t, r.Output(), "┌")
		assert.Contains(t, r.Output(), "media.por")
	})

	t.Run("empty", func(t *testing.T) {
		r := testutil.NewTestRenderer(output.ModeText, false)
		require.NoError(t, renderHistory(r.Renderer, nil, &state.Summary{}))
		assert.Contains(t, r.Output(), "Nenhuma execução registrada.")
	})
}

func TestHistory_RecordsRuns(t *testing.T) {
	inProject(t, map[string]string{"echo.por": testutil.EchoProgram, "broken.por": brokenProgram})

	require.NoError(t, execute(t, NewRunCommand(), "5\n", "echo.por", "--mode", "pipe").err)
	require.Error(t, execute(t, NewRunCommand(), "", "broken.por", "--mode", "pipe").err)

	res := execute(t, NewHistoryCommand(), "")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "| echo.por |")
	assert.Contains(t, res.out, "| broken.por |")
	assert.Contains(t, res.out, "2 execuções")
}

func TestHistory_BadLimit(t *testing.T) {
	inProject(t, nil)
	res := execute(t, NewHistoryCommand(), "", "--limit", "0")
	require.Error(t, res.err)
}

func TestWatchProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.por")
	testutil.WriteFile(t, path, "v1")
	testutil.WriteFile(t, filepath.Join(dir, "outro.por"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := watchProgram(ctx, path, 20*time.Millisecond, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Join(dir, "outro.por"), "y")
	testutil.WriteFile(t, path, "v2")

	select {
	case code := <-changes:
		assert.Equal(t, "v2", code)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "changes not closed after cancel")
}
