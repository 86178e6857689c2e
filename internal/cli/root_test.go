package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/portugo/internal/cli/config"
	"github.com/leapstack-labs/portugo/internal/cli/testutil"
)

const loopProgram = `programa {
	funcao inicio() {
		enquanto (verdadeiro) {
		}
	}
}`

func executeRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	cfgFile = ""
	t.Cleanup(config.ResetConfig)

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "run", "check", "transpile", "history", "serve", "completion"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "history", "max-steps", "max-depth", "log-level", "log-format", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCommand_RunThenHistory(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"dobro.por": testutil.EchoProgram})
	t.Chdir(dir)

	out, _, err := executeRoot(t, "4\n", "run", "dobro.por", "--mode", "pipe")
	require.NoError(t, err)
	assert.Contains(t, out, "O dobro é 8\n")
	assert.FileExists(t, dir+"/.portugo/history.db")

	out, _, err = executeRoot(t, "", "history", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Runs []struct {
			Program  string `json:"program"`
			Executed bool   `json:"executed"`
		} `json:"runs"`
		Summary struct {
			Runs int `json:"runs"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Runs, 1)
	assert.Equal(t, "dobro.por", got.Runs[0].Program)
	assert.True(t, got.Runs[0].Executed)
	assert.Equal(t, 1, got.Summary.Runs)
}

func TestRootCommand_MaxStepsFlag(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"laco.por": loopProgram})
	t.Chdir(dir)

	out, _, err := executeRoot(t, "", "--max-steps", "10000", "run", "laco.por", "--mode", "pipe")

	require.Error(t, err)
	assert.Equal(t, "o programa terminou com erro", err.Error())
	assert.Contains(t, out, "limite de passos")
}

func TestRootCommand_MaxStepsFromConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"laco.por": loopProgram})
	testutil.WriteFile(t, dir+"/portugo.yaml", "history_path: \"\"\nmax_steps: 10000\n")
	t.Chdir(dir)

	_, _, err := executeRoot(t, "", "run", "laco.por", "--mode", "pipe")

	require.Error(t, err)
	assert.NoFileExists(t, dir+"/.portugo/history.db")
}

func TestRootCommand_HistoryDisabled(t *testing.T) {
	dir := testutil.SetupTestProject(t, nil)
	t.Chdir(dir)

	_, _, err := executeRoot(t, "", "--history", "", "history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestRootCommand_CheckTextOutput(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"dobro.por": testutil.EchoProgram})
	t.Chdir(dir)

	out, _, err := executeRoot(t, "", "check", "dobro.por", "-o", "text")

	require.NoError(t, err)
	assert.Contains(t, out, "1 arquivo(s) sem problemas")
	testutil.AssertNoANSI(t, out)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t, nil)
	t.Chdir(dir)

	_, _, err := executeRoot(t, "", "--log-level", "loud", "check", "x.por")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCommand_Version(t *testing.T) {
	out, _, err := executeRoot(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "portugo "+Version)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := executeRoot(t, "", "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "portugo")
		})
	}

	_, _, err := executeRoot(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestGetConfig_DefaultsWithoutContext(t *testing.T) {
	cfg := GetConfig(t.Context())
	assert.Equal(t, config.Default(), cfg)
}
