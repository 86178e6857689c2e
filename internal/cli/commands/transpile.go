package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/portugo/internal/starlark"
	"github.com/leapstack-labs/portugo/internal/toolchain"
)

// TranspileOptions holds options for the transpile command.
type TranspileOptions struct {
	Serialized string
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand() *cobra.Command {
	opts := &TranspileOptions{}

	cmd := &cobra.Command{
		Use:   "transpile <file>",
		Short: "Print the Starlark generated for a program",
		Long: `Compile a Portugol program and print the generated Starlark code.

With --serialized the compiled Starlark program is also written to a file
that 'portugo run --compiled' can run without the source.`,
		Example: `  # Show the generated code
  portugo transpile media.por

  # Save the compiled program
  portugo transpile media.por --serialized media.starc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Serialized, "serialized", "", "Write the compiled program to this file")

	return cmd
}

func runTranspile(cmd *cobra.Command, path string, opts *TranspileOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	code, err := readProgram(cmd, path)
	if err != nil {
		return err
	}

	req := toolchain.Pipeline(cc.Logger).Compile(code)
	if len(req.SyntaxDiagnostics) > 0 {
		for _, d := range req.SyntaxDiagnostics {
			r.Error(d.String())
		}
		return fmt.Errorf("%s tem erros de sintaxe", path)
	}
	for _, d := range req.SemanticDiagnostics {
		r.Warning(d.String())
	}
	if req.GeneratedCode == "" {
		return fmt.Errorf("failed to generate code for %s", path)
	}

	r.Printf("%s", req.GeneratedCode)

	if opts.Serialized == "" {
		return nil
	}
	runner, err := starlark.New(req.GeneratedCode, starlark.WithLogger(cc.Logger))
	if err != nil {
		return fmt.Errorf("failed to compile generated code: %w", err)
	}
	defer runner.Destroy()

	if err := os.WriteFile(opts.Serialized, runner.Serialized(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Serialized, err)
	}
	cc.Logger.Debug("wrote compiled program", "file", opts.Serialized)
	return nil
}
