package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/portugo/internal/cli/output"
	"github.com/leapstack-labs/portugo/internal/toolchain"
	"github.com/leapstack-labs/portugo/pkg/diag"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Format string
}

// FileReport is the result of checking one file.
type FileReport struct {
	File     string            `json:"file" yaml:"file"`
	Errors   []diag.Diagnostic `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []diag.Diagnostic `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report syntax errors and warnings without running",
		Long: `Parse and check Portugol programs and report their diagnostics.

Syntax errors prevent a program from running and make the command fail.
Semantic problems, such as undeclared variables or mismatched types, are
reported as warnings.`,
		Example: `  # Check a program
  portugo check media.por

  # Check several programs, as YAML
  portugo check exercicios/*.por --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "", "Report format (yaml|json); defaults to the output mode")

	return cmd
}

func runCheck(cmd *cobra.Command, files []string, opts *CheckOptions) error {
	cc := NewCommandContext(cmd)

	reports, err := checkFiles(cmd.Context(), cmd, files, cc)
	if err != nil {
		return err
	}

	format := strings.ToLower(opts.Format)
	if format == "" && cc.Renderer.EffectiveMode() == output.ModeJSON {
		format = "json"
	}
	switch format {
	case "json":
		if err := cc.Renderer.JSON(reports); err != nil {
			return err
		}
	case "yaml":
		data, err := yaml.Marshal(reports)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		cc.Renderer.Printf("%s", data)
	case "":
		renderReports(cc.Renderer, reports)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", opts.Format)
	}

	failed := 0
	for _, r := range reports {
		if len(r.Errors) > 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d arquivo(s) com erros de sintaxe", failed)
	}
	return nil
}

// checkFiles compiles files concurrently. Reports keep the order of files.
func checkFiles(ctx context.Context, cmd *cobra.Command, files []string, cc *CommandContext) ([]FileReport, error) {
	reports := make([]FileReport, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := readProgram(cmd, file)
			if err != nil {
				return err
			}
			req := toolchain.Pipeline(cc.Logger).Compile(code)
			reports[i] = FileReport{
				File:     file,
				Errors:   req.SyntaxDiagnostics,
				Warnings: req.SemanticDiagnostics,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func renderReports(r *output.Renderer, reports []FileReport) {
	var errs, warns int
	for _, rep := range reports {
		errs += len(rep.Errors)
		warns += len(rep.Warnings)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		for _, rep := range reports {
			if len(rep.Errors)+len(rep.Warnings) == 0 {
				continue
			}
			r.Header(2, rep.File)
			for _, d := range rep.Errors {
				r.Printf("- **erro** linha %d, posição %d: %s\n", d.Line, d.Column, d.Message)
			}
			for _, d := range rep.Warnings {
				r.Printf("- aviso linha %d, posição %d: %s\n", d.Line, d.Column, d.Message)
			}
			r.Println()
		}
		r.Printf("%d arquivo(s), %d erro(s), %d aviso(s)\n", len(reports), errs, warns)
		return
	}

	styles := r.Styles()
	for _, rep := range reports {
		if len(rep.Errors)+len(rep.Warnings) == 0 {
			continue
		}
		r.Println(styles.ModelPath.Render(rep.File))
		for _, d := range rep.Errors {
			r.Printf("  %s  %s  %s\n", styles.Muted.Render(location(d)), styles.Error.Render("erro "), d.Message)
		}
		for _, d := range rep.Warnings {
			r.Printf("  %s  %s  %s\n", styles.Muted.Render(location(d)), styles.Warning.Render("aviso"), d.Message)
		}
		r.Println()
	}

	if errs+warns == 0 {
		r.Success(fmt.Sprintf("%d arquivo(s) sem problemas", len(reports)))
		return
	}
	r.Println(styles.Bold.Render(fmt.Sprintf("%d erro(s), %d aviso(s)", errs, warns)))
}

func location(d diag.Diagnostic) string {
	return fmt.Sprintf("%4d:%-3d", d.Line, d.Column)
}
