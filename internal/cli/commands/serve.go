package commands

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/portugo/internal/toolchain"
	"github.com/leapstack-labs/portugo/internal/ui"
)

// serveProgramLabel names runs started from the browser in the history.
const serveProgramLabel = "(navegador)"

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console in the browser",
		Long: `Start a local web server with an editor and an interactive console.

The page runs programs on this machine and streams the console to the
browser as it changes.`,
		Example: `  portugo serve
  portugo serve --addr :3000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Address to listen on (default 127.0.0.1:8765)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	store, closeStore, err := cc.OpenHistory()
	if err != nil {
		return err
	}
	defer closeStore()

	server := ui.NewServer(ui.Config{
		Orchestrator: toolchain.New(cc.Toolchain(store, serveProgramLabel)),
		Store:        store,
		Addr:         cc.Cfg.ServeAddr,
		Logger:       cc.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cc.Renderer.Printf("Console disponível em http://%s\n", cc.Cfg.ServeAddr)
	cc.Renderer.Muted("Ctrl+C para encerrar")
	return server.Serve(ctx)
}
