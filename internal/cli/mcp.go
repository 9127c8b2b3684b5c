package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"liveeditor/internal/app"
)

func newMCPCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the editor as an MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return a.ServeMCP(ctx)
			})
		},
	}
}
