package cli

import (
	"context"

	"github.com/spf13/cobra"

	"liveeditor/internal/app"
)

func newSyncCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Propagate the live composition into the tenant document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				doc, err := a.Sync.Sync(ctx)
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, doc)
			})
		},
	}
}
