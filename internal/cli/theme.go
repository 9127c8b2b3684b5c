package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"liveeditor/internal/app"
)

func newThemeCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "theme", Aliases: []string{"themes"}, Short: "Switch, reset and inspect themes"}
	cmd.AddCommand(newThemeListCmd(opts))
	cmd.AddCommand(newThemeSwitchCmd(opts))
	cmd.AddCommand(newThemeResetCmd(opts))
	cmd.AddCommand(newThemeBackupsCmd(opts))
	return cmd
}

func newThemeListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				return writeOut(cmd, opts, map[string]any{
					"active": a.Editor.ActiveTheme(),
					"themes": a.Catalog.Numbers(),
				})
			})
		},
	}
}

func newThemeSwitchCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <theme>",
		Short: "Switch theme, backing up the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseTheme(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				res, err := a.Themes.Switch(ctx, n)
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, res)
			})
		},
	}
}

func newThemeResetCmd(opts *Options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset <theme>",
		Short: "Reset a theme to factory defaults and delete its backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseTheme(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				return writeErr(cmd, fmt.Errorf("reset discards the edits of theme %d; pass --yes to confirm", n))
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				res, err := a.Themes.ResetToDefaults(ctx, n)
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, res)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func newThemeBackupsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List stored theme backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				keys, err := a.Backups.ListBackups(ctx, a.Editor.TenantID())
				if err != nil {
					return err
				}
				return writeOut(cmd, opts, keys)
			})
		},
	}
}
