package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"liveeditor/internal/app"
	"liveeditor/internal/config"
	"liveeditor/internal/logging"
)

type Options struct {
	Config     config.Config
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	opts := &Options{Config: config.Load()}
	cfg := &opts.Config

	cmd := &cobra.Command{
		Use:          "liveeditor",
		Short:        "Headless page composition engine: drag pipeline and theme switching",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// db and themes follow --data-dir unless pinned by flag or env.
			flags := cmd.Flags()
			if !flags.Changed("data-dir") {
				return nil
			}
			if !flags.Changed("db") && os.Getenv("LIVEEDITOR_DB_PATH") == "" {
				cfg.DBPath = filepath.Join(cfg.DataDir, "liveeditor.db")
			}
			if !flags.Changed("themes") && os.Getenv("LIVEEDITOR_THEMES_DIR") == "" {
				cfg.ThemesDir = filepath.Join(cfg.DataDir, "themes")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory (or set LIVEEDITOR_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	cmd.PersistentFlags().StringVar(&cfg.Tenant, "tenant", cfg.Tenant, "Tenant id")
	cmd.PersistentFlags().StringVar(&cfg.ThemesDir, "themes", cfg.ThemesDir, "Directory of theme<N>.json|yaml definitions")
	cmd.PersistentFlags().StringVar(&cfg.DocumentBackend, "documents", cfg.DocumentBackend, "Tenant document backend (sqlite|mongo)")
	cmd.PersistentFlags().StringVar(&cfg.BackupBackend, "backups", cfg.BackupBackend, "Theme backup backend (sqlite|redis)")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	cmd.PersistentFlags().BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "Human-readable logs")
	cmd.PersistentFlags().BoolVar(&opts.PrettyJSON, "pretty", envOr("LIVEEDITOR_PRETTY", "") == "1", "Pretty-print JSON output")

	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newPageCmd(opts))
	cmd.AddCommand(newThemeCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (o *Options) logger() zerolog.Logger {
	return logging.New(logging.Options{Level: o.Config.LogLevel, Pretty: o.Config.LogPretty})
}

// withApp opens a session, runs fn and closes the session.
func withApp(cmd *cobra.Command, opts *Options, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, opts.Config, opts.logger())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer a.Close(ctx)
	if err := fn(ctx, a); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func writeOut(cmd *cobra.Command, opts *Options, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func parseTheme(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("theme must be a positive number, got %q", arg)
	}
	return n, nil
}
