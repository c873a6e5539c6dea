package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proposal-cli/internal/config"
	"proposal-cli/internal/format"
	"proposal-cli/internal/logging"
)

type App struct {
	Dir        string
	Workspace  string
	Backend    string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "proposal",
		Short:        "Build proposals and invoices from ordered blocks (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  proposal

  # Create a workspace with starter blocks in ./.proposal
  proposal --dir .proposal init

  # Add a fee summary after an existing block
  proposal blocks add fee-summary --after blk-3k2a

  # Render the document
  proposal preview --width 100
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		level := app.LogLevel
		if level == "" {
			level = cfg.Logging.Level
		}
		log, err := logging.New(level, cfg.Logging.Debug)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PROPOSAL_DIR", ""), "Workspace directory (overrides --workspace and .proposal discovery)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("PROPOSAL_WORKSPACE", ""), "Named workspace under the config dir")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("PROPOSAL_BACKEND", ""), "Storage backend (sqlite|bolt|file; default from config)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("PROPOSAL_LOG_LEVEL", ""), "Log level for stderr (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROPOSAL_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newBlocksCmd(app))
	cmd.AddCommand(newFeesCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newHeaderCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newOverviewCmd(app))
	cmd.AddCommand(newPreviewCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func logger(app *App) *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeData(cmd *cobra.Command, app *App, v any) error {
	return writeOut(cmd, app, map[string]any{"data": v})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
