package cli

import (
	"github.com/spf13/cobra"

	"proposal-cli/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive editor (same as running with no command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()

	opt := tui.Options{
		Workspace: s.ws,
		Doc:       s.doc,
		Persist:   s.persist,
		Logger:    logger(app),
	}
	if app.cfg != nil {
		opt.Debounce = app.cfg.Debounce()
		opt.PreviewStyle = app.cfg.Preview.Style
	}
	if err := tui.Run(opt); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
