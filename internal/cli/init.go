package cli

import (
	"github.com/spf13/cobra"

	"proposal-cli/internal/config"
	"proposal-cli/internal/document"
	"proposal-cli/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var local bool
	var empty bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace and its first snapshot",
		Long: `Creates the workspace directory and storage. A workspace without a saved
snapshot gets the starter blocks (a welcome note, a fee summary and terms)
unless --empty is given. An existing snapshot is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local && app.Dir == "" {
				dir, err := store.DefaultDir()
				if err != nil {
					return writeErr(cmd, err)
				}
				app.Dir = dir
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			created := false
			if !s.restored {
				if !empty {
					for _, nb := range document.StarterBlocks(s.doc.Config()) {
						if _, err := s.doc.Blocks.AddBlock(nb); err != nil {
							return writeErr(cmd, err)
						}
					}
				}
				if err := s.save(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				created = true
			}

			// In workspace mode with no current workspace yet, remember this one.
			if app.Workspace != "" && app.cfg != nil && app.cfg.CurrentWorkspace == "" {
				app.cfg.CurrentWorkspace = app.Workspace
				_ = config.Save(app.cfg)
			}

			return writeData(cmd, app, map[string]any{
				"dir":        app.Dir,
				"backend":    backendKind(app),
				"documentId": s.doc.ID,
				"created":    created,
				"blocks":     s.doc.Blocks.Len(),
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Create ./.proposal in the current directory")
	cmd.Flags().BoolVar(&empty, "empty", false, "Start without starter blocks")
	return cmd
}
