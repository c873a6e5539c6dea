package cli

import (
	"github.com/spf13/cobra"

	"proposal-cli/internal/config"
	"proposal-cli/internal/store"
)

func newWorkspaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Named workspaces under the config dir",
	}
	cmd.AddCommand(newWorkspaceListCmd(app))
	cmd.AddCommand(newWorkspaceUseCmd(app))
	cmd.AddCommand(newWorkspaceCurrentCmd(app))
	return cmd
}

func newWorkspaceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.ListWorkspaces()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, names)
		},
	}
}

func newWorkspaceUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, err := store.WorkspaceDir(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := (store.Workspace{Dir: dir}).Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg.CurrentWorkspace = name
			if err := config.Save(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]string{"workspace": name, "dir": dir})
		},
	}
}

func newWorkspaceCurrentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show which workspace directory commands will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]string{
				"workspace": app.Workspace,
				"dir":       dir,
				"backend":   backendKind(app),
				"config":    app.cfg.Path(),
			})
		},
	}
}
