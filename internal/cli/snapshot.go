package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"proposal-cli/internal/store"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect, rewrite or clear the persisted snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored snapshot as-is (null when none is stored)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				raw, err := s.persist.Raw(cmd.Context())
				if errors.Is(err, store.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return json.RawMessage(raw), nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Rewrite the snapshot from the restored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				return map[string]any{"restored": s.restored, "blocks": s.doc.Blocks.Len()}, nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the stored snapshot; the next run starts from defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				s.persist.Clear(cmd.Context())
				return map[string]any{"key": store.SnapshotKey, "cleared": true}, nil
			})
		},
	})
	return cmd
}

func newOverviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Status, project name, fee structure and amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				return overviewOf(s), nil
			})
		},
	}
}
