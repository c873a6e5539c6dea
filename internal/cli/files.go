package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
	"proposal-cli/internal/store"
)

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files-and-attachments blocks",
	}
	cmd.AddCommand(newFilesAddCmd(app))
	cmd.AddCommand(newFilesRenameCmd(app))
	cmd.AddCommand(newFilesRemoveCmd(app))
	cmd.AddCommand(newFilesTitleCmd(app))
	cmd.AddCommand(newFilesDescriptionCmd(app))
	return cmd
}

func newFilesAddCmd(app *App) *cobra.Command {
	var maxBytes int64
	cmd := &cobra.Command{
		Use:   "add <block-id> <path>...",
		Short: "Copy files into the workspace and attach them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				// Resolve first so nothing is copied for a bad block id.
				b, err := mutate.Resolve(s.doc.Blocks, args[0])
				if err != nil {
					return nil, err
				}
				if b.Kind != model.KindFilesAndAttachments {
					return nil, mutate.WrongKindError{ID: b.ID, Got: b.Kind, Want: string(model.KindFilesAndAttachments)}
				}
				var res mutate.Result
				for _, path := range args[1:] {
					f, err := s.ws.ImportAttachment(path, maxBytes)
					if err != nil {
						return nil, err
					}
					res, err = mutate.AddFile(s.doc.Blocks, b.ID, f)
					if err != nil {
						return nil, err
					}
					logger(app).Info("file attached",
						zap.String("block", b.ID),
						zap.String("file", f.ID),
						zap.Int64("size", f.Size),
					)
				}
				return res.Block, nil
			})
		},
	}
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", store.DefaultAttachmentMaxBytes, "Reject files larger than this")
	return cmd
}

func newFilesRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <block-id> <file-id> <name>",
		Short: "Rename an attachment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.RenameFile(s.doc.Blocks, args[0], args[1], args[2])
				return res.Block, err
			})
		},
	}
}

func newFilesRemoveCmd(app *App) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:     "remove <block-id> <file-id>",
		Aliases: []string{"rm"},
		Short:   "Detach a file and delete its workspace copy",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, removed, err := mutate.RemoveFile(s.doc.Blocks, args[0], args[1])
				if err != nil {
					return nil, err
				}
				if !keep {
					if err := s.ws.RemoveAttachment(removed); err != nil {
						logger(app).Warn("removing attachment copy", zap.String("file", removed.ID), zap.Error(err))
					}
				}
				return res.Block, nil
			})
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the copied file on disk")
	return cmd
}

func newFilesTitleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "title <block-id> <title>",
		Short: "Set the block title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SetFilesTitle(s.doc.Blocks, args[0], args[1])
				return res.Block, err
			})
		},
	}
}

func newFilesDescriptionCmd(app *App) *cobra.Command {
	var clear, hide bool
	cmd := &cobra.Command{
		Use:   "description <block-id> [text]",
		Short: "Set, hide or clear the block description",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				b, err := mutate.Resolve(s.doc.Blocks, args[0])
				if err != nil {
					return nil, err
				}
				var desc *string
				if c, ok := b.Content.(*model.Files); ok {
					desc = c.Description
				}
				if len(args) == 2 {
					text := args[1]
					desc = &text
				}
				if clear {
					desc = nil
				}
				res, err := mutate.SetFilesDescription(s.doc.Blocks, b.ID, desc, !hide && desc != nil)
				return res.Block, err
			})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the description")
	cmd.Flags().BoolVar(&hide, "hide", false, "Keep the description but do not show it")
	return cmd
}
