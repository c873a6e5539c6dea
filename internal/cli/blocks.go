package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"proposal-cli/internal/document"
	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
	"proposal-cli/internal/render"
)

func newBlocksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blocks",
		Aliases: []string{"block"},
		Short:   "Add, order and edit document blocks",
	}
	cmd.AddCommand(newBlocksKindsCmd(app))
	cmd.AddCommand(newBlocksListCmd(app))
	cmd.AddCommand(newBlocksShowCmd(app))
	cmd.AddCommand(newBlocksAddCmd(app))
	cmd.AddCommand(newBlocksMoveCmd(app))
	cmd.AddCommand(newBlocksRemoveCmd(app))
	cmd.AddCommand(newBlocksSetHTMLCmd(app))
	cmd.AddCommand(newBlocksSetTextCmd(app))
	cmd.AddCommand(newBlocksPatchCmd(app))
	cmd.AddCommand(newBlocksStyleCmd(app))
	cmd.AddCommand(newBlocksImageCmd(app))
	return cmd
}

type kindRow struct {
	Kind  model.Kind `json:"kind"`
	Label string     `json:"label"`
}

func newBlocksKindsCmd(app *App) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List block kinds (fuzzy --filter)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := document.FilterKinds(filter)
			out := make([]kindRow, 0, len(kinds))
			for _, k := range kinds {
				out = append(out, kindRow{Kind: k, Label: document.Label(k)})
			}
			return writeData(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Fuzzy filter on kind name or label")
	return cmd
}

type blockRow struct {
	ID       string     `json:"id"`
	Kind     model.Kind `json:"kind"`
	Position int        `json:"position"`
	Summary  string     `json:"summary"`
}

func newBlocksListCmd(app *App) *cobra.Command {
	var brief bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocks in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				blocks := s.doc.Blocks.Ordered()
				if !brief {
					return blocks, nil
				}
				rows := make([]blockRow, 0, len(blocks))
				for _, b := range blocks {
					rows = append(rows, blockRow{ID: b.ID, Kind: b.Kind, Position: b.Position, Summary: render.Summary(b)})
				}
				return rows, nil
			})
		},
	}
	cmd.Flags().BoolVar(&brief, "brief", false, "Only id, kind, position and a text summary")
	return cmd
}

func newBlocksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <block-id>",
		Short: "Show one block (id or unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, app, func(s *session) (any, error) {
				return mutate.Resolve(s.doc.Blocks, args[0])
			})
		},
	}
}

func newBlocksAddCmd(app *App) *cobra.Command {
	var index int
	var after string
	var prepend bool
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a block with default content (appends unless placed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := mutate.Placement{After: after, Prepend: prepend}
			if cmd.Flags().Changed("index") {
				at.Index = &index
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.AddBlock(s.doc, args[0], at)
				if err != nil {
					return nil, err
				}
				return res.Block, nil
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Insert at this position (clamped)")
	cmd.Flags().StringVar(&after, "after", "", "Insert right after this block")
	cmd.Flags().BoolVar(&prepend, "prepend", false, "Insert at the top")
	return cmd
}

func newBlocksMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <block-id> <index>",
		Short: "Move a block to a position (clamped)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid index %q", args[1]))
			}
			return edit(cmd, app, func(s *session) (any, error) {
				return mutate.MoveBlock(s.doc.Blocks, args[0], idx)
			})
		},
	}
}

func newBlocksRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <block-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a block",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.RemoveBlock(s.doc.Blocks, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]any{"id": res.Block.ID, "removed": true}, nil
			})
		},
	}
}

func newBlocksSetHTMLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-html <block-id> <html>",
		Short: "Replace the HTML of a rich text or image-text block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SetHTML(s.doc.Blocks, args[0], args[1])
				return res.Block, err
			})
		},
	}
}

func newBlocksSetTextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-text <block-id> <text>",
		Short: "Replace the text of a text-area block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SetText(s.doc.Blocks, args[0], args[1])
				return res.Block, err
			})
		},
	}
}

func newBlocksPatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patch <block-id> <json-object>",
		Short: "Shallow-merge a JSON object into the block content",
		Example: strings.TrimSpace(`
  proposal blocks patch blk-3k2a '{"imagePosition":"right"}'
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]any
			if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
				return writeErr(cmd, fmt.Errorf("%w: %v", document.ErrInvalidPatch, err))
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.Patch(s.doc.Blocks, args[0], patch)
				return res.Block, err
			})
		},
	}
}

func newBlocksStyleCmd(app *App) *cobra.Command {
	var marginTop, marginBottom, fontSize int
	var monospace, compact bool
	cmd := &cobra.Command{
		Use:   "style <block-id>",
		Short: "Merge style hints into a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var st model.Style
			f := cmd.Flags()
			if f.Changed("margin-top") {
				st.MarginTop = &marginTop
			}
			if f.Changed("margin-bottom") {
				st.MarginBottom = &marginBottom
			}
			if f.Changed("font-size") {
				st.FontSize = &fontSize
			}
			if f.Changed("monospace") {
				st.Monospace = &monospace
			}
			if f.Changed("compact") {
				st.Compact = &compact
			}
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.Style(s.doc.Blocks, args[0], st)
				return res.Block, err
			})
		},
	}
	cmd.Flags().IntVar(&marginTop, "margin-top", 0, "Top margin")
	cmd.Flags().IntVar(&marginBottom, "margin-bottom", 0, "Bottom margin")
	cmd.Flags().IntVar(&fontSize, "font-size", 0, "Font size")
	cmd.Flags().BoolVar(&monospace, "monospace", false, "Monospace text")
	cmd.Flags().BoolVar(&compact, "compact", false, "Compact layout")
	return cmd
}

func newBlocksImageCmd(app *App) *cobra.Command {
	var url, alt, position string
	cmd := &cobra.Command{
		Use:   "image <block-id>",
		Short: "Set the image of an image-text block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, app, func(s *session) (any, error) {
				res, err := mutate.SetImage(s.doc.Blocks, args[0], url, alt, position)
				return res.Block, err
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Image URL")
	cmd.Flags().StringVar(&alt, "alt", "", "Alt text")
	cmd.Flags().StringVar(&position, "position", "", "Image side (left|right)")
	return cmd
}
