package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"proposal-cli/internal/render"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the document",
	}
	cmd.AddCommand(newExportMarkdownCmd(app))
	return cmd
}

type exportResult struct {
	Path      string `json:"path,omitempty"`
	Bytes     int    `json:"bytes"`
	Clipboard bool   `json:"clipboard"`
}

func newExportMarkdownCmd(app *App) *cobra.Command {
	var output string
	var toClipboard bool
	cmd := &cobra.Command{
		Use:     "markdown",
		Aliases: []string{"md"},
		Short:   "Export as Markdown (stdout, --output file, or --clipboard)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			md := render.Markdown(s.doc, render.Options{})
			if output == "" && !toClipboard {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			res := exportResult{Bytes: len(md)}
			if output != "" {
				if dir := filepath.Dir(output); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return writeErr(cmd, err)
					}
				}
				if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
					return writeErr(cmd, err)
				}
				res.Path = output
			}
			if toClipboard {
				if err := clipboard.WriteAll(md); err != nil {
					return writeErr(cmd, fmt.Errorf("copy to clipboard: %w", err))
				}
				res.Clipboard = true
			}
			return writeData(cmd, app, res)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "Copy to the system clipboard")
	return cmd
}
