package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proposal-cli/internal/render"
	"proposal-cli/internal/store"
	"proposal-cli/internal/watch"
)

func newPreviewCmd(app *App) *cobra.Command {
	var width int
	var style string
	var raw, follow bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the document for the terminal",
		Long: `Renders the header banner and every block in order. --markdown prints the
Markdown source instead. --watch re-renders whenever another process saves
the workspace (for example the editor running in another terminal).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			if !cmd.Flags().Changed("width") && app.cfg != nil {
				width = app.cfg.Preview.Width
			}
			if !cmd.Flags().Changed("style") && app.cfg != nil && app.cfg.Preview.Style != "" {
				style = app.cfg.Preview.Style
			}
			draw := func(out io.Writer) {
				if raw {
					fmt.Fprint(out, render.Markdown(s.doc, render.Options{}))
					return
				}
				fmt.Fprintln(out, render.Preview(s.doc, render.PreviewOptions{Width: width, Style: style}))
			}

			out := cmd.OutOrStdout()
			draw(out)
			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchAndRedraw(ctx, app, s, func() {
				// Clear screen, cursor home.
				fmt.Fprint(out, "\x1b[2J\x1b[H")
				draw(out)
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().StringVar(&style, "style", "auto", "Glamour style (auto|dark|light|notty|ascii)")
	cmd.Flags().BoolVar(&raw, "markdown", false, "Print Markdown instead of rendering it")
	cmd.Flags().BoolVar(&follow, "watch", false, "Re-render when the workspace changes")
	return cmd
}

// watchAndRedraw reloads the session document on every storage change and
// calls redraw until ctx is done.
func watchAndRedraw(ctx context.Context, app *App, s *session, redraw func()) error {
	changes := make(chan struct{}, 1)
	w := watch.New(s.ws.Dir, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, watch.WithLogger(logger(app)))
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			doc, ok := store.LoadDocument(ctx, s.persist)
			if !ok {
				logger(app).Debug("change seen but no snapshot to load")
				continue
			}
			s.doc = doc
			logger(app).Debug("preview reloaded", zap.Int("blocks", doc.Blocks.Len()))
			redraw()
		}
	}
}
