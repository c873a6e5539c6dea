package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proposal-cli/internal/debounce"
	"proposal-cli/internal/model"
	"proposal-cli/internal/server"
	"proposal-cli/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace document over a local JSON API",
		Long: strings.TrimSpace(`
Serves the document under /api/v1. Edits are autosaved after the editor
debounce window; pending changes are flushed on Ctrl-C.
`),
		Example: strings.TrimSpace(`
# Serve the current workspace on localhost
proposal serve --addr 127.0.0.1:7788

# Add a block over HTTP
curl -X POST localhost:7788/api/v1/blocks -d '{"kind":"rich-text"}'
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && app.cfg != nil && app.cfg.Server.Addr != "" {
				addr = app.cfg.Server.Addr
			}
			if strings.TrimSpace(addr) == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			log := logger(app)
			deb := debounce.New(app.cfg.Debounce())
			defer deb.Stop(false)
			autosave := store.NewAutosaver(s.doc, s.persist, deb, log)
			autosave.OnSave(func(_ model.Snapshot, err error) {
				if err != nil {
					log.Warn("autosave failed", zap.Error(err))
				}
			})
			defer func() {
				if err := autosave.Close(); err != nil {
					log.Warn("final save failed", zap.Error(err))
				}
			}()

			srv := server.NewServer(s.doc, s.persist, autosave, addr, log)

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      addr,
					"url":       "http://" + addr + "/api/v1",
					"dir":       app.Dir,
					"backend":   backendKind(app),
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"Ctrl-C to stop"},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "proposal API running at http://%s/api/v1 (dir=%s)\n", addr, app.Dir)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if err != nil {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				return writeErr(cmd, err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7788", "Bind address (host:port or :port)")
	return cmd
}
