package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/store"
)

// session is one opened workspace: its storage backend and the document
// restored from the persisted snapshot.
type session struct {
	app      *App
	ws       store.Workspace
	backend  store.Backend
	persist  *store.Persister
	doc      *document.Document
	restored bool
}

// resolveDir picks the workspace directory:
//  1. --dir
//  2. --workspace
//  3. a .proposal directory at or above the cwd
//  4. currentWorkspace from the config file
//  5. the "default" workspace
func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if app.Workspace != "" {
		return store.WorkspaceDir(app.Workspace)
	}
	if cwd, err := os.Getwd(); err == nil {
		if found, ok := store.DiscoverDir(cwd); ok {
			return found, nil
		}
	}
	name := "default"
	if app.cfg != nil && app.cfg.CurrentWorkspace != "" {
		name = app.cfg.CurrentWorkspace
	}
	app.Workspace = name
	return store.WorkspaceDir(name)
}

func backendKind(app *App) string {
	if app.Backend != "" {
		return app.Backend
	}
	if app.cfg != nil {
		return app.cfg.Storage.Backend
	}
	return store.BackendSQLite
}

func openSession(ctx context.Context, app *App) (*session, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	app.Dir = dir
	ws := store.Workspace{Dir: dir}
	b, err := ws.Open(ctx, backendKind(app))
	if err != nil {
		return nil, err
	}
	p := store.NewPersister(b, logger(app))
	doc, restored := store.LoadDocument(ctx, p)
	logger(app).Debug("workspace opened",
		zap.String("dir", dir),
		zap.String("backend", backendKind(app)),
		zap.Bool("restored", restored),
	)
	return &session{app: app, ws: ws, backend: b, persist: p, doc: doc, restored: restored}, nil
}

func (s *session) save(ctx context.Context) error {
	_, err := s.persist.Save(ctx, s.doc.Snapshot())
	return err
}

func (s *session) close() {
	if err := s.backend.Close(); err != nil {
		logger(s.app).Warn("closing storage", zap.Error(err))
	}
}

// view runs fn against the stored document and prints its result.
func view(cmd *cobra.Command, app *App, fn func(s *session) (any, error)) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()
	out, err := fn(s)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeData(cmd, app, out)
}

// edit is view followed by a snapshot save. Nothing is saved when fn fails.
func edit(cmd *cobra.Command, app *App, fn func(s *session) (any, error)) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()
	out, err := fn(s)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := s.save(cmd.Context()); err != nil {
		return writeErr(cmd, errors.Join(errors.New("saving snapshot failed"), err))
	}
	return writeData(cmd, app, out)
}
