// Package server exposes the workspace document over a local JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/store"
)

// Server serves one document. Mutations go through the document store, so the
// attached autosaver persists them after the debounce window.
type Server struct {
	doc      *document.Document
	persist  *store.Persister
	autosave *store.Autosaver
	addr     string
	logger   *zap.Logger
	server   *http.Server
}

func NewServer(doc *document.Document, p *store.Persister, a *store.Autosaver, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{doc: doc, persist: p, autosave: a, addr: addr, logger: logger}
}

// Router builds the route table; tests drive it through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)

		r.Get("/blocks", s.handleListBlocks)
		r.Post("/blocks", s.handleAddBlock)
		r.Route("/blocks/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetBlock)
			r.Delete("/", s.handleRemoveBlock)
			r.Post("/move", s.handleMoveBlock)
			r.Patch("/content", s.handlePatchContent)
			r.Patch("/style", s.handleStyle)
			r.Put("/structure", s.handleStructure)
			r.Get("/totals", s.handleTotals)
		})

		r.Get("/config", s.handleGetConfig)
		r.Patch("/config", s.handlePatchConfig)
		r.Get("/header", s.handleGetHeader)
		r.Patch("/header", s.handlePatchHeader)
		r.Get("/overview", s.handleOverview)
		r.Get("/preview.md", s.handlePreviewMarkdown)

		r.Get("/snapshot", s.handleGetSnapshot)
		r.Post("/snapshot/save", s.handleSaveSnapshot)
		r.Delete("/snapshot", s.handleClearSnapshot)
	})
	return r
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", s.addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the listener down and flushes any pending autosave.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if s.autosave != nil {
		s.autosave.Flush()
	}
	return err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
