package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"proposal-cli/internal/document"
	"proposal-cli/internal/fee"
	"proposal-cli/internal/model"
	"proposal-cli/internal/mutate"
	"proposal-cli/internal/render"
)

type envelope struct {
	Data any `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type kindInfo struct {
	Kind  model.Kind `json:"kind"`
	Label string     `json:"label"`
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	kinds := document.FilterKinds(r.URL.Query().Get("filter"))
	out := make([]kindInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, kindInfo{Kind: k, Label: document.Label(k)})
	}
	s.respondData(w, http.StatusOK, out)
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, s.doc.Blocks.Ordered())
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	b, err := mutate.Resolve(s.doc.Blocks, chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, b)
}

type addBlockRequest struct {
	Kind    string `json:"kind"`
	Index   *int   `json:"index,omitempty"`
	After   string `json:"after,omitempty"`
	Prepend bool   `json:"prepend,omitempty"`
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := mutate.AddBlock(s.doc, req.Kind, mutate.Placement{Index: req.Index, After: req.After, Prepend: req.Prepend})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.logger.Debug("block added", zap.String("id", res.Block.ID), zap.String("kind", string(res.Block.Kind)))
	s.respondData(w, http.StatusCreated, res.Block)
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	res, err := mutate.RemoveBlock(s.doc.Blocks, chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, map[string]string{"id": res.Block.ID, "status": "removed"})
}

type moveRequest struct {
	Index *int `json:"index"`
}

func (s *Server) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		s.respondError(w, http.StatusBadRequest, "index is required")
		return
	}
	res, err := mutate.MoveBlock(s.doc.Blocks, chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, res)
}

func (s *Server) handlePatchContent(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !s.decode(w, r, &patch) {
		return
	}
	res, err := mutate.Patch(s.doc.Blocks, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, res.Block)
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	var st model.Style
	if !s.decode(w, r, &st) {
		return
	}
	res, err := mutate.Style(s.doc.Blocks, chi.URLParam(r, "id"), st)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, res.Block)
}

type structureRequest struct {
	Structure string `json:"structure"`
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req structureRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := model.ParseFeeStructure(req.Structure)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	res, err := mutate.SetStructure(s.doc.Blocks, chi.URLParam(r, "id"), st)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, res.Block)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	t, err := mutate.Totals(s.doc.Blocks, chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondData(w, http.StatusOK, t)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, s.doc.Config())
}

// configPatch mirrors DocumentConfig with optional fields. Migrate rewrites
// every fee block when the default structure changes.
type configPatch struct {
	Currency         *string  `json:"currency,omitempty"`
	DefaultStructure *string  `json:"defaultStructure,omitempty"`
	RequireUpfront   *bool    `json:"requireUpfront,omitempty"`
	UpfrontPercent   *float64 `json:"upfrontPercent,omitempty"`
	ExpirationDate   *string  `json:"expirationDate,omitempty"`
	Migrate          bool     `json:"migrate,omitempty"`
}

func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var p configPatch
	if !s.decode(w, r, &p) {
		return
	}
	// Validate everything before touching the document.
	var structure model.FeeStructure
	if p.DefaultStructure != nil {
		st, err := model.ParseFeeStructure(*p.DefaultStructure)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		structure = st
	}
	if p.Currency != nil {
		if _, err := document.ParseCurrency(*p.Currency); err != nil {
			s.respondErr(w, err)
			return
		}
	}
	if p.ExpirationDate != nil {
		if err := document.ValidateDate(*p.ExpirationDate); err != nil {
			s.respondErr(w, err)
			return
		}
	}

	if p.Currency != nil {
		_ = s.doc.SetCurrency(*p.Currency)
	}
	if p.ExpirationDate != nil {
		_ = s.doc.SetExpirationDate(*p.ExpirationDate)
	}
	if p.RequireUpfront != nil {
		s.doc.SetRequireUpfront(*p.RequireUpfront)
	}
	if p.UpfrontPercent != nil {
		s.doc.SetUpfrontPercent(*p.UpfrontPercent)
	}
	migrated := 0
	if p.DefaultStructure != nil {
		s.doc.SetDefaultStructure(structure)
		if p.Migrate {
			migrated = document.MigrateAllFeeBlocks(s.doc.Blocks, structure)
		}
	}
	s.respondData(w, http.StatusOK, map[string]any{"config": s.doc.Config(), "migrated": migrated})
}

func (s *Server) handleGetHeader(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, map[string]any{"header": s.doc.Header(), "style": s.doc.HeaderStyle()})
}

type headerPatch struct {
	Fields map[string]string `json:"fields,omitempty"`
	Theme  string            `json:"theme,omitempty"`
}

func (s *Server) handlePatchHeader(w http.ResponseWriter, r *http.Request) {
	var p headerPatch
	if !s.decode(w, r, &p) {
		return
	}
	// Validate everything before touching the document.
	if p.Theme != "" {
		if err := document.ValidateTheme(p.Theme); err != nil {
			s.respondErr(w, err)
			return
		}
	}
	for field := range p.Fields {
		if err := document.ValidateHeaderField(field); err != nil {
			s.respondErr(w, err)
			return
		}
	}

	if p.Theme != "" {
		_ = s.doc.ApplyTheme(p.Theme)
	}
	for field, value := range p.Fields {
		_ = s.doc.SetHeaderField(field, value)
	}
	s.respondData(w, http.StatusOK, map[string]any{"header": s.doc.Header(), "style": s.doc.HeaderStyle()})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, document.BuildOverview(s.doc))
}

func (s *Server) handlePreviewMarkdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.Markdown(s.doc, render.Options{})))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, s.doc.Snapshot())
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.persist == nil {
		s.respondError(w, http.StatusNotImplemented, "persistence not configured")
		return
	}
	snap, err := s.persist.Save(r.Context(), s.doc.Snapshot())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondData(w, http.StatusOK, map[string]any{"savedAt": snap.SavedAt, "version": snap.Version})
}

func (s *Server) handleClearSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.persist == nil {
		s.respondError(w, http.StatusNotImplemented, "persistence not configured")
		return
	}
	s.persist.Clear(r.Context())
	s.respondData(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+strings.TrimPrefix(err.Error(), "json: "))
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var nf mutate.NotFoundError
	var wk mutate.WrongKindError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &wk),
		errors.Is(err, document.ErrInvalidPatch),
		errors.Is(err, document.ErrKindMismatch),
		errors.Is(err, document.ErrIDCollision),
		errors.Is(err, document.ErrInvalidCurrency),
		errors.Is(err, document.ErrInvalidDate),
		errors.Is(err, document.ErrUnknownField),
		errors.Is(err, document.ErrUnknownTheme),
		errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrInvalidStructure),
		errors.Is(err, fee.ErrOptionIndex),
		errors.Is(err, fee.ErrItemIndex),
		errors.Is(err, mutate.ErrPlacement):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondData(w http.ResponseWriter, status int, data any) {
	s.respondJSON(w, status, envelope{Data: data})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
