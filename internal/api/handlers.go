package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/catalog"
	"github.com/gamesforgood/catalog/internal/domain"
	"github.com/gamesforgood/catalog/internal/export"
	"github.com/gamesforgood/catalog/internal/ingestion"
	"github.com/gamesforgood/catalog/internal/ranking"
)

// Handlers bundles the HTTP endpoints over the application services.
type Handlers struct {
	catalog  *catalog.Service
	ranker   *ranking.Ranker
	exporter *export.Service
	importer *ingestion.Service
	logger   zerolog.Logger
}

// NewHandlers creates the endpoint set.
func NewHandlers(svc *catalog.Service, ranker *ranking.Ranker, exporter *export.Service, importer *ingestion.Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		catalog:  svc,
		ranker:   ranker,
		exporter: exporter,
		importer: importer,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListGames serves the public gallery: filtered, sorted, paginated games
// with the total match count.
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	query, err := parseGameQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.catalog.Query(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var game domain.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "body", Value: err.Error()})
		return
	}
	created, err := h.catalog.CreateGame(r.Context(), game)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var game domain.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "body", Value: err.Error()})
		return
	}
	game.ID = id
	updated, err := h.catalog.UpdateGame(r.Context(), game)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.catalog.DeleteGame(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type replaceTagsRequest struct {
	Type string   `json:"type"`
	Tags []string `json:"tags"`
}

// ReplaceGameTags swaps a game's tags of one type, keeping the other type
// untouched.
func (h *Handlers) ReplaceGameTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req replaceTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "body", Value: err.Error()})
		return
	}
	tagType, ok := domain.ParseTagType(req.Type)
	if !ok {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "type", Value: req.Type})
		return
	}

	updated, err := h.catalog.ReplaceTags(r.Context(), id, req.Tags, tagType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.catalog.ListThemes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if themes == nil {
		themes = []domain.Theme{}
	}
	writeJSON(w, http.StatusOK, themes)
}

func (h *Handlers) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "name", Value: req.Name})
		return
	}
	theme, err := h.catalog.CreateTheme(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

func (h *Handlers) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.catalog.DeleteTheme(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "name", Value: req.Name})
		return
	}
	tagType, ok := domain.ParseTagType(req.Type)
	if !ok {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "type", Value: req.Type})
		return
	}
	tag, err := h.catalog.CreateTag(r.Context(), req.Name, tagType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.catalog.DeleteTag(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GameNames serves the admin name directory used for analytics joins.
func (h *Handlers) GameNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.GameNames(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// ExportGames streams the filtered catalog as CSV.
func (h *Handlers) ExportGames(w http.ResponseWriter, r *http.Request) {
	query, err := parseGameQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Exports always cover the full result set.
	query.Page = nil

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="games.csv"`)
	if _, err := h.exporter.Write(r.Context(), w, query); err != nil {
		h.logger.Error().Err(err).Msg("export aborted mid-stream")
	}
}

// ImportGames ingests a CSV or XLSX upload of games.
func (h *Handlers) ImportGames(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, &domain.InvalidFilterValueError{Field: "file", Value: "missing upload"})
		return
	}
	defer file.Close()

	report, err := h.importer.Import(r.Context(), file, header.Filename)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RecomputePopularity triggers a popularity recompute run. A run already
// in flight yields 409.
func (h *Handlers) RecomputePopularity(w http.ResponseWriter, r *http.Request) {
	if err := h.ranker.Recompute(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &domain.InvalidFilterValueError{Field: "id", Value: raw}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var filterErr *domain.InvalidFilterValueError
	var upstreamErr *domain.UpstreamError
	switch {
	case errors.As(err, &filterErr), domain.IsReferenceNotFound(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGameExists), errors.Is(err, domain.ErrRecomputeInProgress):
		status = http.StatusConflict
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%v", err)})
}
