package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cognicore/habitual/pkg/habitual/analytics"
	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/classify"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/recommend"
	"github.com/cognicore/habitual/pkg/habitual/store"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// Handler serves the HTTP endpoints.
type Handler struct {
	engine    *recommend.Engine
	store     store.Store
	tokenizer vectorize.Tokenizer
	started   time.Time
}

// NewHandler wires handlers to an engine and its history store.
// st may be nil, in which case the history endpoints answer 503.
func NewHandler(engine *recommend.Engine, st store.Store, tok vectorize.Tokenizer) *Handler {
	return &Handler{
		engine:    engine,
		store:     st,
		tokenizer: tok,
		started:   time.Now(),
	}
}

// RecommendResponse is the body of a successful recommend call. Only
// Suggestion is set unless the caller asked for an explanation.
type RecommendResponse struct {
	Suggestion       string                   `json:"suggestion"`
	ID               string                   `json:"id,omitempty"`
	Strategy         string                   `json:"strategy,omitempty"`
	DominantCategory string                   `json:"dominant_category,omitempty"`
	NextCategory     string                   `json:"next_category,omitempty"`
	CategoryScores   []classify.CategoryScore `json:"category_scores,omitempty"`
	Pool             []string                 `json:"pool,omitempty"`
}

// Recommend handles POST /recommend and POST /api/v1/recommend.
//
// Body: {"habits": ["...", ...]}. A missing key or an empty body means no
// habits. Add ?explain=true to get the decision details.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds 64 KiB", err)
			return
		}
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "failed to read request body", err)
		return
	}

	var body struct {
		Habits interface{} `json:"habits"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object", err)
			return
		}
	}

	habits, err := recommend.ParseHabits(body.Habits)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), err)
		return
	}
	if err := validateRequest(&recommendRequest{Habits: habits}); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{Habits: habits})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	explain, _ := strconv.ParseBool(r.URL.Query().Get("explain"))
	respondJSON(w, http.StatusOK, NewRecommendResponse(resp, explain))
}

// NewRecommendResponse shapes an engine response for output. Without
// explain only the suggestion is kept.
func NewRecommendResponse(resp recommend.Response, explain bool) RecommendResponse {
	out := RecommendResponse{Suggestion: resp.Suggestion}
	if explain {
		out.ID = resp.ID
		out.Strategy = string(resp.Strategy)
		out.DominantCategory = resp.Dominant
		out.NextCategory = resp.Next
		out.CategoryScores = resp.Scores
		out.Pool = resp.Pool
	}
	return out
}

func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, internalerr.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), err)
	case errors.Is(err, internalerr.ErrConfiguration):
		respondError(w, r, http.StatusInternalServerError, "CONFIGURATION_ERROR", "engine is misconfigured", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "recommendation failed", err)
	}
}

// Catalog handles GET /api/v1/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	respondJSON(w, http.StatusOK, struct {
		Categories []catalog.Category `json:"categories"`
	}{Categories: cat.Categories()})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	q, ok := h.historyQuery(w, r)
	if !ok {
		return
	}
	snap, err := analytics.AnalyzeStore(r.Context(), h.store, h.tokenizer, q)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "failed to read history", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Suggestions handles GET /api/v1/suggestions.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q, ok := h.historyQuery(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListSuggestions(r.Context(), q)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "failed to read history", err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Suggestions []store.Suggestion `json:"suggestions"`
	}{Suggestions: list})
}

// Suggestion handles GET /api/v1/suggestions/{id}.
func (h *Handler) Suggestion(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NO_HISTORY", "suggestion history is disabled", nil)
		return
	}
	sg, err := h.store.GetSuggestion(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, internalerr.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "no such suggestion", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "failed to read history", err)
		return
	}
	respondJSON(w, http.StatusOK, sg)
}

// historyQuery parses and validates limit, strategy and since.
func (h *Handler) historyQuery(w http.ResponseWriter, r *http.Request) (store.ListQuery, bool) {
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NO_HISTORY", "suggestion history is disabled", nil)
		return store.ListQuery{}, false
	}

	params := r.URL.Query()
	req := statsRequest{
		Strategy: params.Get("strategy"),
		Since:    params.Get("since"),
	}
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", err)
			return store.ListQuery{}, false
		}
		req.Limit = n
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return store.ListQuery{}, false
	}

	q := store.ListQuery{Limit: req.Limit, Strategy: req.Strategy}
	if req.Since != "" {
		// Already checked by the datetime tag.
		q.Since, _ = time.Parse(time.RFC3339, req.Since)
	}
	return q, true
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.store != nil {
		if _, err := h.store.CountSuggestions(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]interface{}{
		"status":     status,
		"categories": h.engine.Catalog().Len(),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
	})
}
