package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
)

// RatingReader is the read side of the rating aggregator
type RatingReader interface {
	Average(ctx context.Context, staffID string) (domain.StaffAverage, bool, error)
	Ranking(ctx context.Context, topN int) ([]domain.StaffAverage, error)
}

// SuggestionReader is the read side of the suggestion box
type SuggestionReader interface {
	List(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, error)
}

// APIHandler serves the read-only bot API
type APIHandler struct {
	ratings     RatingReader
	suggestions SuggestionReader
	log         logger.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(ratings RatingReader, suggestions SuggestionReader, log logger.Logger) *APIHandler {
	return &APIHandler{ratings: ratings, suggestions: suggestions, log: log}
}

// RegisterRoutes registers API routes
func (h *APIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/staff/ranking", h.StaffRanking).Methods("GET")
	router.HandleFunc("/staff/{id}/average", h.StaffAverage).Methods("GET")
	router.HandleFunc("/suggestions", h.ListSuggestions).Methods("GET")
}

// StaffRanking handles GET /api/v1/staff/ranking?top=N
func (h *APIHandler) StaffRanking(w http.ResponseWriter, r *http.Request) {
	top, ok := positiveQueryInt(w, r, "top", 10)
	if !ok {
		return
	}

	ranking, err := h.ratings.Ranking(r.Context(), top)
	if err != nil {
		h.log.Error(r.Context(), "failed to compute ranking", err, nil)
		internalServerError(w, "Failed to compute ranking")
		return
	}
	if ranking == nil {
		ranking = []domain.StaffAverage{}
	}
	success(w, "Staff ranking", ranking)
}

// StaffAverage handles GET /api/v1/staff/{id}/average
func (h *APIHandler) StaffAverage(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["id"]

	avg, ok, err := h.ratings.Average(r.Context(), staffID)
	if err != nil {
		h.log.Error(r.Context(), "failed to compute average", err, map[string]interface{}{"staff_id": staffID})
		internalServerError(w, "Failed to compute average")
		return
	}
	if !ok {
		notFound(w, "Staff member has no ratings")
		return
	}
	success(w, "Staff average", avg)
}

// ListSuggestions handles GET /api/v1/suggestions?author=&since=&limit=
func (h *APIHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	filter := domain.SuggestionFilter{AuthorID: r.URL.Query().Get("author")}

	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			badRequest(w, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = t
	}
	limit, ok := positiveQueryInt(w, r, "limit", 50)
	if !ok {
		return
	}
	filter.Limit = limit

	suggestions, err := h.suggestions.List(r.Context(), filter)
	if err != nil {
		h.log.Error(r.Context(), "failed to list suggestions", err, nil)
		internalServerError(w, "Failed to list suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	success(w, "Suggestions", suggestions)
}

func positiveQueryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		badRequest(w, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}
