package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/internal/scoring"
	"github.com/pagelift/backend/internal/sitemetrics"
	"github.com/pagelift/backend/pkg/logger"
)

// ScoreHandler handles score and metrics API endpoints
type ScoreHandler struct {
	store   contracts.RatingStore
	scores  *scoring.Service
	metrics *sitemetrics.Service
	logger  *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(store contracts.RatingStore, scores *scoring.Service, metrics *sitemetrics.Service, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		store:   store,
		scores:  scores,
		metrics: metrics,
		logger:  log,
	}
}

// GetRatings returns the page's section rating map, all seven keys present
// GET /api/pages/{pageId}/ratings
func (h *ScoreHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	ratings, err := h.store.GetCurrentSectionRatings(ctx, pageID)
	if err != nil {
		h.logger.WithError(err).WithField("page_id", pageID).Error("Failed to get section ratings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve section ratings")
		return
	}
	if ratings == nil {
		respondError(w, http.StatusNotFound, "Page has not been analyzed yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page_id": pageID,
		"ratings": ratings,
	})
}

// GetRecommendations returns the flattened recommendation texts for a section
// GET /api/pages/{pageId}/recommendations/{section}
func (h *ScoreHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	pageID := vars["pageId"]

	section, ok := contracts.ParseSectionType(vars["section"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown section type")
		return
	}

	recommendations := h.store.GetSectionRecommendations(ctx, pageID, section)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page_id":         pageID,
		"section":         section,
		"recommendations": recommendations,
	})
}

// GetPageScore returns the cached 0..100 page score
// GET /api/pages/{pageId}/score
func (h *ScoreHandler) GetPageScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	score, err := h.scores.GetPageScore(ctx, pageID)
	if err != nil {
		h.logger.WithError(err).WithField("page_id", pageID).Error("Failed to get page score")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve page score")
		return
	}
	if score == nil {
		respondError(w, http.StatusNotFound, "Page has no score yet")
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// RecomputePageScore recomputes a page's score from its section ratings
// POST /api/pages/{pageId}/score/recompute
func (h *ScoreHandler) RecomputePageScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	score, err := h.scores.UpdatePageScore(ctx, pageID)
	if err != nil {
		h.logger.WithError(err).WithField("page_id", pageID).Error("Failed to recompute page score")
		respondError(w, http.StatusInternalServerError, "Failed to recompute page score")
		return
	}
	if score == nil {
		respondError(w, http.StatusNotFound, "Page has not been analyzed yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page_id": pageID,
		"score":   *score,
	})
}

// GetSiteMetrics returns the site's cached metrics snapshot, computing a
// fresh one if nothing is cached yet
// GET /api/sites/{siteId}/metrics
func (h *ScoreHandler) GetSiteMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := mux.Vars(r)["siteId"]

	metrics, err := h.metrics.GetSiteMetrics(ctx, siteID)
	if err != nil {
		h.logger.WithError(err).WithField("site_id", siteID).Error("Failed to get site metrics")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve site metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// RecomputeSite recomputes every page score of the site and its snapshot
// POST /api/sites/{siteId}/recompute
func (h *ScoreHandler) RecomputeSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := mux.Vars(r)["siteId"]

	result, err := h.metrics.UpdateAllPagesInSite(ctx, siteID)
	if err != nil {
		h.logger.WithError(err).WithField("site_id", siteID).Error("Failed to recompute site")
		respondError(w, http.StatusInternalServerError, "Failed to recompute site")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RecomputeAll recomputes every page and site
// POST /api/recompute
func (h *ScoreHandler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.metrics.UpdateAllScores(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute all scores")
		respondError(w, http.StatusInternalServerError, "Failed to recompute scores")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
