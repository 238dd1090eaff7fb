package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pagelift/backend/internal/analysis"
	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// AnalysisHandler handles analysis ingest and deployment endpoints
type AnalysisHandler struct {
	service *analysis.Service
	store   contracts.RatingStore
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, store contracts.RatingStore, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		store:   store,
		logger:  log,
	}
}

// IngestRequest is the generator payload for one page
type IngestRequest struct {
	Sections []contracts.GeneratorSection `json:"sections"`
}

// Ingest accepts a generator analysis for a page
// POST /api/pages/{pageId}/analysis
func (h *AnalysisHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.IngestAnalysis(ctx, pageID, req.Sections)
	if err != nil {
		h.logger.WithError(err).WithField("page_id", pageID).Error("Failed to ingest analysis")
		respondError(w, http.StatusInternalServerError, "Failed to persist analysis")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// DeployRequest is the request body for recording a deployment
type DeployRequest struct {
	SectionType   string `json:"section_type"`
	PreviousScore int    `json:"previous_score"`
	NewScore      int    `json:"new_score"`
	Content       string `json:"content"`
	ContentRef    string `json:"content_ref"`
	Model         string `json:"model"`
	Actor         string `json:"actor"`
}

// Deploy records a content deployment for a page section
// POST /api/pages/{pageId}/deploy
func (h *AnalysisHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	section, ok := contracts.ParseSectionType(req.SectionType)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown section type")
		return
	}

	record, err := h.service.Deploy(ctx, analysis.DeployRequest{
		PageID:        pageID,
		SectionType:   section,
		PreviousScore: req.PreviousScore,
		NewScore:      req.NewScore,
		Content:       req.Content,
		ContentRef:    req.ContentRef,
		Model:         req.Model,
		Actor:         req.Actor,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"page_id": pageID,
			"section": section,
		}).Error("Failed to record deployment")
		respondError(w, http.StatusInternalServerError, "Failed to record deployment")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// GetDeployments returns the page's deployment history, newest first
// GET /api/pages/{pageId}/deployments
func (h *AnalysisHandler) GetDeployments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pageID := mux.Vars(r)["pageId"]

	records, err := h.store.GetDeployments(ctx, pageID)
	if err != nil {
		h.logger.WithError(err).WithField("page_id", pageID).Error("Failed to get deployments")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve deployments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page_id":     pageID,
		"deployments": records,
	})
}
