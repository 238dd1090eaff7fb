// Package analysis is the ingest boundary for generator output: it validates
// and repairs the untrusted payload, persists it, and drives the scoring
// pipeline.
package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagelift/backend/internal/allocator"
	"github.com/pagelift/backend/internal/content"
	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// Service ingests generator analyses and records deployments
type Service struct {
	store   contracts.RatingStore
	updater contracts.PageScoreUpdater
	logger  *logger.Logger
}

// NewService creates a new analysis service
func NewService(store contracts.RatingStore, updater contracts.PageScoreUpdater, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		updater: updater,
		logger:  log,
	}
}

// IngestAnalysis validates a generator payload, repairs each section's
// recommendation set through the point allocator, persists ratings and sets
// in one transaction, and recomputes the page score.
//
// Malformed sections (unknown section type keys, out-of-range scores,
// mis-summed impacts) are absorbed here, never surfaced as errors. Only
// persistence failures propagate.
func (s *Service) IngestAnalysis(ctx context.Context, pageID string, sections []contracts.GeneratorSection) (*contracts.AnalysisResult, error) {
	analysisID := uuid.NewString()

	ratings := make(map[contracts.SectionType]int)
	var sets []*contracts.RecommendationSet

	for _, raw := range sections {
		section, ok := contracts.ParseSectionType(raw.SectionType)
		if !ok {
			s.logger.WithFields(map[string]interface{}{
				"page_id":      pageID,
				"section_type": raw.SectionType,
			}).Warn("Dropping unknown section type from generator payload")
			continue
		}

		score := contracts.ClampScore(raw.CurrentScore)
		ratings[section] = score
		sets = append(sets, allocator.Repair(pageID, section, analysisID, score, raw.Recommendations))
	}

	if err := s.store.SaveAnalysis(ctx, pageID, analysisID, ratings, sets); err != nil {
		return nil, fmt.Errorf("persist analysis %s: %w", analysisID, err)
	}

	pageScore, err := s.updater.UpdatePageScore(ctx, pageID)
	if err != nil {
		// The analysis itself committed; the caller can re-run the recompute.
		return nil, fmt.Errorf("recompute page score for %s: %w", pageID, err)
	}

	return &contracts.AnalysisResult{
		AnalysisID: analysisID,
		PageID:     pageID,
		Ratings:    ratings,
		Sets:       sets,
		PageScore:  pageScore,
	}, nil
}

// DeployRequest carries everything needed to record a content deployment
type DeployRequest struct {
	PageID        string
	SectionType   contracts.SectionType
	PreviousScore int
	NewScore      int
	Content       string
	ContentRef    string
	Model         string
	Actor         string
}

// Deploy inspects the rewritten content, appends the deployment record,
// advances the section rating and recomputes the page score
func (s *Service) Deploy(ctx context.Context, req DeployRequest) (*contracts.DeploymentRecord, error) {
	summary, err := content.Summarize(req.Content)
	if err != nil {
		return nil, fmt.Errorf("inspect deployed content: %w", err)
	}
	if summary.Empty() {
		return nil, fmt.Errorf("deployed content for %s/%s is empty", req.PageID, req.SectionType)
	}

	s.logger.WithFields(map[string]interface{}{
		"page_id":    req.PageID,
		"section":    req.SectionType,
		"word_count": summary.WordCount,
		"headings":   summary.Headings,
		"images":     summary.Images,
		"links":      summary.Links,
	}).Debug("Deploying optimized content")

	record, err := s.store.RecordDeployment(ctx, &contracts.DeploymentRecord{
		PageID:        req.PageID,
		SectionType:   req.SectionType,
		PreviousScore: req.PreviousScore,
		NewScore:      req.NewScore,
		ContentRef:    req.ContentRef,
		Model:         req.Model,
		Actor:         req.Actor,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.updater.UpdatePageScore(ctx, req.PageID); err != nil {
		return nil, fmt.Errorf("recompute page score after deployment: %w", err)
	}

	return record, nil
}
