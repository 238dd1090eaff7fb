package scoring

import (
	"context"
	"fmt"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// Notifier receives score-update events, e.g. for pushing to dashboard
// clients. Implementations must not block.
type Notifier interface {
	PageScoreUpdated(pageID string, score int)
}

// Service implements contracts.PageScoreUpdater. After every page score
// write it triggers the site metrics propagator for the owning site;
// propagation failures are logged and swallowed, never surfaced to the
// caller.
type Service struct {
	ratings    contracts.RatingStore
	pages      contracts.PageRepository
	scores     contracts.PageScoreStore
	propagator contracts.SitePropagator
	notifier   Notifier
	logger     *logger.Logger
}

// NewService creates a new page score service. The propagator is attached
// separately because it in turn depends on this service for bulk recomputes.
func NewService(ratings contracts.RatingStore, pages contracts.PageRepository, scores contracts.PageScoreStore, log *logger.Logger) *Service {
	return &Service{
		ratings: ratings,
		pages:   pages,
		scores:  scores,
		logger:  log,
	}
}

// SetPropagator attaches the site metrics propagator
func (s *Service) SetPropagator(p contracts.SitePropagator) {
	s.propagator = p
}

// SetNotifier attaches a score-update notifier
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// UpdatePageScore recomputes the page's cached score from its current
// section ratings. Returns nil without writing anything if the page has
// never been analyzed.
func (s *Service) UpdatePageScore(ctx context.Context, pageID string) (*int, error) {
	ratings, err := s.ratings.GetCurrentSectionRatings(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for %s: %w", pageID, err)
	}
	if ratings == nil {
		// Not yet analyzed: no-op, no cache write.
		return nil, nil
	}

	total := CalculateTotalScore(ratings)
	if _, err := s.scores.Save(ctx, pageID, total); err != nil {
		return nil, fmt.Errorf("save page score for %s: %w", pageID, err)
	}

	if s.notifier != nil {
		s.notifier.PageScoreUpdated(pageID, total)
	}

	s.propagate(ctx, pageID)

	return &total, nil
}

// GetPageScore returns the cached page score, or nil if none has been
// computed yet
func (s *Service) GetPageScore(ctx context.Context, pageID string) (*contracts.PageScore, error) {
	return s.scores.Get(ctx, pageID)
}

// propagate triggers the site metrics recompute for the page's owning site.
// Fire-and-continue: a failure here must never fail the page score update.
func (s *Service) propagate(ctx context.Context, pageID string) {
	if s.propagator == nil {
		return
	}

	siteID, err := s.pages.GetSiteID(ctx, pageID)
	if err != nil {
		s.logger.WithError(err).WithField("page_id", pageID).Warn("Failed to resolve site for metrics propagation")
		return
	}

	if _, err := s.propagator.UpdateSiteMetrics(ctx, siteID); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"page_id": pageID,
			"site_id": siteID,
		}).Warn("Site metrics propagation failed")
	}
}
