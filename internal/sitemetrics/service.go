package sitemetrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
	"github.com/pagelift/backend/pkg/redis"
)

// Service implements contracts.SitePropagator. The snapshot is derived data:
// recomputing it is idempotent and it can be discarded at any time without
// data loss.
type Service struct {
	pages   contracts.PageRepository
	store   contracts.SiteMetricsStore
	updater contracts.PageScoreUpdater
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
}

// NewService creates a new site metrics service. cache may be backed by a
// disabled Redis client, in which case only the Postgres snapshot is used.
func NewService(pages contracts.PageRepository, store contracts.SiteMetricsStore, updater contracts.PageScoreUpdater, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		pages:   pages,
		store:   store,
		updater: updater,
		cache:   cache,
		ttl:     ttl,
		logger:  log,
	}
}

// UpdateSiteMetrics recomputes and persists the site's metrics snapshot from
// every page's effective score. Pages without any score count toward
// TotalPages only; the average covers pages whose effective score is present
// and greater than zero.
func (s *Service) UpdateSiteMetrics(ctx context.Context, siteID string) (*contracts.SiteMetrics, error) {
	summaries, err := s.pages.ListPageScoreSummaries(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("load pages for site %s: %w", siteID, err)
	}

	metrics := Compute(siteID, summaries)
	metrics.LastMetricsUpdate = time.Now()

	if err := s.store.Save(ctx, metrics); err != nil {
		return nil, fmt.Errorf("save metrics for site %s: %w", siteID, err)
	}

	if err := s.cache.Set(ctx, redis.SiteMetricsKey(siteID), metrics, s.ttl); err != nil {
		// Cache write failures degrade to the Postgres snapshot.
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Failed to cache site metrics")
	}

	return metrics, nil
}

// Compute derives the snapshot fields from page summaries. Pure function,
// no I/O.
func Compute(siteID string, summaries []contracts.PageScoreSummary) *contracts.SiteMetrics {
	metrics := &contracts.SiteMetrics{
		SiteID:     siteID,
		TotalPages: len(summaries),
	}

	sum := 0
	for _, page := range summaries {
		score, _, ok := EffectiveScore(page)
		if !ok || score <= 0 {
			continue
		}
		metrics.PagesWithScores++
		sum += score
	}

	if metrics.PagesWithScores > 0 {
		metrics.AverageScore = int(math.Round(float64(sum) / float64(metrics.PagesWithScores)))
	}

	return metrics
}

// GetSiteMetrics returns the cached snapshot, computing through to a fresh
// one if nothing is cached yet
func (s *Service) GetSiteMetrics(ctx context.Context, siteID string) (*contracts.SiteMetrics, error) {
	var cached contracts.SiteMetrics
	found, err := s.cache.Get(ctx, redis.SiteMetricsKey(siteID), &cached)
	if err != nil {
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Site metrics cache read failed")
	} else if found {
		return &cached, nil
	}

	stored, err := s.store.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		if err := s.cache.Set(ctx, redis.SiteMetricsKey(siteID), stored, s.ttl); err != nil {
			s.logger.WithError(err).WithField("site_id", siteID).Warn("Failed to cache site metrics")
		}
		return stored, nil
	}

	return s.UpdateSiteMetrics(ctx, siteID)
}

// BulkResult summarizes a bulk recompute run
type BulkResult struct {
	Sites       int `json:"sites"`
	Pages       int `json:"pages"`
	PagesFailed int `json:"pages_failed"`
	SitesFailed int `json:"sites_failed"`
}

// UpdateAllPagesInSite recomputes every page score of the site, then the site
// snapshot. Individual page failures are logged and do not abort the batch.
func (s *Service) UpdateAllPagesInSite(ctx context.Context, siteID string) (*BulkResult, error) {
	pageIDs, err := s.pages.ListPageIDs(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list pages for site %s: %w", siteID, err)
	}

	result := &BulkResult{Sites: 1}
	for _, pageID := range pageIDs {
		if _, err := s.updater.UpdatePageScore(ctx, pageID); err != nil {
			result.PagesFailed++
			s.logger.WithError(err).WithField("page_id", pageID).Warn("Page score recompute failed")
			continue
		}
		result.Pages++
	}

	if _, err := s.UpdateSiteMetrics(ctx, siteID); err != nil {
		result.SitesFailed++
		s.logger.WithError(err).WithField("site_id", siteID).Warn("Site metrics recompute failed")
	}

	return result, nil
}

// UpdateAllScores recomputes every page score and every site snapshot.
// Best-effort: failures are counted and logged, never aborting the run.
func (s *Service) UpdateAllScores(ctx context.Context) (*BulkResult, error) {
	siteIDs, err := s.pages.ListSiteIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	total := &BulkResult{}
	for _, siteID := range siteIDs {
		res, err := s.UpdateAllPagesInSite(ctx, siteID)
		if err != nil {
			total.SitesFailed++
			s.logger.WithError(err).WithField("site_id", siteID).Warn("Site recompute failed")
			continue
		}
		total.Sites++
		total.Pages += res.Pages
		total.PagesFailed += res.PagesFailed
		total.SitesFailed += res.SitesFailed
	}

	return total, nil
}
