package contracts

import "context"

// RatingStore persists section ratings, recommendation sets and deployment
// history. Absence of prior data is a normal result, reported as nil values,
// never as an error.
type RatingStore interface {
	// SaveAnalysis atomically replaces the page's current ratings and
	// recommendation sets in one transaction, one rating row per section type.
	SaveAnalysis(ctx context.Context, pageID, analysisID string, ratings map[SectionType]int, sets []*RecommendationSet) error

	// SaveSectionRatings atomically replaces all current rating rows for the
	// page with exactly one row per section type; unspecified sections
	// default to 0.
	SaveSectionRatings(ctx context.Context, pageID, analysisID string, ratings map[SectionType]int) error

	// SaveSectionRecommendations atomically replaces the page's current
	// recommendation sets. Superseded sets are kept for history.
	SaveSectionRecommendations(ctx context.Context, pageID, analysisID string, sets []*RecommendationSet) error

	// GetCurrentSectionRatings returns all seven section scores for the page,
	// missing sections defaulted to 0. Returns nil (no error) if the page has
	// never been analyzed.
	GetCurrentSectionRatings(ctx context.Context, pageID string) (map[SectionType]int, error)

	// GetSectionRatingRows returns the full current rating rows for the page
	GetSectionRatingRows(ctx context.Context, pageID string) ([]*SectionRating, error)

	// GetSectionRecommendations returns the flattened recommendation texts
	// for the section across the page's history. Best-effort: store errors
	// degrade to an empty list.
	GetSectionRecommendations(ctx context.Context, pageID string, section SectionType) []string

	// RecordDeployment appends an immutable deployment record and moves the
	// section's rating forward (current -> previous, new current, improvement
	// count +1). Serialized per (pageID, sectionType).
	RecordDeployment(ctx context.Context, d *DeploymentRecord) (*DeploymentRecord, error)

	// GetDeployments returns the page's deployment history, newest first
	GetDeployments(ctx context.Context, pageID string) ([]*DeploymentRecord, error)
}

// PageRepository resolves page/site relationships and score-bearing fields
type PageRepository interface {
	// GetSiteID returns the owning site of a page
	GetSiteID(ctx context.Context, pageID string) (string, error)

	// ListPageScoreSummaries returns score-bearing fields for every page of
	// the site, scored or not
	ListPageScoreSummaries(ctx context.Context, siteID string) ([]PageScoreSummary, error)

	// ListPageIDs returns every page id of the site
	ListPageIDs(ctx context.Context, siteID string) ([]string, error)

	// ListSiteIDs returns every known site id
	ListSiteIDs(ctx context.Context) ([]string, error)
}

// PageScoreStore persists the derived per-page score cache
type PageScoreStore interface {
	// Get returns the cached score, or nil if none has been computed
	Get(ctx context.Context, pageID string) (*PageScore, error)

	// Save upserts the cached score with a fresh timestamp
	Save(ctx context.Context, pageID string, score int) (*PageScore, error)
}

// SiteMetricsStore persists the derived per-site metrics snapshot
type SiteMetricsStore interface {
	// Get returns the cached snapshot, or nil if none has been computed
	Get(ctx context.Context, siteID string) (*SiteMetrics, error)

	// Save upserts the snapshot
	Save(ctx context.Context, m *SiteMetrics) error
}

// SitePropagator recomputes a site's metrics snapshot. The page score
// aggregator fires it after every page score write.
type SitePropagator interface {
	UpdateSiteMetrics(ctx context.Context, siteID string) (*SiteMetrics, error)
}

// PageScoreUpdater recomputes a single page's cached score. Bulk recompute
// helpers iterate it over every page of a site.
type PageScoreUpdater interface {
	UpdatePageScore(ctx context.Context, pageID string) (*int, error)
}
