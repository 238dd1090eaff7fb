package contracts

import "time"

// PageScore is the cached 0..100 aggregate of a page's seven section scores.
// Derived, never authoritative: it can be discarded and rebuilt from the
// SectionRating rows at any time.
type PageScore struct {
	PageID          string    `json:"page_id"`
	Score           int       `json:"score"` // 0..100
	LastScoreUpdate time.Time `json:"last_score_update"`
}

// SiteMetrics is the cached rollup across all pages of one site
type SiteMetrics struct {
	SiteID            string    `json:"site_id"`
	AverageScore      int       `json:"average_score"` // 0..100
	TotalPages        int       `json:"total_pages"`
	PagesWithScores   int       `json:"pages_with_scores"`
	LastMetricsUpdate time.Time `json:"last_metrics_update"`
}

// PageScoreSummary carries the score-bearing fields of a page as read for the
// site rollup. PageScore is the cached aggregate if one has been computed;
// LegacyScore is the score recorded by the pre-sectioned analyzer, kept as a
// fallback for pages never re-analyzed.
type PageScoreSummary struct {
	PageID      string `json:"page_id"`
	PageScore   *int   `json:"page_score,omitempty"`
	LegacyScore *int   `json:"legacy_score,omitempty"`
}
