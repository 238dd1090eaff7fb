package contracts

import "time"

// SectionRating is the current rating of one section of one page.
// It is the sole source of truth for scoring: page and site caches are
// always re-derivable from the seven ratings of a page.
//
// One logically-current row exists per (PageID, SectionType). History is
// carried on the row itself via PreviousScore and ImprovementCount rather
// than as multiple rows.
type SectionRating struct {
	PageID           string      `json:"page_id"`
	SectionType      SectionType `json:"section_type"`
	CurrentScore     int         `json:"current_score"` // 0..10
	MaxScore         int         `json:"max_score"`     // always 10
	PreviousScore    *int        `json:"previous_score,omitempty"`
	ImprovementCount int         `json:"improvement_count"`
	LastImprovedAt   *time.Time  `json:"last_improved_at,omitempty"`
	AnalysisID       string      `json:"analysis_id"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Target returns the remaining point budget for the section
func (r *SectionRating) Target() int {
	target := MaxSectionScore - ClampScore(r.CurrentScore)
	if target < 0 {
		return 0
	}
	return target
}

// DeploymentRecord is an immutable, append-only record of optimized content
// being applied to a page section
type DeploymentRecord struct {
	ID               int64       `json:"id"`
	PageID           string      `json:"page_id"`
	SectionType      SectionType `json:"section_type"`
	PreviousScore    int         `json:"previous_score"`
	NewScore         int         `json:"new_score"`
	ScoreImprovement int         `json:"score_improvement"` // NewScore - PreviousScore
	ContentRef       string      `json:"content_ref"`
	Model            string      `json:"model"`
	Actor            string      `json:"actor"`
	DeployedAt       time.Time   `json:"deployed_at"`
}
