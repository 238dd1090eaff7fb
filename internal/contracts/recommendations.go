package contracts

// Priority ranks a recommendation's urgency
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Weight returns the numeric weight used for priority ordering.
// Unknown priorities weigh the same as low.
func (p Priority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// RecommendationItem is a single suggested improvement carrying an integer
// point value toward the section's point budget
type RecommendationItem struct {
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Text           string   `json:"text,omitempty"` // legacy generator payloads carried a bare text field
	ExpectedImpact int      `json:"expected_impact"`
	Implementation string   `json:"implementation"`
}

// RecommendationSet is the current set of recommendations for one section of
// one page. A re-analysis supersedes the whole set, never merges into it.
type RecommendationSet struct {
	PageID            string               `json:"page_id"`
	SectionType       SectionType          `json:"section_type"`
	AnalysisID        string               `json:"analysis_id"`
	Recommendations   []RecommendationItem `json:"recommendations"`
	AggregatePriority Priority             `json:"aggregate_priority"`
	EstimatedImpact   int                  `json:"estimated_impact"`
}

// TotalImpact sums the expected impact across the set's recommendations
func (s *RecommendationSet) TotalImpact() int {
	total := 0
	for _, rec := range s.Recommendations {
		total += rec.ExpectedImpact
	}
	return total
}

// HighestPriority returns the highest priority present in the set,
// or low for an empty set
func (s *RecommendationSet) HighestPriority() Priority {
	highest := PriorityLow
	for _, rec := range s.Recommendations {
		if rec.Priority.Weight() > highest.Weight() {
			highest = rec.Priority
		}
	}
	return highest
}
