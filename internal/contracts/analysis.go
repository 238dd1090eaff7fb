package contracts

// Types at the generator boundary. The external LLM-based generator produces
// these records; everything in them is untrusted until it has passed through
// the point allocator.

// GeneratorRecommendation is a raw recommendation as produced by the
// generator. Impact sums and priorities are frequently wrong or missing.
type GeneratorRecommendation struct {
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Text           string `json:"text,omitempty"`
	ExpectedImpact int    `json:"expectedImpact"`
	Implementation string `json:"implementation"`
}

// GeneratorSection is the generator's verdict on one section of a page
type GeneratorSection struct {
	SectionType          string                    `json:"sectionType"`
	CurrentScore         int                       `json:"currentScore"`
	Issues               []string                  `json:"issues"`
	Recommendations      []GeneratorRecommendation `json:"recommendations"`
	OverallAssessment    string                    `json:"overallAssessment"`
	EstimatedImprovement int                       `json:"estimatedImprovement"`
}

// AnalysisResult is what an ingest run produced after validation and repair
type AnalysisResult struct {
	AnalysisID string               `json:"analysis_id"`
	PageID     string               `json:"page_id"`
	Ratings    map[SectionType]int  `json:"ratings"`
	Sets       []*RecommendationSet `json:"sets"`
	PageScore  *int                 `json:"page_score,omitempty"`
}
