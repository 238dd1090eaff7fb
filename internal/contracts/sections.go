package contracts

// SectionType identifies one of the seven on-page optimization facets.
// The set is closed: scoring arithmetic assumes exactly these seven.
type SectionType string

const (
	SectionTitle       SectionType = "title"
	SectionDescription SectionType = "description"
	SectionHeadings    SectionType = "headings"
	SectionContent     SectionType = "content"
	SectionSchema      SectionType = "schema"
	SectionImages      SectionType = "images"
	SectionLinks       SectionType = "links"
)

// Scoring constants
const (
	// MaxSectionScore is the maximum score of a single section
	MaxSectionScore = 10

	// SectionCount is the number of section types per page
	SectionCount = 7

	// MaxPageScore is the maximum aggregated page score
	MaxPageScore = 100
)

// AllSectionTypes returns the seven section types in canonical order
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionTitle,
		SectionDescription,
		SectionHeadings,
		SectionContent,
		SectionSchema,
		SectionImages,
		SectionLinks,
	}
}

// ParseSectionType validates a raw section type string
func ParseSectionType(s string) (SectionType, bool) {
	st := SectionType(s)
	switch st {
	case SectionTitle, SectionDescription, SectionHeadings, SectionContent,
		SectionSchema, SectionImages, SectionLinks:
		return st, true
	}
	return "", false
}

// Valid reports whether the section type is one of the seven known values
func (s SectionType) Valid() bool {
	_, ok := ParseSectionType(string(s))
	return ok
}

// ClampScore clamps a raw section score into [0, MaxSectionScore].
// Generator payloads are untrusted and occasionally report out-of-range scores.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxSectionScore {
		return MaxSectionScore
	}
	return score
}
