package scoring

import (
	"testing"

	"github.com/pagelift/backend/internal/contracts"
)

func allSections(score int) map[contracts.SectionType]int {
	m := make(map[contracts.SectionType]int)
	for _, s := range contracts.AllSectionTypes() {
		m[s] = score
	}
	return m
}

func TestCalculateTotalScore_Bounds(t *testing.T) {
	if got := CalculateTotalScore(allSections(10)); got != 100 {
		t.Errorf("all sections at 10: got %d, want 100", got)
	}
	if got := CalculateTotalScore(allSections(0)); got != 0 {
		t.Errorf("all sections at 0: got %d, want 0", got)
	}
}

func TestCalculateTotalScore_Rounding(t *testing.T) {
	// sum=64 -> 64/70*100 = 91.43 -> 91
	ratings := map[contracts.SectionType]int{
		contracts.SectionTitle:       8,
		contracts.SectionDescription: 6,
		contracts.SectionHeadings:    10,
		contracts.SectionContent:     10,
		contracts.SectionSchema:      10,
		contracts.SectionImages:      10,
		contracts.SectionLinks:       10,
	}

	if got := CalculateTotalScore(ratings); got != 91 {
		t.Errorf("got %d, want 91", got)
	}
}

func TestCalculateTotalScore_MissingSectionsCountAsZero(t *testing.T) {
	// only title rated: 10/70*100 = 14.29 -> 14
	ratings := map[contracts.SectionType]int{
		contracts.SectionTitle: 10,
	}

	if got := CalculateTotalScore(ratings); got != 14 {
		t.Errorf("got %d, want 14", got)
	}
}

func TestCalculateTotalScore_ClampsOutOfRange(t *testing.T) {
	ratings := allSections(10)
	ratings[contracts.SectionTitle] = 25  // clamps to 10
	ratings[contracts.SectionImages] = -5 // clamps to 0

	// sum = 10*6 + 0 = 60 -> 60/70*100 = 85.71 -> 86
	if got := CalculateTotalScore(ratings); got != 86 {
		t.Errorf("got %d, want 86", got)
	}
}
