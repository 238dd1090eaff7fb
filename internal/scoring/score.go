// Package scoring aggregates a page's seven section scores into the single
// 0..100 page score and keeps the derived page score cache current.
package scoring

import (
	"math"

	"github.com/pagelift/backend/internal/contracts"
)

// CalculateTotalScore converts seven section scores into one page
// percentage: round(sum / 70 * 100). Pure function, no I/O.
func CalculateTotalScore(ratings map[contracts.SectionType]int) int {
	sum := 0
	for _, section := range contracts.AllSectionTypes() {
		sum += contracts.ClampScore(ratings[section])
	}

	maxTotal := contracts.SectionCount * contracts.MaxSectionScore
	return int(math.Round(float64(sum) / float64(maxTotal) * contracts.MaxPageScore))
}
