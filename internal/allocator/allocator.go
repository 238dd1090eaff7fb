// Package allocator enforces the point-budget invariant on recommendation
// sets received from the external generator.
//
// The budget rule: a section's current score plus the combined expected
// impact of its open recommendations always equals the maximum section score.
// Generator payloads routinely violate this (mis-summed impacts, malformed
// items, out-of-range scores), so every set passes through Repair before it
// is persisted. Repair never fails; malformed input is absorbed, not
// surfaced.
package allocator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagelift/backend/internal/contracts"
)

// Repair converts a raw generator recommendation list into a
// RecommendationSet whose expected impacts sum exactly to the section's
// remaining point budget. Relative priority ordering decides who absorbs the
// remainder; the returned items keep their original relative order.
func Repair(pageID string, section contracts.SectionType, analysisID string, currentScore int, raw []contracts.GeneratorRecommendation) *contracts.RecommendationSet {
	score := contracts.ClampScore(currentScore)
	target := contracts.MaxSectionScore - score

	items := sanitize(raw)

	switch {
	case target == 0:
		// Nothing left to allocate: zero out whatever the generator claimed.
		for i := range items {
			items[i].ExpectedImpact = 0
		}
	case len(items) == 0:
		// Needed points must never go unassigned.
		items = []contracts.RecommendationItem{synthesize(section, target)}
	default:
		distribute(target, items)
	}

	set := &contracts.RecommendationSet{
		PageID:          pageID,
		SectionType:     section,
		AnalysisID:      analysisID,
		Recommendations: items,
		EstimatedImpact: target,
	}
	set.AggregatePriority = set.HighestPriority()
	return set
}

// sanitize converts raw generator items, dropping those with no usable
// content. Unknown priority strings normalize to low via Priority.Weight.
func sanitize(raw []contracts.GeneratorRecommendation) []contracts.RecommendationItem {
	items := make([]contracts.RecommendationItem, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" &&
			strings.TrimSpace(r.Description) == "" &&
			strings.TrimSpace(r.Text) == "" {
			continue
		}
		items = append(items, contracts.RecommendationItem{
			Priority:       normalizePriority(r.Priority),
			Category:       r.Category,
			Title:          r.Title,
			Description:    r.Description,
			Text:           r.Text,
			ExpectedImpact: r.ExpectedImpact,
			Implementation: r.Implementation,
		})
	}
	return items
}

func normalizePriority(s string) contracts.Priority {
	p := contracts.Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case contracts.PriorityLow, contracts.PriorityMedium, contracts.PriorityHigh, contracts.PriorityCritical:
		return p
	}
	return contracts.PriorityLow
}

// distribute rewrites the items' expected impacts in place so they sum
// exactly to target. Every item gets the integer base share; the remainder
// goes one point at a time to the highest-priority items first (stable on
// original order for ties).
func distribute(target int, items []contracts.RecommendationItem) {
	n := len(items)
	base := target / n
	remainder := target % n

	// Rank items by priority weight descending without disturbing the
	// caller-visible order.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Priority.Weight() > items[order[b]].Priority.Weight()
	})

	for _, idx := range order {
		items[idx].ExpectedImpact = base
	}
	for i := 0; i < remainder; i++ {
		items[order[i]].ExpectedImpact++
	}
}

// synthesize builds the single generic recommendation used when the
// generator produced nothing usable but points remain to allocate
func synthesize(section contracts.SectionType, target int) contracts.RecommendationItem {
	priority := contracts.PriorityMedium
	if target >= contracts.MaxSectionScore/2 {
		priority = contracts.PriorityHigh
	}
	return contracts.RecommendationItem{
		Priority:       priority,
		Category:       string(section),
		Title:          fmt.Sprintf("Improve %s", section),
		Description:    fmt.Sprintf("Address outstanding %s issues identified during analysis", section),
		ExpectedImpact: target,
		Implementation: "Re-run analysis for detailed guidance",
	}
}
