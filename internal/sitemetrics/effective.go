// Package sitemetrics rolls page scores up into the cached per-site
// snapshot (average score, page counts).
package sitemetrics

import "github.com/pagelift/backend/internal/contracts"

// ScoreSource says where a page's effective score came from
type ScoreSource string

const (
	// SourcePageScore is the cached aggregate of the page's section ratings
	SourcePageScore ScoreSource = "page_score"
	// SourceLegacy is the score recorded by the pre-sectioned analyzer
	SourceLegacy ScoreSource = "legacy"
	// SourceNone means the page has no score of any kind
	SourceNone ScoreSource = "none"
)

// EffectiveScore resolves a page's score with explicit precedence: the
// cached page score wins, then the legacy score, then absent. The ok result
// distinguishes "no score yet" from a legitimate zero.
func EffectiveScore(s contracts.PageScoreSummary) (score int, source ScoreSource, ok bool) {
	if s.PageScore != nil {
		return *s.PageScore, SourcePageScore, true
	}
	if s.LegacyScore != nil {
		return *s.LegacyScore, SourceLegacy, true
	}
	return 0, SourceNone, false
}
