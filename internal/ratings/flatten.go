package ratings

import (
	"fmt"
	"strings"
)

// flatItem carries the fields of a stored recommendation row that matter for
// human-readable flattening
type flatItem struct {
	Title          string
	Description    string
	Text           string
	Category       string
	ExpectedImpact int
}

// Flatten reduces stored recommendation rows to their most human-readable
// text, in order: title, then description, then bare text, then a structured
// fallback. Results are trimmed, de-duplicated case- and
// whitespace-insensitively, and empties are dropped.
func Flatten(items []flatItem) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool)

	for _, it := range items {
		text := readableText(it)
		if text == "" {
			continue
		}
		key := dedupeKey(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, text)
	}

	return out
}

func readableText(it flatItem) string {
	if s := strings.TrimSpace(it.Title); s != "" {
		return s
	}
	if s := strings.TrimSpace(it.Description); s != "" {
		return s
	}
	if s := strings.TrimSpace(it.Text); s != "" {
		return s
	}
	if category := strings.TrimSpace(it.Category); category != "" {
		return fmt.Sprintf("%s improvement (+%d points)", category, it.ExpectedImpact)
	}
	return ""
}

// dedupeKey normalizes text so that duplicates differing only in case or
// whitespace collapse
func dedupeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
