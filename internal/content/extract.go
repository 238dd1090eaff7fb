// Package content inspects rewritten HTML snippets before they are deployed
// to a page section.
package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Summary describes the shape of a deployed content snippet
type Summary struct {
	Text          string `json:"text"`
	WordCount     int    `json:"word_count"`
	Headings      int    `json:"headings"`
	Images        int    `json:"images"`
	ImagesWithAlt int    `json:"images_with_alt"`
	Links         int    `json:"links"`
}

// Summarize parses an HTML snippet and extracts its readable text and basic
// shape. Plain text passes through unchanged with zero element counts.
func Summarize(html string) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	text := strings.TrimSpace(doc.Text())
	summary := &Summary{
		Text:      text,
		WordCount: len(strings.Fields(text)),
		Headings:  doc.Find("h1, h2, h3, h4, h5, h6").Length(),
		Links:     doc.Find("a[href]").Length(),
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		summary.Images++
		if alt, ok := s.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			summary.ImagesWithAlt++
		}
	})

	return summary, nil
}

// Empty reports whether the snippet carries no readable text and no
// meaningful elements
func (s *Summary) Empty() bool {
	return s.WordCount == 0 && s.Images == 0 && s.Links == 0
}
