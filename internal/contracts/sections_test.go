package contracts

import "testing"

func TestAllSectionTypes(t *testing.T) {
	sections := AllSectionTypes()
	if len(sections) != SectionCount {
		t.Fatalf("AllSectionTypes() returned %d sections, want %d", len(sections), SectionCount)
	}

	seen := make(map[SectionType]bool)
	for _, s := range sections {
		if !s.Valid() {
			t.Errorf("section %q should be valid", s)
		}
		if seen[s] {
			t.Errorf("section %q appears twice", s)
		}
		seen[s] = true
	}
}

func TestParseSectionType(t *testing.T) {
	tests := []struct {
		input string
		want  SectionType
		ok    bool
	}{
		{"title", SectionTitle, true},
		{"description", SectionDescription, true},
		{"headings", SectionHeadings, true},
		{"content", SectionContent, true},
		{"schema", SectionSchema, true},
		{"images", SectionImages, true},
		{"links", SectionLinks, true},
		{"meta", "", false},
		{"Title", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSectionType(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseSectionType(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{-5, 0},
		{0, 0},
		{7, 7},
		{10, 10},
		{15, 10},
	}

	for _, tt := range tests {
		if got := ClampScore(tt.input); got != tt.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestSectionRating_Target(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 10},
		{7, 3},
		{10, 0},
		{-2, 10}, // clamped before computing the budget
		{13, 0},
	}

	for _, tt := range tests {
		r := &SectionRating{CurrentScore: tt.score}
		if got := r.Target(); got != tt.want {
			t.Errorf("Target() with score %d = %d, want %d", tt.score, got, tt.want)
		}
	}
}
