package research

import (
	"strings"
	"testing"
)

func TestHasSource(t *testing.T) {
	tests := []struct {
		name  string
		paper Paper
		want  bool
	}{
		{"pdf", Paper{PDFURL: "https://arxiv.org/pdf/1"}, true},
		{"doi", Paper{DOI: "10.1/abc"}, true},
		{"both", Paper{PDFURL: "u", DOI: "d"}, true},
		{"neither", Paper{}, false},
		{"whitespace only", Paper{PDFURL: "  ", DOI: "\t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.paper.HasSource(); got != tt.want {
				t.Errorf("HasSource() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergePapers(t *testing.T) {
	existing := []Paper{{ID: "a"}, {ID: "b"}}
	incoming := []Paper{{ID: "b"}, {ID: "c"}, {ID: "c"}, {ID: "d"}}

	got, added := MergePapers(existing, incoming, 0)
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	if strings.Join(ids, ",") != "a,b,c,d" {
		t.Errorf("ids = %v", ids)
	}

	limited, added := MergePapers([]Paper{{ID: "a"}}, incoming, 2)
	if len(limited) != 2 || added != 1 {
		t.Errorf("limit not applied: len=%d added=%d", len(limited), added)
	}
}

func TestInsertByRelevance(t *testing.T) {
	var cards []Technique
	for _, tc := range []struct {
		name  string
		score float64
	}{
		{"mid", 0.5}, {"top", 0.9}, {"low", 0.1}, {"mid2", 0.5},
	} {
		cards = InsertByRelevance(cards, Technique{Name: tc.name, RelevanceScore: tc.score})
	}

	var names []string
	for _, c := range cards {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "top,mid,mid2,low" {
		t.Errorf("order = %s, want top,mid,mid2,low", got)
	}
}

func TestSelectTop(t *testing.T) {
	cards := []Technique{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	SelectTop(cards, 2)

	sel := Selected(cards)
	if len(sel) != 2 || sel[0].Name != "a" || sel[1].Name != "b" {
		t.Errorf("Selected() = %+v", sel)
	}

	SelectTop(cards, 0)
	if len(Selected(cards)) != 0 {
		t.Error("SelectTop(0) should clear selection")
	}
}

func TestShortenQuery(t *testing.T) {
	short := "add a recommendation engine"
	if got := ShortenQuery("  add  a\nrecommendation engine "); got != short {
		t.Errorf("ShortenQuery() = %q, want %q", got, short)
	}

	long := strings.Repeat("word ", 40)
	got := ShortenQuery(long)
	if len(got) > maxQueryLen {
		t.Errorf("len = %d, want <= %d", len(got), maxQueryLen)
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "wor") {
		t.Errorf("should cut at a word boundary, got %q", got)
	}

	noSpaces := strings.Repeat("x", 200)
	if got := ShortenQuery(noSpaces); len(got) != maxQueryLen {
		t.Errorf("unbroken input should hard-cut, len = %d", len(got))
	}
}

func TestBuildQueries(t *testing.T) {
	got := BuildQueries("anomaly detection", "A Go service for metrics")
	want := []string{
		"anomaly detection",
		"anomaly detection machine learning",
		"anomaly detection deep learning",
		"A Go service for metrics",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("BuildQueries() = %q, want %q", got, want)
	}

	if got := BuildQueries("", ""); len(got) != 0 {
		t.Errorf("empty inputs should yield no queries, got %q", got)
	}

	if got := BuildQueries("same", "same"); len(got) != 3 {
		t.Errorf("duplicate summary should be dropped, got %q", got)
	}
}

func TestTechniqueSummary(t *testing.T) {
	tech := Technique{Name: "LoRA", ImplementationComplexity: ComplexityMedium, RelevanceScore: 0.82}
	if got := tech.Summary(); got != "LoRA [Medium, 82%]" {
		t.Errorf("Summary() = %q", got)
	}
}
