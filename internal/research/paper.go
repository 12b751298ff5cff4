// Package research holds the literature side of the pipeline: paper records
// returned by search-papers, technique cards returned by extract-technique,
// and the helpers that turn a project description into search queries.
package research

import "strings"

// Source names the index a paper came from.
type Source string

const (
	SourceSemanticScholar Source = "SemanticScholar"
	SourceArXiv           Source = "ArXiv"
)

// Paper is one search-papers result.
type Paper struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	Year           *int     `json:"year,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"`
	AbstractText   string   `json:"abstract_text"`
	CitationCount  *int     `json:"citation_count,omitempty"`
	URL            string   `json:"url"`
	PDFURL         string   `json:"pdf_url,omitempty"`
	DOI            string   `json:"doi,omitempty"`
	Source         Source   `json:"source"`
	Fields         []string `json:"fields"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// HasSource reports whether the collaborator has anything to fetch for this
// paper. Papers without a PDF URL or DOI cannot be extracted.
func (p *Paper) HasSource() bool {
	return strings.TrimSpace(p.PDFURL) != "" || strings.TrimSpace(p.DOI) != ""
}

// MergePapers appends incoming papers to existing, skipping ids already
// present, and stops at limit (0 = unlimited). It returns the new slice and
// how many papers were added.
func MergePapers(existing, incoming []Paper, limit int) ([]Paper, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, p := range existing {
		seen[p.ID] = struct{}{}
	}

	added := 0
	for _, p := range incoming {
		if limit > 0 && len(existing) >= limit {
			break
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		existing = append(existing, p)
		added++
	}
	return existing, added
}
