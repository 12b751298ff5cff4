package research

import (
	"strings"
	"unicode/utf8"
)

// maxQueryLen keeps queries under the search APIs' length limits.
const maxQueryLen = 120

// BuildQueries derives the search queries for a project from the user's
// description and the collaborator's summary. Empty and duplicate queries
// are dropped.
func BuildQueries(description, summary string) []string {
	desc := ShortenQuery(description)
	sum := ShortenQuery(summary)

	candidates := []string{desc}
	if desc != "" {
		candidates = append(candidates, desc+" machine learning", desc+" deep learning")
	}
	candidates = append(candidates, sum)

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, q := range candidates {
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}

// ShortenQuery collapses whitespace and cuts s to at most maxQueryLen
// characters, backing off to the last word boundary when one exists.
func ShortenQuery(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxQueryLen {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:maxQueryLen])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		return cut[:i]
	}
	return cut
}
