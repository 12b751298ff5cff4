package research

import (
	"fmt"
	"sort"
)

// Complexity is the collaborator's estimate of implementation effort.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// Technique is a structured technique card extracted from one paper.
type Technique struct {
	Name                     string     `json:"name"`
	PaperID                  string     `json:"paper_id"`
	PaperTitle               string     `json:"paper_title"`
	Methodology              string     `json:"methodology"`
	KeyComponents            []string   `json:"key_components"`
	RequiredDataFormat       string     `json:"required_data_format"`
	ImplementationComplexity Complexity `json:"implementation_complexity"`
	HardwareRequirements     string     `json:"hardware_requirements"`
	Dependencies             []string   `json:"dependencies"`
	RelevanceScore           float64    `json:"relevance_score"`
	IntegrationApproach      string     `json:"integration_approach"`
	Selected                 bool       `json:"selected"`
}

// Summary is the single line shown in technique lists.
func (t *Technique) Summary() string {
	return fmt.Sprintf("%s [%s, %.0f%%]", t.Name, t.ImplementationComplexity, t.RelevanceScore*100)
}

// InsertByRelevance adds t keeping cards sorted by relevance, highest first.
// Cards with equal relevance keep arrival order.
func InsertByRelevance(cards []Technique, t Technique) []Technique {
	i := sort.Search(len(cards), func(i int) bool {
		return cards[i].RelevanceScore < t.RelevanceScore
	})
	cards = append(cards, Technique{})
	copy(cards[i+1:], cards[i:])
	cards[i] = t
	return cards
}

// SelectTop marks the first n cards selected. Cards must already be sorted.
func SelectTop(cards []Technique, n int) {
	for i := range cards {
		cards[i].Selected = i < n
	}
}

// Selected returns copies of the selected cards in display order.
func Selected(cards []Technique) []Technique {
	var out []Technique
	for _, c := range cards {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}
