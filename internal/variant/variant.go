// Package variant models candidate implementations: their generation status,
// benchmark results, and the lineage trees that record how merged variants
// descend from research techniques.
package variant

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/Iron-Ham/uniq/internal/research"
)

// Status tracks a variant through generation.
type Status int

const (
	StatusPending Status = iota
	StatusGenerating
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusGenerating:
		return "generating"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// MergeSpec records which variants a merged variant combines.
type MergeSpec struct {
	ParentA string
	ParentB string
	BlendA  BlendRatio
	BlendB  BlendRatio
}

// Summary is e.g. "v1 (75%) + v2 (25%)".
func (m MergeSpec) Summary() string {
	return fmt.Sprintf("%s (%s) + %s (%s)", m.ParentA, m.BlendA, m.ParentB, m.BlendB)
}

// Variant is one candidate implementation living on its own branch.
type Variant struct {
	ID              string
	DisplayName     string
	Branch          string
	Technique       *research.Technique
	Status          Status
	FailureReason   string
	ModifiedFiles   []string
	NewDependencies []string
	Benchmark       *BenchmarkResults
	Merge           *MergeSpec
}

// New creates a Pending variant for the index-th selected technique.
func New(index int, t research.Technique, branchPrefix string) Variant {
	tech := t
	return Variant{
		ID:          fmt.Sprintf("v%d", index),
		DisplayName: t.Name,
		Branch:      BranchName(branchPrefix, fmt.Sprintf("variant-%d-%s", index, Slug(t.Name))),
		Technique:   &tech,
		Status:      StatusPending,
	}
}

// NewMergeID mints a fresh id for a merge-produced variant.
func NewMergeID() string {
	return "m-" + uuid.NewString()[:8]
}

// MergeBranch is the target branch a merge of a and b writes to.
func MergeBranch(branchPrefix string, a, b *Variant, mergeID string) string {
	return BranchName(branchPrefix, fmt.Sprintf("merge-%s-%s-%s", a.ID, b.ID, strings.TrimPrefix(mergeID, "m-")))
}

// NewMerged creates the Ready variant produced by a successful merge.
func NewMerged(id, branch, displayName string, spec MergeSpec, modified, deps []string) Variant {
	return Variant{
		ID:              id,
		DisplayName:     displayName,
		Branch:          branch,
		Status:          StatusReady,
		ModifiedFiles:   modified,
		NewDependencies: deps,
		Merge:           &spec,
	}
}

// BranchName joins prefix and name with a slash; an empty prefix yields name.
func BranchName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Resolve moves the variant to Ready or Failed. It reports false, and
// changes nothing, if the variant already reached a terminal status.
func (v *Variant) Resolve(ready bool, reason string) bool {
	if v.Status.Terminal() {
		return false
	}
	if ready {
		v.Status = StatusReady
		v.FailureReason = ""
	} else {
		v.Status = StatusFailed
		v.FailureReason = reason
	}
	return true
}

// Slug lowercases name and keeps runs of letters and digits joined by '-'.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if len(s) > 40 {
		s = strings.TrimSuffix(s[:40], "-")
	}
	if s == "" {
		return "technique"
	}
	return s
}
