package variant

import (
	"fmt"

	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/research"
)

// NodeKind distinguishes lineage leaves from merge nodes.
type NodeKind int

const (
	KindOriginal NodeKind = iota
	KindMerged
)

// LineageNode traces a variant back to the techniques it came from.
//
// Trees are write-once. A merge node owns both parent subtrees exclusively:
// parents are moved in, never shared, and nodes hold no back-references.
// Every merge mints a fresh variant id, so trees are acyclic.
type LineageNode struct {
	Kind      NodeKind
	VariantID string

	// Original only
	TechniqueName string
	PaperID       string

	// Merged only
	BlendA  BlendRatio
	BlendB  BlendRatio
	ParentA *LineageNode
	ParentB *LineageNode
}

// Leaf is one (technique, paper) origin of a lineage tree.
type Leaf struct {
	VariantID     string
	TechniqueName string
	PaperID       string
}

// Attach creates the leaf for a variant generated from a single technique.
func Attach(variantID string, t research.Technique) *LineageNode {
	return &LineageNode{
		Kind:          KindOriginal,
		VariantID:     variantID,
		TechniqueName: t.Name,
		PaperID:       t.PaperID,
	}
}

// Merge creates a merge node owning a and b. Callers must not use a or b
// afterwards; use Clone first when a subtree has to stay available.
func Merge(variantID string, a, b *LineageNode, blendA, blendB BlendRatio) (*LineageNode, error) {
	if a == nil || b == nil {
		return nil, errors.NewUniqError(errors.CategoryMerge, "merge needs two lineage parents", errors.ErrInvalidInput)
	}
	if a == b {
		return nil, errors.NewUniqError(errors.CategoryMerge, "lineage parents must be distinct subtrees", errors.ErrInvalidInput).
			WithUnit(a.VariantID)
	}
	return &LineageNode{
		Kind:      KindMerged,
		VariantID: variantID,
		BlendA:    blendA,
		BlendB:    blendB,
		ParentA:   a,
		ParentB:   b,
	}, nil
}

// Leaves flattens the tree left to right.
func (n *LineageNode) Leaves() []Leaf {
	if n == nil {
		return nil
	}
	if n.Kind == KindOriginal {
		return []Leaf{{VariantID: n.VariantID, TechniqueName: n.TechniqueName, PaperID: n.PaperID}}
	}
	return append(n.ParentA.Leaves(), n.ParentB.Leaves()...)
}

// Clone deep-copies the subtree.
func (n *LineageNode) Clone() *LineageNode {
	if n == nil {
		return nil
	}
	c := *n
	c.ParentA = n.ParentA.Clone()
	c.ParentB = n.ParentB.Clone()
	return &c
}

// Find returns the node for variantID within the subtree.
func (n *LineageNode) Find(variantID string) *LineageNode {
	if n == nil {
		return nil
	}
	if n.VariantID == variantID {
		return n
	}
	if found := n.ParentA.Find(variantID); found != nil {
		return found
	}
	return n.ParentB.Find(variantID)
}

// Depth is 1 for a leaf.
func (n *LineageNode) Depth() int {
	if n == nil {
		return 0
	}
	if n.Kind == KindOriginal {
		return 1
	}
	return 1 + max(n.ParentA.Depth(), n.ParentB.Depth())
}

// Lines renders the tree for display, one node per line.
func (n *LineageNode) Lines() []string {
	var out []string
	n.render("", &out)
	return out
}

func (n *LineageNode) render(indent string, out *[]string) {
	if n == nil {
		return
	}
	if n.Kind == KindOriginal {
		*out = append(*out, fmt.Sprintf("%s%s: %s (%s)", indent, n.VariantID, n.TechniqueName, n.PaperID))
		return
	}
	*out = append(*out, fmt.Sprintf("%s%s: merge %s + %s", indent, n.VariantID, n.BlendA, n.BlendB))
	n.ParentA.render(indent+"  ", out)
	n.ParentB.render(indent+"  ", out)
}

// Forest holds every lineage root of a run keyed by variant id.
type Forest struct {
	roots map[string]*LineageNode
	order []string
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{roots: make(map[string]*LineageNode)}
}

// Add registers n as a root. A root with the same id is replaced.
func (f *Forest) Add(n *LineageNode) {
	if n == nil {
		return
	}
	if _, ok := f.roots[n.VariantID]; !ok {
		f.order = append(f.order, n.VariantID)
	}
	f.roots[n.VariantID] = n
}

// Get finds the node for variantID, whether it is a root or nested.
func (f *Forest) Get(variantID string) (*LineageNode, bool) {
	if n, ok := f.roots[variantID]; ok {
		return n, true
	}
	for _, id := range f.order {
		if n := f.roots[id].Find(variantID); n != nil {
			return n, true
		}
	}
	return nil, false
}

// Take removes and returns the root for variantID. A variant that already
// sits inside another tree stays selectable for further merges, so for
// nested ids Take returns a deep copy and leaves the owning tree intact.
func (f *Forest) Take(variantID string) (*LineageNode, bool) {
	if n, ok := f.roots[variantID]; ok {
		delete(f.roots, variantID)
		for i, id := range f.order {
			if id == variantID {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		return n, true
	}
	n, ok := f.Get(variantID)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Merge takes both parents and adds the new merge node as a root.
func (f *Forest) Merge(variantID, a, b string, blendA, blendB BlendRatio) (*LineageNode, error) {
	if a == b {
		return nil, errors.NewUniqError(errors.CategoryMerge, "cannot merge a variant with itself", errors.ErrInvalidInput).
			WithUnit(a)
	}
	if _, ok := f.Get(a); !ok {
		return nil, errors.NewUniqError(errors.CategoryMerge, "unknown lineage", errors.ErrInvalidInput).WithUnit(a)
	}
	if _, ok := f.Get(b); !ok {
		return nil, errors.NewUniqError(errors.CategoryMerge, "unknown lineage", errors.ErrInvalidInput).WithUnit(b)
	}

	// Copy nested parents before any root moves out, since b may live
	// inside a's tree or the other way round.
	var nodeA, nodeB *LineageNode
	if _, isRoot := f.roots[a]; !isRoot {
		nodeA, _ = f.Take(a)
	}
	if _, isRoot := f.roots[b]; !isRoot {
		nodeB, _ = f.Take(b)
	}
	if nodeA == nil {
		nodeA, _ = f.Take(a)
	}
	if nodeB == nil {
		nodeB, _ = f.Take(b)
	}

	merged, err := Merge(variantID, nodeA, nodeB, blendA, blendB)
	if err != nil {
		return nil, err
	}
	f.Add(merged)
	return merged, nil
}

// Roots returns the roots in insertion order.
func (f *Forest) Roots() []*LineageNode {
	out := make([]*LineageNode, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.roots[id])
	}
	return out
}
