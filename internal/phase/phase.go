// Package phase defines the five pipeline phases and the navigation rules
// between them.
package phase

// Phase is one stage of the pipeline. Phases are totally ordered.
type Phase int

const (
	Intake Phase = iota
	Research
	Techniques
	Generation
	Benchmark
)

// All returns every phase in order.
func All() []Phase {
	return []Phase{Intake, Research, Techniques, Generation, Benchmark}
}

// Valid reports whether p is one of the five phases.
func (p Phase) Valid() bool {
	return p >= Intake && p <= Benchmark
}

// Next returns the following phase. ok is false on the last phase.
func (p Phase) Next() (next Phase, ok bool) {
	if !p.Valid() || p == Benchmark {
		return p, false
	}
	return p + 1, true
}

// Prev returns the preceding phase. ok is false on the first phase.
func (p Phase) Prev() (prev Phase, ok bool) {
	if !p.Valid() || p == Intake {
		return p, false
	}
	return p - 1, true
}

// Index is the 0-based position of p.
func (p Phase) Index() int {
	return int(p)
}

// Label is the tab title.
func (p Phase) Label() string {
	switch p {
	case Intake:
		return "1.Intake"
	case Research:
		return "2.Research"
	case Techniques:
		return "3.Techniques"
	case Generation:
		return "4.Build"
	case Benchmark:
		return "5.Benchmark"
	default:
		return "?"
	}
}

// String returns a lowercase name, used as a log attribute.
func (p Phase) String() string {
	switch p {
	case Intake:
		return "intake"
	case Research:
		return "research"
	case Techniques:
		return "techniques"
	case Generation:
		return "generation"
	case Benchmark:
		return "benchmark"
	default:
		return "unknown"
	}
}

// FromIndex maps 0..4 to a phase.
func FromIndex(i int) (Phase, bool) {
	p := Phase(i)
	return p, p.Valid()
}

// Navigator applies Next/Prev/GoTo to the active phase. Stepping is
// suppressed while Locked reports true (text capture, modal dialogs);
// GoTo always moves.
type Navigator struct {
	Current Phase
	Locked  func() bool
}

// Step moves one phase forward (forward=true) or back. It reports whether
// the phase changed.
func (n *Navigator) Step(forward bool) bool {
	if n.Locked != nil && n.Locked() {
		return false
	}
	var (
		to Phase
		ok bool
	)
	if forward {
		to, ok = n.Current.Next()
	} else {
		to, ok = n.Current.Prev()
	}
	if !ok {
		return false
	}
	n.Current = to
	return true
}

// GoTo jumps to p. It reports whether the phase changed.
func (n *Navigator) GoTo(p Phase) bool {
	if !p.Valid() || p == n.Current {
		return false
	}
	n.Current = p
	return true
}
