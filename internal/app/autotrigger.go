package app

import (
	"slices"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/phase"
)

// autoTrigger starts the current phase's job when the phase is empty, its
// input is available and it has not been tried since that input last
// changed. Each Attempted flag is cleared by whatever changes the input.
func (a *App) autoTrigger() action.Action {
	if a.effects == nil {
		return nil
	}
	s := a.State
	switch s.Phase {
	case phase.Research:
		r := &s.Research
		if s.Intake.Profile != nil && len(r.Papers) == 0 && !r.Searching && !r.Attempted {
			r.Attempted = true
			return action.StartResearch{}
		}
	case phase.Techniques:
		t := &s.Techniques
		if len(s.Research.Papers) > 0 && len(t.Cards) == 0 && !t.Extracting && !t.Attempted &&
			!s.Research.Searching {
			t.Attempted = true
			return action.StartExtraction{Papers: slices.Clone(s.Research.Papers)}
		}
	case phase.Generation:
		g := &s.Generation
		if s.Techniques.SelectedCount() > 0 && len(g.Variants) == 0 && !g.Generating && !g.Attempted &&
			!s.Techniques.Extracting {
			g.Attempted = true
			return action.StartGeneration{}
		}
	case phase.Benchmark:
		b := &s.Bench
		if len(unmeasured(s.Generation.Ready())) > 0 && !b.Benchmarking && !b.Attempted &&
			!s.Generation.Generating {
			b.Attempted = true
			return action.StartBenchmark{}
		}
	}
	return nil
}
