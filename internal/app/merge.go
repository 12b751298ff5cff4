package app

import (
	"fmt"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/fanout"
	"github.com/Iron-Ham/uniq/internal/variant"
)

func (a *App) openMergeDialog() {
	s := a.State
	if s.Merge.Merging {
		s.Status = "A merge is already running"
		return
	}
	var ids []string
	for _, v := range s.Generation.Ready() {
		ids = append(ids, v.ID)
	}
	if len(ids) < 2 {
		s.Status = "Need at least two ready variants to merge"
		return
	}
	s.Merge = MergeState{
		Open:       true,
		Field:      MergeFieldA,
		A:          0,
		B:          1,
		BlendA:     variant.BlendHalf,
		BlendB:     variant.BlendHalf,
		Candidates: ids,
	}
}

// mergeDialog handles user input while the dialog is open. Up and down
// move between the fields, left and right change the focused field.
func (a *App) mergeDialog(act action.Action) action.Action {
	m := &a.State.Merge
	n := len(m.Candidates)

	switch act.(type) {
	case action.Quit:
		a.quit = true
	case action.Escape, action.CloseMergeDialog:
		m.Open = false
	case action.GoToPhase:
		// Jumping away cancels the dialog.
		m.Open = false
		return act
	case action.ScrollDown:
		m.Field = (m.Field + 1) % 3
	case action.ScrollUp:
		m.Field = (m.Field + 2) % 3
	case action.NextPhase, action.PrevPhase:
		_, forward := act.(action.NextPhase)
		step := 1
		if !forward {
			step = n - 1
		}
		switch m.Field {
		case MergeFieldA:
			m.A = (m.A + step) % n
		case MergeFieldB:
			m.B = (m.B + step) % n
		case MergeFieldBlend:
			if forward {
				m.BlendA = m.BlendA.Next()
			} else {
				m.BlendA = m.BlendA.Prev()
			}
			m.BlendB = m.BlendA.Paired()
		}
	case action.Confirm:
		if n < 2 || m.A == m.B {
			a.State.Status = "Choose two different variants"
			return nil
		}
		m.Open = false
		return action.StartMerge{
			VariantA: m.Candidates[m.A],
			VariantB: m.Candidates[m.B],
			BlendA:   m.BlendA.Percent(),
			BlendB:   m.BlendB.Percent(),
		}
	}
	return nil
}

func (a *App) startMerge(act action.StartMerge) {
	s := a.State
	if s.Merge.Merging {
		s.Status = "A merge is already running"
		return
	}
	va, vb := s.Generation.Find(act.VariantA), s.Generation.Find(act.VariantB)
	if va == nil || vb == nil || va.ID == vb.ID ||
		va.Status != variant.StatusReady || vb.Status != variant.StatusReady {
		s.Status = "Merge needs two different ready variants"
		return
	}
	blendA, okA := variant.BlendFromPercent(act.BlendA)
	blendB, okB := variant.BlendFromPercent(act.BlendB)
	if !okA || !okB {
		s.Status = fmt.Sprintf("Unsupported blend %d%%/%d%%", act.BlendA, act.BlendB)
		return
	}
	fx := a.ready()
	if fx == nil {
		return
	}

	id := variant.NewMergeID()
	branch := variant.MergeBranch(a.cfg.Generation.BranchPrefix, va, vb, id)
	job := fanout.MergeJob{
		ID:          id,
		DisplayName: va.DisplayName + " + " + vb.DisplayName,
		Spec:        variant.MergeSpec{ParentA: va.ID, ParentB: vb.ID, BlendA: blendA, BlendB: blendB},
		Request: collaborator.MergeRequest{
			VariantABranch:    va.Branch,
			VariantATechnique: describe(va),
			VariantBBranch:    vb.Branch,
			VariantBTechnique: describe(vb),
			BlendA:            blendA.Percent(),
			BlendB:            blendB.Percent(),
			TargetBranch:      branch,
		},
	}
	if s.Intake.Profile != nil {
		job.Request.Project = *s.Intake.Profile
	}

	s.Merge.Merging = true
	s.Status = fmt.Sprintf("Merging %s", job.Spec.Summary())
	fx.Merge(job)
}

// describe is what the collaborator is told about a merge parent: its
// technique card, or for a merged parent the summary of its own merge.
func describe(v *variant.Variant) any {
	if v.Technique != nil {
		return *v.Technique
	}
	if v.Merge != nil {
		return v.Merge.Summary()
	}
	return v.DisplayName
}

func (a *App) mergeComplete(act action.MergeComplete) action.Action {
	s := a.State
	s.Merge.Merging = false

	v := act.Variant
	s.Generation.Variants = append(s.Generation.Variants, v)
	if m := v.Merge; m != nil {
		if _, err := s.Lineage.Merge(v.ID, m.ParentA, m.ParentB, m.BlendA, m.BlendB); err != nil {
			a.logger.Warn("lineage not recorded", "variant_id", v.ID, "error", err.Error())
		}
	}
	s.Bench.Attempted = false
	s.Status = "Merged " + v.DisplayName
	return a.autoTrigger()
}
