package app

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// CollaboratorStatus is the reducer's view of the supervisor.
type CollaboratorStatus int

const (
	CollaboratorStarting CollaboratorStatus = iota
	CollaboratorReady
	CollaboratorFailed
)

// State is the whole application state. Only the reducer mutates it.
type State struct {
	Phase  phase.Phase
	Help   bool
	Status string
	// Frame advances on every Tick; views derive spinner frames from it.
	Frame int

	Collaborator struct {
		Status CollaboratorStatus
		Handle collaborator.Handle
		Err    string
	}

	Intake     IntakeState
	Research   ResearchState
	Techniques TechniqueState
	Generation GenerationState
	Bench      BenchState
	Merge      MergeState

	// Lineage records where every variant came from. Selectability for
	// merging is decided by Generation.Variants, not by the forest.
	Lineage *variant.Forest
}

// IntakeState holds the project form and its analysis.
type IntakeState struct {
	PathInput        textinput.Model
	DescriptionInput textarea.Model
	// Focus is changed through focusField so the models follow it.
	Focus action.Field
	Profile     *project.Profile
	Analyzing   bool
	Err         string
	// Request is the description as submitted, reused by later phases.
	Request string
}

// WantsInput reports whether the intake form captures keystrokes.
func (s *IntakeState) WantsInput() bool {
	return s.Profile == nil && !s.Analyzing
}

// ResearchState holds the paper search.
type ResearchState struct {
	Papers        []research.Paper
	Searching     bool
	Attempted     bool
	Query         string
	QueryIndex    int
	QueryTotal    int
	FailedQueries int
	Err           string
	Selected      int
	Detail        bool
}

// UnitError is a failed unit with its reason.
type UnitError struct {
	Unit string
	Err  string
}

// TechniqueState holds extraction and selection.
type TechniqueState struct {
	Cards      []research.Technique
	Extracting bool
	Attempted  bool
	Job        *Job
	// Active holds the ids of papers whose extraction is in flight.
	Active   []string
	Errors   []UnitError
	Selected int
}

// SelectedCount is how many cards will become variants.
func (s *TechniqueState) SelectedCount() int {
	n := 0
	for _, c := range s.Cards {
		if c.Selected {
			n++
		}
	}
	return n
}

// GenerationState holds every variant, generated or merged.
type GenerationState struct {
	Variants   []variant.Variant
	Generating bool
	Attempted  bool
	Job        *Job
	Selected   int
}

// Find returns the variant with id, or nil.
func (s *GenerationState) Find(id string) *variant.Variant {
	for i := range s.Variants {
		if s.Variants[i].ID == id {
			return &s.Variants[i]
		}
	}
	return nil
}

// Ready returns pointers to the Ready variants in list order.
func (s *GenerationState) Ready() []*variant.Variant {
	var out []*variant.Variant
	for i := range s.Variants {
		if s.Variants[i].Status == variant.StatusReady {
			out = append(out, &s.Variants[i])
		}
	}
	return out
}

// BenchState holds benchmarking progress. Rows are the Ready variants.
type BenchState struct {
	Benchmarking bool
	Attempted    bool
	Job          *Job
	Errors       []UnitError
	Selected     int
}

// MergeField is the focused control of the merge dialog.
type MergeField int

const (
	MergeFieldA MergeField = iota
	MergeFieldB
	MergeFieldBlend
)

// MergeState is the merge dialog.
type MergeState struct {
	Open    bool
	Field   MergeField
	A       int
	B       int
	BlendA  variant.BlendRatio
	BlendB  variant.BlendRatio
	Merging bool
	// Candidates are the variant ids offered when the dialog opened.
	Candidates []string
}

// NewState returns the state at launch: intake active, form prefilled.
func NewState(path, description string) *State {
	s := &State{
		Phase:   phase.Intake,
		Lineage: variant.NewForest(),
	}
	s.Intake = newIntake(path, description)
	s.Merge.BlendA = variant.BlendHalf
	s.Merge.BlendB = variant.BlendHalf
	return s
}

// InputMode derives the keymap from the state. Overlays always use the
// normal keymap so Esc reaches them.
func (s *State) InputMode() action.InputMode {
	if s.Help || s.Merge.Open {
		return action.ModeNormal
	}
	if s.Phase == phase.Intake && s.Intake.WantsInput() {
		return action.ModeEditing
	}
	return action.ModeNormal
}

// Busy reports whether any background job is running.
func (s *State) Busy() bool {
	return s.Intake.Analyzing || s.Research.Searching || s.Techniques.Extracting ||
		s.Generation.Generating || s.Bench.Benchmarking || s.Merge.Merging
}
