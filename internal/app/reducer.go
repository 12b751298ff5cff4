// Package app holds the application state and the reducer that evolves it.
//
// Every change to State goes through Dispatch, one action at a time, on the
// goroutine that drains the bus. Background work is started through Effects
// and reports back as further actions, so the reducer never blocks.
package app

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/config"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/logging"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// maxChainDepth bounds how many follow-up actions one input may produce.
const maxChainDepth = 8

// App is the reducer together with the state it owns.
type App struct {
	State *State

	cfg     *config.Config
	logger  *logging.Logger
	effects Effects
	connect Connector

	// pending is a SubmitProject received before the collaborator was up.
	pending action.Action
	quit    bool
}

// New creates an App. connect is called once the collaborator is healthy;
// until then every collaborator-backed action is refused or deferred.
func New(state *State, cfg *config.Config, connect Connector, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		State:   state,
		cfg:     cfg,
		logger:  logger.WithPhase("reducer"),
		connect: connect,
	}
}

// Config returns the configuration currently in force.
func (a *App) Config() *config.Config { return a.cfg }

// Quitting reports whether Quit was dispatched.
func (a *App) Quitting() bool { return a.quit }

// Process dispatches act and then every follow-up action it yields.
// A chain longer than maxChainDepth is cut and logged.
func (a *App) Process(act action.Action) {
	for depth := 0; act != nil; depth++ {
		if depth == maxChainDepth {
			a.logger.Error("action chain too deep, dropping", "type", act.Type())
			return
		}
		act = a.Dispatch(act)
	}
}

// Dispatch applies a single action and returns the follow-up, if any.
func (a *App) Dispatch(act action.Action) action.Action {
	s := a.State
	if _, tick := act.(action.Tick); !tick {
		a.logger.Debug("dispatch", "type", act.Type(), "phase", s.Phase.String())
	}

	if s.Help && action.IsUserInput(act) {
		if _, ok := act.(action.Quit); !ok {
			s.Help = false
			return nil
		}
	}
	if s.Merge.Open && action.IsUserInput(act) {
		return a.mergeDialog(act)
	}
	if s.InputMode() == action.ModeEditing {
		if next, handled := a.editIntake(act); handled {
			return next
		}
	}

	switch act := act.(type) {
	case action.Quit:
		a.quit = true
	case action.ToggleHelp:
		s.Help = !s.Help
	case action.SetStatus:
		s.Status = act.Message
	case action.ClearStatus:
		s.Status = ""
	case action.Tick:
		s.Frame++
	case action.ConfigReloaded:
		if act.Config != nil {
			a.cfg = act.Config
			s.Status = "Configuration reloaded"
		}
	case action.CollaboratorReady:
		return a.collaboratorReady(act)
	case action.CollaboratorFailed:
		a.collaboratorFailed(act)

	case action.GoToPhase:
		nav := a.navigator()
		if nav.GoTo(act.Phase) {
			s.Phase = nav.Current
			return a.autoTrigger()
		}
	case action.NextPhase, action.PrevPhase:
		_, forward := act.(action.NextPhase)
		nav := a.navigator()
		if nav.Step(forward) {
			s.Phase = nav.Current
			return a.autoTrigger()
		}

	case action.ScrollUp:
		a.scroll(-1)
	case action.ScrollDown:
		a.scroll(1)
	case action.Confirm:
		return a.confirm()
	case action.Escape:
		if s.Phase == phase.Research {
			s.Research.Detail = false
		}

	case action.SubmitProject:
		a.submitProject(act)
	case action.ProjectAnalyzed:
		return a.projectAnalyzed(act)
	case action.ProjectAnalysisFailed:
		s.Intake.Analyzing = false
		s.Intake.Err = act.Err
		s.Intake.focusField(s.Intake.Focus)
		s.Status = "Project analysis failed: " + act.Err

	case action.StartResearch:
		a.startResearch()
	case action.SearchQueryStarted:
		s.Research.Query = act.Query
		s.Research.QueryIndex = act.Index
		s.Research.QueryTotal = act.Total
		s.Status = fmt.Sprintf("Searching (%d/%d): %s", act.Index+1, act.Total, act.Query)
	case action.PapersFound:
		a.papersFound(act)
	case action.SearchQueryFailed:
		s.Research.FailedQueries++
		s.Status = fmt.Sprintf("Query failed: %s", act.Err)
	case action.ResearchComplete:
		s.Research.Searching = false
		s.Status = fmt.Sprintf("Found %d papers", len(s.Research.Papers))
		return a.autoTrigger()
	case action.ResearchFailed:
		s.Research.Searching = false
		s.Research.Err = act.Err
		s.Status = "Research failed: " + act.Err

	case action.StartExtraction:
		return a.startExtraction(act)
	case action.ExtractionStarted:
		if s.Techniques.Job.Tracks(act.PaperID) && !s.Techniques.Job.Terminal(act.PaperID) {
			s.Techniques.Active = append(s.Techniques.Active, act.PaperID)
		}
	case action.TechniqueExtracted:
		return a.techniqueExtracted(act)
	case action.TechniqueExtractionFailed:
		return a.techniqueFailed(act)
	case action.ExtractionComplete:
		return a.extractionComplete()
	case action.ToggleTechnique:
		a.toggleTechnique(act.Index)

	case action.StartGeneration:
		return a.startGeneration()
	case action.VariantGenerated:
		return a.variantGenerated(act)
	case action.VariantGenerationFailed:
		return a.variantFailed(act)
	case action.GenerationComplete:
		return a.generationComplete()

	case action.StartBenchmark:
		return a.startBenchmark()
	case action.BenchmarkUpdated:
		return a.benchmarkUpdated(act)
	case action.BenchmarkUnitFailed:
		return a.benchmarkFailed(act)
	case action.BenchmarkComplete:
		s.Bench.Benchmarking = false
		s.Status = fmt.Sprintf("Benchmark finished (%d failed)", len(s.Bench.Errors))
	case action.RateSelected:
		return a.rateSelected()
	case action.UserRated:
		a.userRated(act)

	case action.OpenMergeDialog:
		a.openMergeDialog()
	case action.CloseMergeDialog:
		s.Merge.Open = false
	case action.StartMerge:
		a.startMerge(act)
	case action.MergeComplete:
		return a.mergeComplete(act)
	case action.MergeFailed:
		s.Merge.Merging = false
		s.Status = "Merge failed: " + act.Err

	default:
		// Edit actions outside editing mode land here.
	}
	return nil
}

func (a *App) navigator() phase.Navigator {
	s := a.State
	return phase.Navigator{
		Current: s.Phase,
		Locked: func() bool {
			return s.InputMode() == action.ModeEditing || s.Merge.Open
		},
	}
}

// ready returns the effects, or nil after recording why they are missing.
func (a *App) ready() Effects {
	if a.effects != nil {
		return a.effects
	}
	switch a.State.Collaborator.Status {
	case CollaboratorFailed:
		a.State.Status = errors.ErrCollaboratorUnavailable.Error() + ": " + a.State.Collaborator.Err
	default:
		a.State.Status = "Collaborator is still starting"
	}
	return nil
}

func (a *App) collaboratorReady(act action.CollaboratorReady) action.Action {
	s := a.State
	s.Collaborator.Status = CollaboratorReady
	s.Collaborator.Handle = act.Handle
	s.Collaborator.Err = ""
	if a.connect != nil {
		a.effects = a.connect(act.Handle)
	}
	s.Status = "Collaborator ready at " + act.Handle.BaseURL
	a.logger.Info("collaborator ready", "base_url", act.Handle.BaseURL, "pid", act.Handle.PID)

	if p := a.pending; p != nil {
		a.pending = nil
		return p
	}
	return a.autoTrigger()
}

func (a *App) collaboratorFailed(act action.CollaboratorFailed) {
	s := a.State
	s.Collaborator.Status = CollaboratorFailed
	s.Collaborator.Err = act.Err
	s.Status = "Collaborator failed: " + act.Err
	a.logger.Error("collaborator failed", "error", act.Err)

	if a.pending != nil {
		a.pending = nil
		s.Intake.Analyzing = false
		s.Intake.Err = errors.ErrCollaboratorUnavailable.Error()
		s.Intake.focusField(s.Intake.Focus)
	}
}

func clamp(i, n int) int {
	if n <= 0 {
		return 0
	}
	return max(0, min(n-1, i))
}

func (a *App) scroll(delta int) {
	s := a.State
	switch s.Phase {
	case phase.Research:
		s.Research.Selected = clamp(s.Research.Selected+delta, len(s.Research.Papers))
	case phase.Techniques:
		s.Techniques.Selected = clamp(s.Techniques.Selected+delta, len(s.Techniques.Cards))
	case phase.Generation:
		s.Generation.Selected = clamp(s.Generation.Selected+delta, len(s.Generation.Variants))
	case phase.Benchmark:
		s.Bench.Selected = clamp(s.Bench.Selected+delta, len(s.Generation.Ready()))
	}
}

// confirm is Enter in normal mode. On an empty phase it (re)starts the
// phase's job; otherwise it acts on the highlighted row.
func (a *App) confirm() action.Action {
	s := a.State
	switch s.Phase {
	case phase.Research:
		if len(s.Research.Papers) == 0 {
			if !s.Research.Searching {
				return action.StartResearch{}
			}
			return nil
		}
		s.Research.Detail = !s.Research.Detail
	case phase.Techniques:
		if len(s.Techniques.Cards) == 0 {
			if !s.Techniques.Extracting && len(s.Research.Papers) > 0 {
				return action.StartExtraction{Papers: slices.Clone(s.Research.Papers)}
			}
			return nil
		}
		return action.ToggleTechnique{Index: s.Techniques.Selected}
	case phase.Generation:
		if !s.Generation.Generating {
			return action.StartGeneration{}
		}
	case phase.Benchmark:
		if !s.Bench.Benchmarking {
			return action.StartBenchmark{}
		}
	}
	return nil
}

// editIntake handles actions while the intake form captures input. It
// reports false for actions that should take the normal path.
func (a *App) editIntake(act action.Action) (action.Action, bool) {
	in := &a.State.Intake
	if in.handleEdit(act) {
		return nil, true
	}
	switch act.(type) {
	case action.SubmitForm, action.Confirm:
		norm, err := in.submit()
		if err != nil {
			a.State.Status = in.Err
			return nil, true
		}
		return action.SubmitProject{Path: norm.Path, Description: norm.Description}, true
	case action.ScrollUp:
		in.focusField(action.FieldPath)
		return nil, true
	case action.ScrollDown:
		in.focusField(action.FieldDescription)
		return nil, true
	case action.Escape:
		return nil, true
	}
	return nil, false
}

func (a *App) submitProject(act action.SubmitProject) {
	s := a.State
	s.Intake.setValues(act.Path, act.Description)
	s.Intake.Request = act.Description
	s.Intake.Err = ""

	if a.effects == nil && s.Collaborator.Status == CollaboratorStarting {
		a.pending = act
		s.Intake.Analyzing = true
		s.Status = "Waiting for collaborator to start"
		return
	}
	fx := a.ready()
	if fx == nil {
		s.Intake.Analyzing = false
		s.Intake.Err = errors.ErrCollaboratorUnavailable.Error()
		return
	}
	s.Intake.Analyzing = true
	s.Status = "Analyzing " + act.Path
	fx.Analyze(act.Path, act.Description)
}

// projectAnalyzed stores the profile, discards everything derived from a
// previous project and moves on to research.
func (a *App) projectAnalyzed(act action.ProjectAnalyzed) action.Action {
	s := a.State
	profile := act.Profile
	s.Intake.Profile = &profile
	s.Intake.Analyzing = false
	s.Intake.Err = ""

	s.Research = ResearchState{}
	s.Techniques = TechniqueState{}
	s.Generation = GenerationState{}
	s.Bench = BenchState{}
	s.Merge.Open = false
	s.Lineage = variant.NewForest()

	s.Phase = phase.Research
	s.Status = "Analyzed " + profile.Headline()
	return a.autoTrigger()
}
