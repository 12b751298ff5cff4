// Package action defines every event that flows through the application.
// Actions are immutable values: producers build one, send it to the bus and
// never touch it again. The reducer is the only consumer.
package action

import (
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/config"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// Action is the closed set of events. Only types in this package implement
// it.
type Action interface {
	// Type returns a stable identifier, "category.name", used in logs.
	Type() string
	sealed()
}

type base struct{}

func (base) sealed() {}

// InputMode selects the keymap. Editing forwards printable keys to the
// focused text field.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeEditing
)

func (m InputMode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "normal"
}

// Field is an intake text field.
type Field int

const (
	FieldPath Field = iota
	FieldDescription
)

// -----------------------------------------------------------------------------
// Navigation
// -----------------------------------------------------------------------------

type GoToPhase struct {
	base
	Phase phase.Phase
}

type NextPhase struct{ base }
type PrevPhase struct{ base }

func (GoToPhase) Type() string { return "nav.goto" }
func (NextPhase) Type() string { return "nav.next" }
func (PrevPhase) Type() string { return "nav.prev" }

// -----------------------------------------------------------------------------
// Global
// -----------------------------------------------------------------------------

type Quit struct{ base }
type ToggleHelp struct{ base }

// SetStatus replaces the status bar message.
type SetStatus struct {
	base
	Message string
}

type ClearStatus struct{ base }

// Tick drives the spinner. It competes for the queue like any other action.
type Tick struct{ base }

// ConfigReloaded carries a freshly validated configuration. Jobs already in
// flight keep the limits they started with.
type ConfigReloaded struct {
	base
	Config *config.Config
}

// CollaboratorReady reports that the supervisor reached Healthy.
type CollaboratorReady struct {
	base
	Handle collaborator.Handle
}

// CollaboratorFailed reports a startup failure. Collaborator-backed phases
// stay disabled for the rest of the run.
type CollaboratorFailed struct {
	base
	Err string
}

func (Quit) Type() string               { return "app.quit" }
func (ToggleHelp) Type() string         { return "app.help" }
func (SetStatus) Type() string          { return "status.set" }
func (ClearStatus) Type() string        { return "status.clear" }
func (Tick) Type() string               { return "app.tick" }
func (ConfigReloaded) Type() string     { return "config.reloaded" }
func (CollaboratorReady) Type() string  { return "collaborator.ready" }
func (CollaboratorFailed) Type() string { return "collaborator.failed" }

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

type ScrollUp struct{ base }
type ScrollDown struct{ base }

// Confirm is Enter in normal mode; its meaning depends on the phase.
type Confirm struct{ base }

// Escape closes whichever overlay or detail view is open.
type Escape struct{ base }

func (ScrollUp) Type() string   { return "select.up" }
func (ScrollDown) Type() string { return "select.down" }
func (Confirm) Type() string    { return "select.confirm" }
func (Escape) Type() string     { return "select.escape" }

// -----------------------------------------------------------------------------
// Intake text editing
// -----------------------------------------------------------------------------

type CharInput struct {
	base
	Rune rune
}

type Backspace struct{ base }
type DeleteWord struct{ base }

// Newline inserts a line break in the description; in the path field it
// moves focus to the description.
type Newline struct{ base }

type SwitchField struct{ base }
type SubmitForm struct{ base }

// CursorMove is a cursor motion inside the focused field.
type CursorMove int

const (
	CursorLeft CursorMove = iota
	CursorRight
	CursorLineStart
	CursorLineEnd
)

type MoveCursor struct {
	base
	Move CursorMove
}

// Paste inserts text at once (bracketed paste). Only the first line is
// kept for the path field.
type Paste struct {
	base
	Text string
}

func (CharInput) Type() string   { return "input.char" }
func (Backspace) Type() string   { return "input.backspace" }
func (DeleteWord) Type() string  { return "input.delete_word" }
func (Newline) Type() string     { return "input.newline" }
func (SwitchField) Type() string { return "input.switch_field" }
func (SubmitForm) Type() string  { return "input.submit" }
func (Paste) Type() string       { return "input.paste" }
func (MoveCursor) Type() string  { return "input.cursor" }

// -----------------------------------------------------------------------------
// Phase 1: project intake
// -----------------------------------------------------------------------------

// SubmitProject requests analysis of a validated intake.
type SubmitProject struct {
	base
	Path        string
	Description string
}

type ProjectAnalyzed struct {
	base
	Profile project.Profile
}

type ProjectAnalysisFailed struct {
	base
	Err string
}

func (SubmitProject) Type() string         { return "intake.submit" }
func (ProjectAnalyzed) Type() string       { return "intake.analyzed" }
func (ProjectAnalysisFailed) Type() string { return "intake.failed" }

// -----------------------------------------------------------------------------
// Phase 2: research
// -----------------------------------------------------------------------------

type StartResearch struct{ base }

// SearchQueryStarted is sent before each query; Index is 0-based.
type SearchQueryStarted struct {
	base
	Query string
	Index int
	Total int
}

type PapersFound struct {
	base
	Papers []research.Paper
}

// SearchQueryFailed is reported per query; remaining queries still run.
type SearchQueryFailed struct {
	base
	Query string
	Err   string
}

type ResearchComplete struct{ base }

type ResearchFailed struct {
	base
	Err string
}

func (StartResearch) Type() string      { return "research.start" }
func (SearchQueryStarted) Type() string { return "research.query_started" }
func (PapersFound) Type() string        { return "research.papers" }
func (SearchQueryFailed) Type() string  { return "research.query_failed" }
func (ResearchComplete) Type() string   { return "research.complete" }
func (ResearchFailed) Type() string     { return "research.failed" }

// -----------------------------------------------------------------------------
// Phase 3: technique extraction and selection
// -----------------------------------------------------------------------------

type StartExtraction struct {
	base
	Papers []research.Paper
}

// ExtractionStarted is progress only; it is not a terminal report.
type ExtractionStarted struct {
	base
	PaperID string
	Title   string
}

// TechniqueExtracted is the success terminal report for one paper.
type TechniqueExtracted struct {
	base
	PaperID   string
	Technique research.Technique
}

// TechniqueExtractionFailed is the failure terminal report for one paper.
type TechniqueExtractionFailed struct {
	base
	PaperID string
	Err     string
}

// ExtractionComplete is synthesized once when every paper is terminal.
type ExtractionComplete struct{ base }

type ToggleTechnique struct {
	base
	Index int
}

func (StartExtraction) Type() string           { return "extract.start" }
func (ExtractionStarted) Type() string         { return "extract.started" }
func (TechniqueExtracted) Type() string        { return "extract.done" }
func (TechniqueExtractionFailed) Type() string { return "extract.failed" }
func (ExtractionComplete) Type() string        { return "extract.complete" }
func (ToggleTechnique) Type() string           { return "extract.toggle" }

// -----------------------------------------------------------------------------
// Phase 4: variant generation
// -----------------------------------------------------------------------------

type StartGeneration struct{ base }

type VariantGenerated struct {
	base
	VariantID       string
	ModifiedFiles   []string
	NewDependencies []string
}

type VariantGenerationFailed struct {
	base
	VariantID string
	Err       string
}

// GenerationComplete is synthesized once when every variant is terminal.
type GenerationComplete struct{ base }

func (StartGeneration) Type() string         { return "generate.start" }
func (VariantGenerated) Type() string        { return "generate.done" }
func (VariantGenerationFailed) Type() string { return "generate.failed" }
func (GenerationComplete) Type() string      { return "generate.complete" }

// -----------------------------------------------------------------------------
// Phase 5: benchmarking
// -----------------------------------------------------------------------------

type StartBenchmark struct{ base }

// BenchmarkUpdated is the success terminal report for one (variant, kind)
// unit. Exactly one of Execution and Judge is set.
type BenchmarkUpdated struct {
	base
	VariantID string
	Kind      variant.BenchKind
	Execution *variant.ExecutionMetrics
	Judge     *variant.JudgeScores
}

// BenchmarkUnitFailed is the failure terminal report for one unit.
type BenchmarkUnitFailed struct {
	base
	VariantID string
	Kind      variant.BenchKind
	Err       string
}

// BenchmarkComplete is synthesized once when every unit is terminal.
type BenchmarkComplete struct{ base }

// RateSelected bumps the star rating of the highlighted variant.
type RateSelected struct{ base }

type UserRated struct {
	base
	VariantID string
	Stars     int
	Notes     string
}

func (StartBenchmark) Type() string      { return "bench.start" }
func (BenchmarkUpdated) Type() string    { return "bench.done" }
func (BenchmarkUnitFailed) Type() string { return "bench.failed" }
func (BenchmarkComplete) Type() string   { return "bench.complete" }
func (RateSelected) Type() string        { return "bench.rate_selected" }
func (UserRated) Type() string           { return "bench.rated" }

// -----------------------------------------------------------------------------
// Merging
// -----------------------------------------------------------------------------

type OpenMergeDialog struct{ base }
type CloseMergeDialog struct{ base }

// StartMerge requests a hybrid of two variants. Blends are percentages.
type StartMerge struct {
	base
	VariantA string
	VariantB string
	BlendA   int
	BlendB   int
}

// MergeComplete carries the new Ready variant. Lineage is recorded by the
// reducer from Variant.Merge.
type MergeComplete struct {
	base
	Variant variant.Variant
}

type MergeFailed struct {
	base
	Err string
}

func (OpenMergeDialog) Type() string  { return "merge.open" }
func (CloseMergeDialog) Type() string { return "merge.close" }
func (StartMerge) Type() string       { return "merge.start" }
func (MergeComplete) Type() string    { return "merge.done" }
func (MergeFailed) Type() string      { return "merge.failed" }

// IsUserInput reports whether a came from a key press rather than from a
// background task or the ticker.
func IsUserInput(a Action) bool {
	switch a.(type) {
	case GoToPhase, NextPhase, PrevPhase, Quit, ToggleHelp,
		ScrollUp, ScrollDown, Confirm, Escape,
		CharInput, Backspace, DeleteWord, Newline, SwitchField, SubmitForm, Paste, MoveCursor,
		ToggleTechnique, RateSelected, OpenMergeDialog, CloseMergeDialog:
		return true
	default:
		return false
	}
}
