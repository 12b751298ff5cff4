package app

import (
	"os"
	"strings"
	"testing"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/config"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/fanout"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// fakeEffects records every job the reducer starts. The reducer calls it
// from a single goroutine, so no locking is needed.
type fakeEffects struct {
	analyzed  []string
	searches  [][]string
	params    []fanout.SearchParams
	extracts  [][]research.Paper
	generates [][]fanout.GenerateUnit
	benches   [][]fanout.BenchUnit
	bench     []fanout.BenchParams
	merges    []fanout.MergeJob
}

func (f *fakeEffects) Analyze(path, _ string) { f.analyzed = append(f.analyzed, path) }
func (f *fakeEffects) Search(q []string, p fanout.SearchParams) {
	f.searches = append(f.searches, q)
	f.params = append(f.params, p)
}
func (f *fakeEffects) Extract(papers []research.Paper, _, _ string) {
	f.extracts = append(f.extracts, papers)
}
func (f *fakeEffects) Generate(units []fanout.GenerateUnit, _ project.Profile) {
	f.generates = append(f.generates, units)
}
func (f *fakeEffects) Benchmark(units []fanout.BenchUnit, p fanout.BenchParams) {
	f.benches = append(f.benches, units)
	f.bench = append(f.bench, p)
}
func (f *fakeEffects) Merge(job fanout.MergeJob) { f.merges = append(f.merges, job) }

func newTestApp(t *testing.T) (*App, *fakeEffects) {
	t.Helper()
	fx := &fakeEffects{}
	a := New(NewState("", ""), config.Default(), func(collaborator.Handle) Effects { return fx }, nil)
	return a, fx
}

func connect(a *App) {
	a.Process(action.CollaboratorReady{Handle: collaborator.Handle{PID: 42, Port: 4000, BaseURL: "http://127.0.0.1:4000"}})
}

func paper(id string, withSource bool) research.Paper {
	p := research.Paper{ID: id, Title: "Paper " + id}
	if withSource {
		p.PDFURL = "https://example.org/" + id + ".pdf"
	}
	return p
}

func technique(paperID string, score float64) research.Technique {
	return research.Technique{Name: "Technique " + paperID, PaperID: paperID, RelevanceScore: score}
}

// withReadyVariants puts n Ready variants on the state as if generated.
func withReadyVariants(a *App, names ...string) {
	s := a.State
	s.Intake.Profile = &project.Profile{Path: "/work/project"}
	for i, name := range names {
		tech := research.Technique{Name: name, PaperID: name}
		v := variant.New(i+1, tech, "uniq")
		v.Status = variant.StatusReady
		s.Generation.Variants = append(s.Generation.Variants, v)
		s.Lineage.Add(variant.Attach(v.ID, tech))
	}
}

func TestPipelineReplay(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	s := a.State
	dir := t.TempDir()

	// Intake form
	if s.InputMode() != action.ModeEditing {
		t.Fatalf("input mode = %v, want editing", s.InputMode())
	}
	for _, act := range []action.Action{
		action.Paste{Text: dir},
		action.SwitchField{},
		action.Paste{Text: "add a smarter cache"},
		action.SubmitForm{},
	} {
		a.Process(act)
	}
	if len(fx.analyzed) != 1 || fx.analyzed[0] != dir {
		t.Fatalf("analyzed = %v, want [%s]", fx.analyzed, dir)
	}
	if !s.Intake.Analyzing || s.InputMode() != action.ModeNormal {
		t.Fatal("form should be locked while analyzing")
	}

	// Analysis lands, research starts by itself.
	a.Process(action.ProjectAnalyzed{Profile: project.Profile{Path: dir, Summary: "a web service"}})
	if s.Phase != phase.Research {
		t.Fatalf("phase = %v, want research", s.Phase)
	}
	if len(fx.searches) != 1 || len(fx.searches[0]) == 0 {
		t.Fatalf("searches = %v, want one batch of queries", fx.searches)
	}
	if fx.params[0].YearMin == nil || *fx.params[0].YearMin != 2020 || fx.params[0].YearMax != nil {
		t.Errorf("year bounds not taken from config: %+v", fx.params[0])
	}

	a.Process(action.SearchQueryStarted{Query: "q", Index: 0, Total: 1})
	a.Process(action.PapersFound{Papers: []research.Paper{paper("p1", true), paper("p2", false), paper("p3", true)}})
	a.Process(action.ResearchComplete{})
	if s.Research.Searching || len(s.Research.Papers) != 3 {
		t.Fatalf("research state = searching %v, %d papers", s.Research.Searching, len(s.Research.Papers))
	}

	// Techniques
	a.Process(action.NextPhase{})
	if s.Phase != phase.Techniques || len(fx.extracts) != 1 || len(fx.extracts[0]) != 3 {
		t.Fatalf("phase %v, extracts %d", s.Phase, len(fx.extracts))
	}
	a.Process(action.ExtractionStarted{PaperID: "p1", Title: "Paper p1"})
	a.Process(action.TechniqueExtracted{PaperID: "p1", Technique: technique("p1", 0.5)})
	a.Process(action.TechniqueExtractionFailed{PaperID: "p2", Err: errors.ErrNoSource.Error()})
	if !s.Techniques.Extracting {
		t.Fatal("extraction finished before every paper reported")
	}
	a.Process(action.TechniqueExtracted{PaperID: "p3", Technique: technique("p3", 0.9)})
	if s.Techniques.Extracting {
		t.Fatal("extraction did not complete after the last report")
	}
	if len(s.Techniques.Cards) != 2 || s.Techniques.Cards[0].PaperID != "p3" {
		t.Fatalf("cards = %+v, want p3 first", s.Techniques.Cards)
	}
	if s.Techniques.SelectedCount() != 2 {
		t.Fatalf("selected = %d, want 2", s.Techniques.SelectedCount())
	}
	if len(s.Techniques.Errors) != 1 || s.Techniques.Errors[0].Unit != "Paper p2" {
		t.Fatalf("errors = %+v", s.Techniques.Errors)
	}
	if len(s.Techniques.Active) != 0 {
		t.Fatalf("active = %v, want empty", s.Techniques.Active)
	}

	// Generation
	a.Process(action.NextPhase{})
	if len(fx.generates) != 1 || len(fx.generates[0]) != 2 {
		t.Fatalf("generates = %v", fx.generates)
	}
	units := fx.generates[0]
	if units[0].VariantID != "v1" || !strings.HasPrefix(units[0].Branch, "uniq/variant-1-") {
		t.Fatalf("first unit = %+v", units[0])
	}
	a.Process(action.VariantGenerated{VariantID: "v1", ModifiedFiles: []string{"cache.go"}})
	a.Process(action.VariantGenerationFailed{VariantID: "v2", Err: "model refused"})
	if s.Generation.Generating {
		t.Fatal("generation did not complete")
	}
	if v := s.Generation.Find("v2"); v.Status != variant.StatusFailed || v.FailureReason != "model refused" {
		t.Fatalf("v2 = %+v", v)
	}

	// Benchmark
	a.Process(action.NextPhase{})
	if len(fx.benches) != 1 || len(fx.benches[0]) != 2 {
		t.Fatalf("benches = %v, want 2 units for v1", fx.benches)
	}
	if fx.bench[0].ProjectPath != dir || fx.bench[0].TimeoutSeconds != 300 {
		t.Errorf("bench params = %+v", fx.bench[0])
	}
	a.Process(action.BenchmarkUpdated{VariantID: "v1", Kind: variant.BenchExecution,
		Execution: &variant.ExecutionMetrics{BuildSuccess: true}})
	a.Process(action.BenchmarkUpdated{VariantID: "v1", Kind: variant.BenchJudge,
		Judge: &variant.JudgeScores{Overall: 8}})
	if s.Bench.Benchmarking {
		t.Fatal("benchmark did not complete")
	}
	v1 := s.Generation.Find("v1")
	if v1.Benchmark == nil || v1.Benchmark.Composite == nil {
		t.Fatal("v1 has no composite score")
	}

	a.Process(action.RateSelected{})
	a.Process(action.RateSelected{})
	if got := v1.Benchmark.UserRating.Stars; got != 2 {
		t.Fatalf("stars = %d, want 2", got)
	}
}

func TestAutoTriggerOncePerEpisode(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	s := a.State

	a.Process(action.ProjectAnalyzed{Profile: project.Profile{Path: "/p", Summary: "s"}})
	a.Process(action.ResearchComplete{})
	if len(fx.searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(fx.searches))
	}

	// Leaving and re-entering an empty phase does not search again.
	a.Process(action.GoToPhase{Phase: phase.Intake})
	a.Process(action.GoToPhase{Phase: phase.Research})
	if len(fx.searches) != 1 {
		t.Fatalf("searches = %d after re-entry, want 1", len(fx.searches))
	}

	// Confirm retries explicitly.
	a.Process(action.Confirm{})
	if len(fx.searches) != 2 {
		t.Fatalf("searches = %d after confirm, want 2", len(fx.searches))
	}
	a.Process(action.PapersFound{Papers: []research.Paper{paper("p1", true)}})
	a.Process(action.ResearchComplete{})

	a.Process(action.NextPhase{})
	a.Process(action.TechniqueExtractionFailed{PaperID: "p1", Err: "boom"})
	if s.Techniques.Extracting || len(fx.extracts) != 1 {
		t.Fatalf("extracting %v, extracts %d", s.Techniques.Extracting, len(fx.extracts))
	}
	a.Process(action.PrevPhase{})
	a.Process(action.NextPhase{})
	if len(fx.extracts) != 1 {
		t.Fatalf("extracts = %d after re-entry, want 1", len(fx.extracts))
	}

	// New papers make extraction eligible again.
	a.Process(action.PapersFound{Papers: []research.Paper{paper("p9", true)}})
	a.Process(action.PrevPhase{})
	a.Process(action.NextPhase{})
	if len(fx.extracts) != 2 {
		t.Fatalf("extracts = %d after new papers, want 2", len(fx.extracts))
	}
}

func TestStrayReportsAreIgnored(t *testing.T) {
	a, _ := newTestApp(t)
	connect(a)
	s := a.State
	s.Intake.Profile = &project.Profile{Path: "/p"}
	s.Phase = phase.Techniques

	a.Process(action.StartExtraction{Papers: []research.Paper{paper("p1", true), paper("p2", true)}})
	a.Process(action.TechniqueExtracted{PaperID: "zzz", Technique: technique("zzz", 1)})
	a.Process(action.TechniqueExtracted{PaperID: "p1", Technique: technique("p1", 0.4)})
	a.Process(action.TechniqueExtracted{PaperID: "p1", Technique: technique("p1", 0.4)})
	if len(s.Techniques.Cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(s.Techniques.Cards))
	}
	if s.Techniques.Job.Done != 1 || !s.Techniques.Extracting {
		t.Fatalf("done = %d, extracting = %v", s.Techniques.Job.Done, s.Techniques.Extracting)
	}
}

func TestEmptyExtractionCompletesImmediately(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	a.State.Intake.Profile = &project.Profile{Path: "/p"}

	a.Process(action.StartExtraction{})
	if a.State.Techniques.Extracting {
		t.Fatal("zero-paper extraction should complete at once")
	}
	if len(fx.extracts) != 1 {
		t.Fatalf("extracts = %d, want 1", len(fx.extracts))
	}
}

func TestNavigation(t *testing.T) {
	a, _ := newTestApp(t)
	connect(a)
	s := a.State

	a.Process(action.NextPhase{})
	if s.Phase != phase.Intake {
		t.Fatalf("stepped out of intake while editing: %v", s.Phase)
	}
	a.Process(action.GoToPhase{Phase: phase.Benchmark})
	if s.Phase != phase.Benchmark {
		t.Fatalf("GoTo ignored: %v", s.Phase)
	}
	a.Process(action.NextPhase{})
	if s.Phase != phase.Benchmark {
		t.Fatalf("stepped past the last phase: %v", s.Phase)
	}
	a.Process(action.PrevPhase{})
	if s.Phase != phase.Generation {
		t.Fatalf("phase = %v, want generation", s.Phase)
	}
}

func TestHelpOverlay(t *testing.T) {
	a, _ := newTestApp(t)
	connect(a)
	s := a.State
	s.Phase = phase.Research
	s.Intake.Profile = &project.Profile{}
	s.Research.Papers = []research.Paper{paper("p1", true), paper("p2", true)}

	a.Process(action.ToggleHelp{})
	if !s.Help {
		t.Fatal("help not shown")
	}
	a.Process(action.Tick{})
	if !s.Help || s.Frame != 1 {
		t.Fatalf("tick changed help (%v) or frame (%d)", s.Help, s.Frame)
	}
	a.Process(action.ScrollDown{})
	if s.Help {
		t.Fatal("key did not close help")
	}
	if s.Research.Selected != 0 {
		t.Fatal("key that closed help was also applied")
	}
	a.Process(action.ToggleHelp{})
	a.Process(action.Quit{})
	if !a.Quitting() {
		t.Fatal("quit swallowed by help")
	}
}

func TestIntakeEditing(t *testing.T) {
	tests := []struct {
		name     string
		actions  []action.Action
		wantPath string
		wantDesc string
		wantFoc  action.Field
	}{
		{
			name:     "typing and backspace",
			actions:  []action.Action{action.CharInput{Rune: 'a'}, action.CharInput{Rune: 'é'}, action.Backspace{}},
			wantPath: "a",
		},
		{
			name:     "paste keeps first line of path",
			actions:  []action.Action{action.Paste{Text: "/tmp/x\n/tmp/y"}},
			wantPath: "/tmp/x",
		},
		{
			name: "newline in path moves to description",
			actions: []action.Action{
				action.Paste{Text: "/tmp"}, action.Newline{},
				action.Paste{Text: "one"}, action.Newline{}, action.Paste{Text: "two"},
			},
			wantPath: "/tmp",
			wantDesc: "one\ntwo",
			wantFoc:  action.FieldDescription,
		},
		{
			name:    "newline on empty path stays",
			actions: []action.Action{action.Newline{}},
			wantFoc: action.FieldPath,
		},
		{
			name: "delete word",
			actions: []action.Action{
				action.SwitchField{}, action.Paste{Text: "make it fast  "}, action.DeleteWord{},
			},
			wantDesc: "make it ",
			wantFoc:  action.FieldDescription,
		},
		{
			name: "edit in the middle of the path",
			actions: []action.Action{
				action.Paste{Text: "/tmpx"}, action.MoveCursor{Move: action.CursorLeft},
				action.Backspace{}, action.CharInput{Rune: 'q'},
			},
			wantPath: "/tmqx",
		},
		{
			name: "insert at start of description",
			actions: []action.Action{
				action.SwitchField{}, action.Paste{Text: "fast"},
				action.MoveCursor{Move: action.CursorLineStart}, action.Paste{Text: "make it "},
				action.MoveCursor{Move: action.CursorLineEnd}, action.CharInput{Rune: '!'},
			},
			wantDesc: "make it fast!",
			wantFoc:  action.FieldDescription,
		},
		{
			name:     "digits are text, not navigation",
			actions:  []action.Action{action.CharInput{Rune: '3'}},
			wantPath: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t)
			for _, act := range tt.actions {
				a.Process(act)
			}
			in := a.State.Intake
			if in.Path() != tt.wantPath || in.Description() != tt.wantDesc || in.Focus != tt.wantFoc {
				t.Errorf("got path %q desc %q focus %v, want %q %q %v",
					in.Path(), in.Description(), in.Focus, tt.wantPath, tt.wantDesc, tt.wantFoc)
			}
			if a.State.Phase != phase.Intake {
				t.Errorf("phase = %v", a.State.Phase)
			}
		})
	}
}

func TestIntakeValidation(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	s := a.State

	missing := t.TempDir() + string(os.PathSeparator) + "nope"
	a.Process(action.Paste{Text: missing})
	a.Process(action.SwitchField{})
	a.Process(action.Paste{Text: "something"})
	a.Process(action.SubmitForm{})
	if len(fx.analyzed) != 0 || s.Intake.Analyzing {
		t.Fatal("invalid path was submitted")
	}
	if s.Intake.Err == "" || s.Status != s.Intake.Err {
		t.Fatalf("err %q status %q", s.Intake.Err, s.Status)
	}
	if s.InputMode() != action.ModeEditing {
		t.Fatal("form should stay editable after a validation error")
	}
}

func TestSubmitBeforeCollaboratorReady(t *testing.T) {
	t.Run("deferred until ready", func(t *testing.T) {
		a, fx := newTestApp(t)
		a.Process(action.SubmitProject{Path: "/p", Description: "d"})
		if !a.State.Intake.Analyzing || len(fx.analyzed) != 0 {
			t.Fatal("submit should wait for the collaborator")
		}
		connect(a)
		if len(fx.analyzed) != 1 || fx.analyzed[0] != "/p" {
			t.Fatalf("analyzed = %v", fx.analyzed)
		}
	})

	t.Run("dropped on failure", func(t *testing.T) {
		a, fx := newTestApp(t)
		a.Process(action.SubmitProject{Path: "/p", Description: "d"})
		a.Process(action.CollaboratorFailed{Err: "did not become healthy"})
		in := a.State.Intake
		if in.Analyzing || in.Err != errors.ErrCollaboratorUnavailable.Error() {
			t.Fatalf("intake = %+v", in)
		}
		a.Process(action.SubmitProject{Path: "/p", Description: "d"})
		if len(fx.analyzed) != 0 {
			t.Fatal("analysis started without a collaborator")
		}
		if !strings.Contains(a.State.Status, "did not become healthy") {
			t.Fatalf("status = %q", a.State.Status)
		}
	})
}

func TestMergeDialog(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha", "beta")
	s := a.State
	s.Phase = phase.Generation

	a.Process(action.OpenMergeDialog{})
	if !s.Merge.Open || len(s.Merge.Candidates) != 2 {
		t.Fatalf("merge = %+v", s.Merge)
	}

	a.Process(action.ScrollDown{})
	a.Process(action.ScrollDown{})
	if s.Merge.Field != MergeFieldBlend {
		t.Fatalf("field = %v, want blend", s.Merge.Field)
	}
	a.Process(action.NextPhase{})
	if s.Merge.BlendA != variant.BlendThreeQuarter || s.Merge.BlendB != variant.BlendQuarter {
		t.Fatalf("blend = %v/%v, want 75/25", s.Merge.BlendA, s.Merge.BlendB)
	}
	if s.Phase != phase.Generation {
		t.Fatal("arrow keys changed phase while the dialog was open")
	}

	a.Process(action.ScrollUp{})
	a.Process(action.NextPhase{})
	if s.Merge.A != s.Merge.B {
		t.Fatalf("A=%d B=%d, want equal", s.Merge.A, s.Merge.B)
	}
	a.Process(action.Confirm{})
	if !s.Merge.Open || len(fx.merges) != 0 {
		t.Fatal("merged a variant with itself")
	}

	a.Process(action.NextPhase{})
	a.Process(action.Confirm{})
	if s.Merge.Open || !s.Merge.Merging || len(fx.merges) != 1 {
		t.Fatalf("merge not started: %+v", s.Merge)
	}
	job := fx.merges[0]
	if job.Request.BlendA != 75 || job.Request.BlendB != 25 {
		t.Errorf("blend = %d/%d, want 75/25", job.Request.BlendA, job.Request.BlendB)
	}
	if !strings.HasPrefix(job.Request.TargetBranch, "uniq/merge-v1-v2-") {
		t.Errorf("target branch = %q", job.Request.TargetBranch)
	}
	if job.Request.Project.Path != "/work/project" {
		t.Errorf("project = %+v", job.Request.Project)
	}

	merged := variant.NewMerged(job.ID, job.Request.TargetBranch, job.DisplayName, job.Spec, nil, nil)
	a.Process(action.MergeComplete{Variant: merged})
	if s.Merge.Merging || len(s.Generation.Variants) != 3 {
		t.Fatalf("merging %v, variants %d", s.Merge.Merging, len(s.Generation.Variants))
	}
	roots := s.Lineage.Roots()
	if len(roots) != 1 || roots[0].Find("v1") == nil || roots[0].Find("v2") == nil {
		t.Fatalf("lineage roots = %d, want one merge root over v1 and v2", len(roots))
	}
}

func TestMergeDialogNeedsTwoVariants(t *testing.T) {
	a, _ := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha")

	a.Process(action.OpenMergeDialog{})
	if a.State.Merge.Open {
		t.Fatal("dialog opened with one variant")
	}

	a.Process(action.StartMerge{VariantA: "v1", VariantB: "v1", BlendA: 50, BlendB: 50})
	if a.State.Merge.Merging {
		t.Fatal("self-merge accepted")
	}
}

func TestMergeEscapeCloses(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha", "beta")

	a.Process(action.OpenMergeDialog{})
	a.Process(action.Escape{})
	if a.State.Merge.Open || len(fx.merges) != 0 {
		t.Fatal("escape did not cancel the dialog")
	}
}

func TestMergeDialogGoToPhase(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha", "beta")
	s := a.State
	s.Phase = phase.Generation

	a.Process(action.OpenMergeDialog{})
	a.Process(action.NextPhase{})
	if s.Phase != phase.Generation || !s.Merge.Open {
		t.Fatal("next phase should adjust the dialog, not navigate")
	}
	a.Process(action.GoToPhase{Phase: phase.Research})
	if s.Merge.Open {
		t.Fatal("dialog still open after jumping away")
	}
	if s.Phase != phase.Research {
		t.Fatalf("phase = %v, want research", s.Phase)
	}
	if len(fx.merges) != 0 {
		t.Fatal("jumping away started a merge")
	}
}

func TestMergeInBenchmarkPhaseMeasuresNewVariant(t *testing.T) {
	a, fx := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha", "beta")
	s := a.State
	for i := range s.Generation.Variants {
		s.Generation.Variants[i].Benchmark = &variant.BenchmarkResults{}
	}
	s.Phase = phase.Benchmark
	s.Bench.Attempted = true

	spec := variant.MergeSpec{ParentA: "v1", ParentB: "v2", BlendA: variant.BlendHalf, BlendB: variant.BlendHalf}
	a.Process(action.MergeComplete{Variant: variant.NewMerged("m-1", "uniq/merge", "alpha + beta", spec, nil, nil)})

	if len(fx.benches) != 1 {
		t.Fatalf("benches = %d, want 1", len(fx.benches))
	}
	for _, u := range fx.benches[0] {
		if u.VariantID != "m-1" {
			t.Fatalf("re-measured %s", u.VariantID)
		}
	}
	if len(fx.benches[0]) != len(variant.BenchKinds()) {
		t.Fatalf("units = %d", len(fx.benches[0]))
	}
}

func TestBenchmarkFailuresStillComplete(t *testing.T) {
	a, _ := newTestApp(t)
	connect(a)
	withReadyVariants(a, "alpha")
	s := a.State

	a.Process(action.StartBenchmark{})
	a.Process(action.BenchmarkUnitFailed{VariantID: "v1", Kind: variant.BenchExecution, Err: "build timed out"})
	a.Process(action.BenchmarkUnitFailed{VariantID: "v1", Kind: variant.BenchExecution, Err: "again"})
	if !s.Bench.Benchmarking {
		t.Fatal("completed with the judge unit outstanding")
	}
	a.Process(action.BenchmarkUpdated{VariantID: "v1", Kind: variant.BenchJudge, Judge: &variant.JudgeScores{Overall: 5}})
	if s.Bench.Benchmarking {
		t.Fatal("benchmark did not complete")
	}
	if len(s.Bench.Errors) != 1 || s.Bench.Errors[0].Unit != "v1/execution" {
		t.Fatalf("errors = %+v", s.Bench.Errors)
	}
}

func TestBenchmarkUserRatings(t *testing.T) {
	t.Run("rating alone is not a measurement", func(t *testing.T) {
		a, fx := newTestApp(t)
		connect(a)
		withReadyVariants(a, "alpha", "beta")

		a.Process(action.UserRated{VariantID: "v1", Stars: 4})
		a.Process(action.GoToPhase{Phase: phase.Benchmark})
		if len(fx.benches) != 1 || len(fx.benches[0]) != 4 {
			t.Fatalf("benchmark units = %v, want both variants measured", fx.benches)
		}
		if got := a.State.Generation.Find("v1").Benchmark.UserRating; got == nil || got.Stars != 4 {
			t.Fatalf("rating = %+v, want 4 stars kept", got)
		}
	})

	t.Run("re-run keeps the rating", func(t *testing.T) {
		a, fx := newTestApp(t)
		connect(a)
		withReadyVariants(a, "alpha")
		v := a.State.Generation.Find("v1")

		a.Process(action.StartBenchmark{})
		a.Process(action.BenchmarkUpdated{VariantID: "v1", Kind: variant.BenchExecution, Execution: &variant.ExecutionMetrics{BuildSuccess: true}})
		a.Process(action.BenchmarkUpdated{VariantID: "v1", Kind: variant.BenchJudge, Judge: &variant.JudgeScores{Overall: 5}})
		a.Process(action.UserRated{VariantID: "v1", Stars: 5})

		a.Process(action.StartBenchmark{})
		if len(fx.benches) != 2 || len(fx.benches[1]) != 2 {
			t.Fatalf("benchmark runs = %v", fx.benches)
		}
		b := v.Benchmark
		if b.UserRating == nil || b.UserRating.Stars != 5 {
			t.Fatalf("rating = %+v, want 5 stars kept", b.UserRating)
		}
		if b.Execution != nil || b.Judge != nil {
			t.Fatal("old measurements survived the re-run")
		}
		if b.Composite == nil || *b.Composite != 100 {
			t.Fatalf("composite = %v, want 100 from the rating alone", b.Composite)
		}
	})
}

func TestConfigReload(t *testing.T) {
	a, _ := newTestApp(t)
	cfg := config.Default()
	cfg.Search.TopTechniques = 1
	a.Process(action.ConfigReloaded{Config: cfg})
	if a.Config().Search.TopTechniques != 1 {
		t.Fatal("config not replaced")
	}
	a.Process(action.ConfigReloaded{})
	if a.Config() != cfg {
		t.Fatal("nil config replaced the current one")
	}
}

func TestCollaboratorMissingRefusesJobs(t *testing.T) {
	a, _ := newTestApp(t)
	withReadyVariants(a, "alpha")

	a.Process(action.StartBenchmark{})
	if a.State.Bench.Benchmarking {
		t.Fatal("benchmark started without a collaborator")
	}
	if a.State.Status != "Collaborator is still starting" {
		t.Fatalf("status = %q", a.State.Status)
	}
}
