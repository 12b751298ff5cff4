package fanout

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

type fakeCaller struct {
	extractCalls  atomic.Int32
	searchCalls   atomic.Int32
	generateCalls atomic.Int32
	benchCalls    atomic.Int32
	judgeCalls    atomic.Int32
	mergeCalls    atomic.Int32

	mu        sync.Mutex
	extracted []string
	queries   []string

	searchErr   map[string]error
	generateRes *collaborator.GenerationResult
	panicOn     string
}

func (f *fakeCaller) AnalyzeProject(_ context.Context, path, _ string) (*project.Profile, error) {
	if path == "" {
		return nil, errors.NewUniqError(errors.CategoryProjectAnalysis, "empty path", nil)
	}
	return &project.Profile{Path: path, FileCount: 3}, nil
}

func (f *fakeCaller) SearchPapers(_ context.Context, req collaborator.SearchRequest) ([]research.Paper, error) {
	f.searchCalls.Add(1)
	q := req.Queries[0]
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := f.searchErr[q]; err != nil {
		return nil, err
	}
	return []research.Paper{{ID: q + "-1"}}, nil
}

func (f *fakeCaller) ExtractTechnique(_ context.Context, req collaborator.ExtractRequest) (*research.Technique, error) {
	f.extractCalls.Add(1)
	if req.PaperID == f.panicOn {
		panic("boom")
	}
	f.mu.Lock()
	f.extracted = append(f.extracted, req.PaperID)
	f.mu.Unlock()
	return &research.Technique{Name: "T-" + req.PaperID, RelevanceScore: 0.5}, nil
}

func (f *fakeCaller) GenerateVariant(_ context.Context, req collaborator.GenerateRequest) (*collaborator.GenerationResult, error) {
	f.generateCalls.Add(1)
	if f.generateRes != nil {
		return f.generateRes, nil
	}
	return &collaborator.GenerationResult{Success: true, ModifiedFiles: []string{req.BranchName + ".go"}}, nil
}

func (f *fakeCaller) MergeVariants(_ context.Context, req collaborator.MergeRequest) (*collaborator.GenerationResult, error) {
	f.mergeCalls.Add(1)
	return &collaborator.GenerationResult{Success: true, ModifiedFiles: []string{"merged.go"}}, nil
}

func (f *fakeCaller) RunBenchmark(_ context.Context, req collaborator.BenchmarkRequest) (map[string]variant.ExecutionMetrics, error) {
	f.benchCalls.Add(1)
	if strings.HasSuffix(req.VariantBranches[0], "missing") {
		return map[string]variant.ExecutionMetrics{}, nil
	}
	return map[string]variant.ExecutionMetrics{req.VariantBranches[0]: {BuildSuccess: true}}, nil
}

func (f *fakeCaller) LLMJudge(_ context.Context, req collaborator.JudgeRequest) (map[string]variant.JudgeScores, error) {
	f.judgeCalls.Add(1)
	return map[string]variant.JudgeScores{req.VariantBranches[0]: {Overall: 8}}, nil
}

type recorder struct {
	mu      sync.Mutex
	actions []action.Action
}

func (r *recorder) send(a action.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recorder) all() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.actions...)
}

func newController(caller Caller) (*Controller, *recorder) {
	rec := &recorder{}
	return New(context.Background(), caller, rec.send, nil), rec
}

func TestExtract_SkipsPaperWithoutSource(t *testing.T) {
	caller := &fakeCaller{}
	c, rec := newController(caller)

	papers := []research.Paper{
		{ID: "p1", Title: "One", PDFURL: "https://x/1.pdf"},
		{ID: "p2", Title: "Two"},
		{ID: "p3", Title: "Three", DOI: "10.1/3"},
	}
	c.Extract(papers, "summary", "request")
	c.Wait()

	if got := caller.extractCalls.Load(); got != 2 {
		t.Errorf("remote calls = %d, want 2", got)
	}

	var ok, failed []string
	for _, a := range rec.all() {
		switch a := a.(type) {
		case action.TechniqueExtracted:
			ok = append(ok, a.PaperID)
			if a.Technique.PaperID != a.PaperID {
				t.Errorf("card paper id = %q, want %q", a.Technique.PaperID, a.PaperID)
			}
		case action.TechniqueExtractionFailed:
			failed = append(failed, a.PaperID)
			if a.Err != errors.ErrNoSource.Error() {
				t.Errorf("failure reason = %q", a.Err)
			}
		}
	}
	if len(ok) != 2 || len(failed) != 1 || failed[0] != "p2" {
		t.Errorf("successes = %v, failures = %v", ok, failed)
	}
}

func TestExtract_PanicBecomesFailure(t *testing.T) {
	caller := &fakeCaller{panicOn: "p1"}
	c, rec := newController(caller)

	c.Extract([]research.Paper{{ID: "p1", PDFURL: "u"}, {ID: "p2", PDFURL: "u"}}, "", "")
	c.Wait()

	terminal := 0
	for _, a := range rec.all() {
		switch a := a.(type) {
		case action.TechniqueExtractionFailed:
			terminal++
			if a.PaperID != "p1" || !strings.Contains(a.Err, "boom") {
				t.Errorf("failure = %+v", a)
			}
		case action.TechniqueExtracted:
			terminal++
			if a.PaperID != "p2" {
				t.Errorf("unexpected success for %s", a.PaperID)
			}
		}
	}
	if terminal != 2 {
		t.Errorf("terminal reports = %d, want 2", terminal)
	}
}

func TestSearch_ContinuesAfterFailedQuery(t *testing.T) {
	caller := &fakeCaller{searchErr: map[string]error{"b": errors.New("rate limited")}}
	c, rec := newController(caller)

	c.Search([]string{"a", "b", "c"}, SearchParams{ResultsPerQuery: 20})
	c.Wait()

	if got := caller.searchCalls.Load(); got != 3 {
		t.Errorf("search calls = %d, want 3", got)
	}
	if strings.Join(caller.queries, ",") != "a,b,c" {
		t.Errorf("queries ran as %v, want sequential a,b,c", caller.queries)
	}

	var types []string
	for _, a := range rec.all() {
		types = append(types, a.Type())
	}
	want := []string{
		"research.query_started", "research.papers",
		"research.query_started", "research.query_failed",
		"research.query_started", "research.papers",
		"research.complete",
	}
	if strings.Join(types, " ") != strings.Join(want, " ") {
		t.Errorf("actions = %v\nwant %v", types, want)
	}
}

func TestSearch_AllQueriesFail(t *testing.T) {
	boom := errors.New("offline")
	caller := &fakeCaller{searchErr: map[string]error{"a": boom, "b": boom}}
	c, rec := newController(caller)

	c.Search([]string{"a", "b"}, SearchParams{})
	c.Wait()

	all := rec.all()
	if _, ok := all[len(all)-1].(action.ResearchFailed); !ok {
		t.Errorf("last action = %T, want ResearchFailed", all[len(all)-1])
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		res     *collaborator.GenerationResult
		wantOK  bool
		wantErr string
	}{
		{name: "success", wantOK: true},
		{name: "rejected", res: &collaborator.GenerationResult{Success: false, Error: "tests failed"}, wantErr: "tests failed"},
		{name: "rejected without reason", res: &collaborator.GenerationResult{}, wantErr: "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &fakeCaller{generateRes: tt.res}
			c, rec := newController(caller)

			c.Generate([]GenerateUnit{
				{VariantID: "v1", Branch: "uniq/variant-1-a"},
				{VariantID: "v2", Branch: "uniq/variant-2-b"},
			}, project.Profile{})
			c.Wait()

			if caller.generateCalls.Load() != 2 {
				t.Errorf("calls = %d, want 2", caller.generateCalls.Load())
			}
			for _, a := range rec.all() {
				switch a := a.(type) {
				case action.VariantGenerated:
					if !tt.wantOK {
						t.Errorf("unexpected success for %s", a.VariantID)
					}
				case action.VariantGenerationFailed:
					if tt.wantOK {
						t.Errorf("unexpected failure %+v", a)
					} else if !strings.Contains(a.Err, tt.wantErr) {
						t.Errorf("Err = %q, want it to contain %q", a.Err, tt.wantErr)
					}
				}
			}
			if len(rec.all()) != 2 {
				t.Errorf("actions = %d, want 2", len(rec.all()))
			}
		})
	}
}

func TestBenchmark_OneCallPerUnit(t *testing.T) {
	caller := &fakeCaller{}
	c, rec := newController(caller)

	c.Benchmark([]BenchUnit{
		{VariantID: "v1", Branch: "b1", Kind: variant.BenchExecution},
		{VariantID: "v1", Branch: "b1", Kind: variant.BenchJudge},
		{VariantID: "v2", Branch: "b2-missing", Kind: variant.BenchExecution},
		{VariantID: "v2", Branch: "b2-missing", Kind: variant.BenchJudge},
	}, BenchParams{ProjectPath: "/p", TimeoutSeconds: 300})
	c.Wait()

	if caller.benchCalls.Load() != 2 || caller.judgeCalls.Load() != 2 {
		t.Errorf("bench calls = %d, judge calls = %d, want 2 and 2",
			caller.benchCalls.Load(), caller.judgeCalls.Load())
	}

	updated, failed := 0, 0
	for _, a := range rec.all() {
		switch a := a.(type) {
		case action.BenchmarkUpdated:
			updated++
			if (a.Kind == variant.BenchJudge) != (a.Judge != nil) || (a.Kind == variant.BenchExecution) != (a.Execution != nil) {
				t.Errorf("payload does not match kind: %+v", a)
			}
		case action.BenchmarkUnitFailed:
			failed++
			if a.VariantID != "v2" || a.Kind != variant.BenchExecution {
				t.Errorf("unexpected failure %+v", a)
			}
		}
	}
	// v2's judge answer is keyed by branch and present; only its execution entry is missing
	if updated != 3 || failed != 1 {
		t.Errorf("updated = %d, failed = %d, want 3 and 1", updated, failed)
	}
}

func TestMerge(t *testing.T) {
	caller := &fakeCaller{}
	c, rec := newController(caller)

	spec := variant.MergeSpec{ParentA: "v1", ParentB: "v2", BlendA: variant.BlendThreeQuarter, BlendB: variant.BlendQuarter}
	c.Merge(MergeJob{
		ID:          "m-1",
		DisplayName: "A x B",
		Spec:        spec,
		Request:     collaborator.MergeRequest{TargetBranch: "uniq/merge-v1-v2-1"},
	})
	c.Wait()

	all := rec.all()
	if len(all) != 1 {
		t.Fatalf("actions = %d, want 1", len(all))
	}
	done, ok := all[0].(action.MergeComplete)
	if !ok {
		t.Fatalf("got %T, want MergeComplete", all[0])
	}
	v := done.Variant
	if v.ID != "m-1" || v.Branch != "uniq/merge-v1-v2-1" || v.Status != variant.StatusReady {
		t.Errorf("variant = %+v", v)
	}
	if v.Merge == nil || *v.Merge != spec {
		t.Errorf("merge spec = %+v", v.Merge)
	}
}

func TestAnalyze(t *testing.T) {
	c, rec := newController(&fakeCaller{})
	c.Analyze("/p", "desc")
	c.Analyze("", "desc")
	c.Wait()

	var analyzed, failed int
	for _, a := range rec.all() {
		switch a.(type) {
		case action.ProjectAnalyzed:
			analyzed++
		case action.ProjectAnalysisFailed:
			failed++
		}
	}
	if analyzed != 1 || failed != 1 {
		t.Errorf("analyzed = %d, failed = %d", analyzed, failed)
	}
}
