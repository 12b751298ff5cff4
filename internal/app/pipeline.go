package app

import (
	"fmt"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/fanout"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// Research

func (a *App) startResearch() {
	s := a.State
	if s.Research.Searching {
		return
	}
	if s.Intake.Profile == nil {
		s.Status = "Analyze a project first"
		return
	}
	fx := a.ready()
	if fx == nil {
		return
	}

	queries := research.BuildQueries(s.Intake.Request, s.Intake.Profile.Summary)
	s.Research.Searching = true
	s.Research.Attempted = true
	s.Research.Err = ""
	s.Research.FailedQueries = 0
	s.Research.Query = ""
	s.Research.QueryIndex = 0
	s.Research.QueryTotal = len(queries)
	s.Status = fmt.Sprintf("Searching with %d queries", len(queries))

	search := a.cfg.Search
	p := fanout.SearchParams{
		ResultsPerQuery:  search.ResultsPerQuery,
		PreferOpenAccess: search.PreferOpenAccess,
	}
	if search.YearMin > 0 {
		p.YearMin = &search.YearMin
	}
	if search.YearMax > 0 {
		p.YearMax = &search.YearMax
	}
	fx.Search(queries, p)
}

func (a *App) papersFound(act action.PapersFound) {
	s := a.State
	var added int
	s.Research.Papers, added = research.MergePapers(s.Research.Papers, act.Papers, a.cfg.Search.MaxPapers)
	if added > 0 {
		s.Techniques.Attempted = false
	}
}

// Techniques

func (a *App) startExtraction(act action.StartExtraction) action.Action {
	s := a.State
	if s.Techniques.Extracting {
		return nil
	}
	fx := a.ready()
	if fx == nil {
		return nil
	}

	ids := make([]string, 0, len(act.Papers))
	for _, p := range act.Papers {
		ids = append(ids, p.ID)
	}
	s.Techniques = TechniqueState{
		Extracting: true,
		Attempted:  true,
		Job:        NewJob(ids),
	}
	s.Status = fmt.Sprintf("Extracting techniques from %d papers", len(act.Papers))

	var summary string
	if s.Intake.Profile != nil {
		summary = s.Intake.Profile.Summary
	}
	fx.Extract(act.Papers, summary, s.Intake.Request)
	return a.checkExtraction()
}

func (a *App) techniqueExtracted(act action.TechniqueExtracted) action.Action {
	s := a.State
	if !s.Techniques.Job.Resolve(act.PaperID) {
		a.logger.Debug("ignoring report for untracked paper", "paper_id", act.PaperID)
		return nil
	}
	s.Techniques.Active = removeID(s.Techniques.Active, act.PaperID)
	s.Techniques.Cards = research.InsertByRelevance(s.Techniques.Cards, act.Technique)
	return a.checkExtraction()
}

func (a *App) techniqueFailed(act action.TechniqueExtractionFailed) action.Action {
	s := a.State
	if !s.Techniques.Job.Resolve(act.PaperID) {
		a.logger.Debug("ignoring report for untracked paper", "paper_id", act.PaperID)
		return nil
	}
	title := act.PaperID
	for _, p := range s.Research.Papers {
		if p.ID == act.PaperID {
			title = p.Title
			break
		}
	}
	s.Techniques.Active = removeID(s.Techniques.Active, act.PaperID)
	s.Techniques.Errors = append(s.Techniques.Errors, UnitError{Unit: title, Err: act.Err})
	return a.checkExtraction()
}

func (a *App) checkExtraction() action.Action {
	job := a.State.Techniques.Job
	if job.Finish(job.Terminal) {
		return action.ExtractionComplete{}
	}
	return nil
}

func (a *App) extractionComplete() action.Action {
	s := a.State
	s.Techniques.Extracting = false
	s.Techniques.Active = nil
	research.SelectTop(s.Techniques.Cards, a.cfg.Search.TopTechniques)
	s.Generation.Attempted = false
	s.Status = fmt.Sprintf("Extracted %d techniques (%d failed)",
		len(s.Techniques.Cards), len(s.Techniques.Errors))
	return a.autoTrigger()
}

func (a *App) toggleTechnique(i int) {
	s := a.State
	if i < 0 || i >= len(s.Techniques.Cards) {
		return
	}
	s.Techniques.Cards[i].Selected = !s.Techniques.Cards[i].Selected
	s.Generation.Attempted = false
}

func removeID(active []string, id string) []string {
	for i, t := range active {
		if t == id {
			return append(active[:i], active[i+1:]...)
		}
	}
	return active
}

// Generation

func (a *App) startGeneration() action.Action {
	s := a.State
	if s.Generation.Generating {
		return nil
	}
	if s.Intake.Profile == nil {
		s.Status = "Analyze a project first"
		return nil
	}
	selected := research.Selected(s.Techniques.Cards)
	if len(selected) == 0 {
		s.Status = "Select at least one technique"
		return nil
	}
	fx := a.ready()
	if fx == nil {
		return nil
	}

	next := len(s.Generation.Variants) + 1
	units := make([]fanout.GenerateUnit, 0, len(selected))
	ids := make([]string, 0, len(selected))
	for i, tech := range selected {
		v := variant.New(next+i, tech, a.cfg.Generation.BranchPrefix)
		v.Status = variant.StatusGenerating
		s.Generation.Variants = append(s.Generation.Variants, v)
		s.Lineage.Add(variant.Attach(v.ID, tech))

		units = append(units, fanout.GenerateUnit{VariantID: v.ID, Branch: v.Branch, Technique: tech})
		ids = append(ids, v.ID)
	}
	s.Generation.Generating = true
	s.Generation.Attempted = true
	s.Generation.Job = NewJob(ids)
	s.Status = fmt.Sprintf("Generating %d variants", len(units))

	fx.Generate(units, *s.Intake.Profile)
	return nil
}

func (a *App) variantGenerated(act action.VariantGenerated) action.Action {
	s := a.State
	v := s.Generation.Find(act.VariantID)
	if v == nil || !s.Generation.Job.Tracks(act.VariantID) || !v.Resolve(true, "") {
		a.logger.Debug("ignoring generation report", "variant_id", act.VariantID)
		return nil
	}
	v.ModifiedFiles = act.ModifiedFiles
	v.NewDependencies = act.NewDependencies
	s.Generation.Job.Resolve(act.VariantID)
	return a.checkGeneration()
}

func (a *App) variantFailed(act action.VariantGenerationFailed) action.Action {
	s := a.State
	v := s.Generation.Find(act.VariantID)
	if v == nil || !s.Generation.Job.Tracks(act.VariantID) || !v.Resolve(false, act.Err) {
		a.logger.Debug("ignoring generation report", "variant_id", act.VariantID)
		return nil
	}
	s.Generation.Job.Resolve(act.VariantID)
	return a.checkGeneration()
}

// checkGeneration reads the variants themselves, not the job's counters.
func (a *App) checkGeneration() action.Action {
	s := a.State
	done := s.Generation.Job.Finish(func(id string) bool {
		v := s.Generation.Find(id)
		return v == nil || v.Status.Terminal()
	})
	if done {
		return action.GenerationComplete{}
	}
	return nil
}

func (a *App) generationComplete() action.Action {
	s := a.State
	s.Generation.Generating = false
	s.Bench.Attempted = false

	ready, failed := 0, 0
	for _, v := range s.Generation.Variants {
		switch v.Status {
		case variant.StatusReady:
			ready++
		case variant.StatusFailed:
			failed++
		}
	}
	s.Status = fmt.Sprintf("Generated %d variants (%d failed)", ready, failed)
	return a.autoTrigger()
}

// Benchmark

func benchKey(variantID string, k variant.BenchKind) string {
	return variantID + "/" + k.String()
}

// startBenchmark measures the Ready variants that have no results yet, or
// all of them when every one has been measured before.
func (a *App) startBenchmark() action.Action {
	s := a.State
	if s.Bench.Benchmarking {
		return nil
	}
	ready := s.Generation.Ready()
	if len(ready) == 0 {
		s.Status = "No ready variants to benchmark"
		return nil
	}
	fx := a.ready()
	if fx == nil {
		return nil
	}

	targets := unmeasured(ready)
	if len(targets) == 0 {
		targets = ready
	}

	var (
		units []fanout.BenchUnit
		keys  []string
	)
	for _, v := range targets {
		if v.Benchmark == nil {
			v.Benchmark = &variant.BenchmarkResults{}
		}
		v.Benchmark.ResetMeasurements()
		for _, k := range variant.BenchKinds() {
			units = append(units, fanout.BenchUnit{VariantID: v.ID, Branch: v.Branch, Kind: k})
			keys = append(keys, benchKey(v.ID, k))
		}
	}
	s.Bench.Benchmarking = true
	s.Bench.Attempted = true
	s.Bench.Errors = nil
	s.Bench.Job = NewJob(keys)
	s.Status = fmt.Sprintf("Benchmarking %d variants", len(targets))

	projectPath := s.Intake.Path()
	if s.Intake.Profile != nil && s.Intake.Profile.Path != "" {
		projectPath = s.Intake.Profile.Path
	}
	fx.Benchmark(units, fanout.BenchParams{
		ProjectPath:    projectPath,
		UserRequest:    s.Intake.Request,
		Metrics:        a.cfg.Benchmark.Metrics,
		TimeoutSeconds: a.cfg.Benchmark.TimeoutSeconds,
	})
	return nil
}

func unmeasured(vs []*variant.Variant) []*variant.Variant {
	var out []*variant.Variant
	for _, v := range vs {
		if !v.Benchmark.Measured() {
			out = append(out, v)
		}
	}
	return out
}

func (a *App) benchmarkUpdated(act action.BenchmarkUpdated) action.Action {
	s := a.State
	if !s.Bench.Job.Resolve(benchKey(act.VariantID, act.Kind)) {
		return nil
	}
	if v := s.Generation.Find(act.VariantID); v != nil {
		if v.Benchmark == nil {
			v.Benchmark = &variant.BenchmarkResults{}
		}
		v.Benchmark.Apply(act.Execution, act.Judge)
	}
	return a.checkBenchmark()
}

func (a *App) benchmarkFailed(act action.BenchmarkUnitFailed) action.Action {
	s := a.State
	key := benchKey(act.VariantID, act.Kind)
	if !s.Bench.Job.Resolve(key) {
		return nil
	}
	s.Bench.Errors = append(s.Bench.Errors, UnitError{Unit: key, Err: act.Err})
	return a.checkBenchmark()
}

func (a *App) checkBenchmark() action.Action {
	job := a.State.Bench.Job
	if job.Finish(job.Terminal) {
		return action.BenchmarkComplete{}
	}
	return nil
}

// rateSelected cycles the highlighted variant's stars 1..5.
func (a *App) rateSelected() action.Action {
	s := a.State
	ready := s.Generation.Ready()
	if s.Bench.Selected < 0 || s.Bench.Selected >= len(ready) {
		return nil
	}
	v := ready[s.Bench.Selected]
	stars, notes := 0, ""
	if v.Benchmark != nil && v.Benchmark.UserRating != nil {
		stars = v.Benchmark.UserRating.Stars
		notes = v.Benchmark.UserRating.Notes
	}
	return action.UserRated{VariantID: v.ID, Stars: stars%5 + 1, Notes: notes}
}

func (a *App) userRated(act action.UserRated) {
	s := a.State
	v := s.Generation.Find(act.VariantID)
	if v == nil {
		return
	}
	if v.Benchmark == nil {
		v.Benchmark = &variant.BenchmarkResults{}
	}
	v.Benchmark.Rate(act.Stars, act.Notes)
	s.Status = fmt.Sprintf("Rated %s: %d stars", v.DisplayName, v.Benchmark.UserRating.Stars)
}
