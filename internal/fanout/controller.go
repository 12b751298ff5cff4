// Package fanout runs batches of independent collaborator calls. Every unit
// of work gets its own goroutine, makes exactly one remote call and reports
// exactly one terminal action. Units never talk to each other and never
// touch application state; completion is decided by the reducer.
package fanout

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/logging"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// Caller is the subset of *collaborator.Client the controller uses.
type Caller interface {
	AnalyzeProject(ctx context.Context, path, description string) (*project.Profile, error)
	SearchPapers(ctx context.Context, req collaborator.SearchRequest) ([]research.Paper, error)
	ExtractTechnique(ctx context.Context, req collaborator.ExtractRequest) (*research.Technique, error)
	GenerateVariant(ctx context.Context, req collaborator.GenerateRequest) (*collaborator.GenerationResult, error)
	MergeVariants(ctx context.Context, req collaborator.MergeRequest) (*collaborator.GenerationResult, error)
	RunBenchmark(ctx context.Context, req collaborator.BenchmarkRequest) (map[string]variant.ExecutionMetrics, error)
	LLMJudge(ctx context.Context, req collaborator.JudgeRequest) (map[string]variant.JudgeScores, error)
}

var _ Caller = (*collaborator.Client)(nil)

// Controller spawns per-unit tasks. Its methods return immediately.
type Controller struct {
	ctx    context.Context
	caller Caller
	send   func(action.Action)
	logger *logging.Logger
	wg     conc.WaitGroup
}

// New creates a controller. Tasks run until their call returns; ctx only
// ends when the application tears down, and actions sent after that are
// dropped by the bus.
func New(ctx context.Context, caller Caller, send func(action.Action), logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{ctx: ctx, caller: caller, send: send, logger: logger}
}

// Wait blocks until every spawned task has reported. Used by tests and by
// headless callers; the interactive loop never waits.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// spawn runs fn on its own goroutine and sends the action it returns. A
// panic inside fn is converted into the unit's failure action.
func (c *Controller) spawn(log *logging.Logger, fail func(msg string) action.Action, fn func() action.Action) {
	c.wg.Go(func() {
		var (
			out     action.Action
			catcher panics.Catcher
		)
		catcher.Try(func() { out = fn() })
		if r := catcher.Recovered(); r != nil {
			log.Error("task panicked", "panic", r.String())
			out = fail(fmt.Sprintf("internal error: %v", r.Value))
		}
		if out != nil {
			c.send(out)
		}
	})
}

func message(err error) string {
	return errors.UserMessage(err)
}

// Analyze profiles the project at path.
func (c *Controller) Analyze(path, description string) {
	log := c.logger.WithJob("analyze")
	fail := func(msg string) action.Action { return action.ProjectAnalysisFailed{Err: msg} }

	c.spawn(log, fail, func() action.Action {
		profile, err := c.caller.AnalyzeProject(c.ctx, path, description)
		if err != nil {
			log.Warn("project analysis failed", "path", path, "error", err.Error())
			return fail(message(err))
		}
		log.Info("project analyzed", "path", path, "files", profile.FileCount)
		return action.ProjectAnalyzed{Profile: *profile}
	})
}

// SearchParams are the per-query search limits.
type SearchParams struct {
	ResultsPerQuery  int
	YearMin          *int
	YearMax          *int
	PreferOpenAccess bool
}

// Search runs the queries one after another on a single task so progress
// arrives in order. A failing query is reported and skipped; the job fails
// only when every query failed.
func (c *Controller) Search(queries []string, p SearchParams) {
	log := c.logger.WithJob("research")
	fail := func(msg string) action.Action { return action.ResearchFailed{Err: msg} }

	c.spawn(log, fail, func() action.Action {
		var lastErr error
		failed := 0
		for i, q := range queries {
			c.send(action.SearchQueryStarted{Query: q, Index: i, Total: len(queries)})

			papers, err := c.caller.SearchPapers(c.ctx, collaborator.SearchRequest{
				Queries:          []string{q},
				MaxResults:       p.ResultsPerQuery,
				YearMin:          p.YearMin,
				YearMax:          p.YearMax,
				PreferOpenAccess: p.PreferOpenAccess,
			})
			if err != nil {
				failed++
				lastErr = err
				log.Warn("search query failed", "query", q, "index", i, "error", err.Error())
				c.send(action.SearchQueryFailed{Query: q, Err: message(err)})
				continue
			}
			log.Info("search query done", "index", i, "papers", len(papers))
			if len(papers) > 0 {
				c.send(action.PapersFound{Papers: papers})
			}
		}
		if len(queries) > 0 && failed == len(queries) {
			return fail(message(lastErr))
		}
		return action.ResearchComplete{}
	})
}

// Extract requests one technique card per paper. Papers with neither a
// PDF URL nor a DOI fail at once without a remote call.
func (c *Controller) Extract(papers []research.Paper, projectSummary, userRequest string) {
	log := c.logger.WithJob("extract")

	for _, paper := range papers {
		fail := func(msg string) action.Action {
			return action.TechniqueExtractionFailed{PaperID: paper.ID, Err: msg}
		}

		if !paper.HasSource() {
			log.Debug("paper has no source", "paper_id", paper.ID)
			c.send(fail(errors.ErrNoSource.Error()))
			continue
		}

		c.spawn(log, fail, func() action.Action {
			c.send(action.ExtractionStarted{PaperID: paper.ID, Title: paper.Title})

			req := collaborator.NewExtractRequest(paper, projectSummary, userRequest)
			card, err := c.caller.ExtractTechnique(c.ctx, req)
			if err != nil {
				log.Warn("extraction failed", "paper_id", paper.ID, "error", err.Error())
				return fail(message(err))
			}
			if card.PaperID == "" {
				card.PaperID = paper.ID
			}
			if card.PaperTitle == "" {
				card.PaperTitle = paper.Title
			}
			log.Info("technique extracted", "paper_id", paper.ID, "technique", card.Name)
			return action.TechniqueExtracted{PaperID: paper.ID, Technique: *card}
		})
	}
}

// GenerateUnit is one variant to generate.
type GenerateUnit struct {
	VariantID string
	Branch    string
	Technique research.Technique
}

// Generate creates one branch per unit.
func (c *Controller) Generate(units []GenerateUnit, profile project.Profile) {
	log := c.logger.WithJob("generate")

	for _, u := range units {
		fail := func(msg string) action.Action {
			return action.VariantGenerationFailed{VariantID: u.VariantID, Err: msg}
		}

		c.spawn(log, fail, func() action.Action {
			res, err := c.caller.GenerateVariant(c.ctx, collaborator.GenerateRequest{
				Technique:  u.Technique,
				Project:    profile,
				BranchName: u.Branch,
			})
			if err != nil {
				log.Warn("generation failed", "variant_id", u.VariantID, "error", err.Error())
				return fail(message(err))
			}
			if !res.Success {
				return fail(rejected(res, errors.CategoryGeneration, u.Branch))
			}
			log.Info("variant generated", "variant_id", u.VariantID, "files", len(res.ModifiedFiles))
			return action.VariantGenerated{
				VariantID:       u.VariantID,
				ModifiedFiles:   res.ModifiedFiles,
				NewDependencies: res.NewDependencies,
			}
		})
	}
}

// rejected turns a success=false answer into a status message.
func rejected(res *collaborator.GenerationResult, cat errors.Category, unit string) string {
	reason := res.Error
	if reason == "" {
		reason = "unknown error"
	}
	err := errors.NewUniqError(cat, reason, errors.ErrRemoteRejected).WithUnit(unit)
	return message(err)
}

// BenchUnit is one measurement of one variant.
type BenchUnit struct {
	VariantID string
	Branch    string
	Kind      variant.BenchKind
}

// BenchParams are shared by every unit of a benchmark job.
type BenchParams struct {
	ProjectPath    string
	UserRequest    string
	Metrics        []string
	TimeoutSeconds int
}

// Benchmark runs one run-benchmark or llm-judge call per unit, each for a
// single branch.
func (c *Controller) Benchmark(units []BenchUnit, p BenchParams) {
	log := c.logger.WithJob("benchmark")

	for _, u := range units {
		fail := func(msg string) action.Action {
			return action.BenchmarkUnitFailed{VariantID: u.VariantID, Kind: u.Kind, Err: msg}
		}

		c.spawn(log, fail, func() action.Action {
			switch u.Kind {
			case variant.BenchJudge:
				scores, err := c.caller.LLMJudge(c.ctx, collaborator.JudgeRequest{
					VariantBranches: []string{u.Branch},
					ProjectPath:     p.ProjectPath,
					UserRequest:     p.UserRequest,
				})
				if err != nil {
					log.Warn("judge failed", "variant_id", u.VariantID, "error", err.Error())
					return fail(message(err))
				}
				s, ok := scores[u.Branch]
				if !ok {
					return fail(missingBranch(u.Branch))
				}
				return action.BenchmarkUpdated{VariantID: u.VariantID, Kind: u.Kind, Judge: &s}

			default:
				results, err := c.caller.RunBenchmark(c.ctx, collaborator.BenchmarkRequest{
					VariantBranches: []string{u.Branch},
					ProjectPath:     p.ProjectPath,
					Metrics:         p.Metrics,
					TimeoutSeconds:  p.TimeoutSeconds,
				})
				if err != nil {
					log.Warn("benchmark failed", "variant_id", u.VariantID, "error", err.Error())
					return fail(message(err))
				}
				m, ok := results[u.Branch]
				if !ok {
					return fail(missingBranch(u.Branch))
				}
				log.Info("benchmark done", "variant_id", u.VariantID, "build_success", m.BuildSuccess)
				return action.BenchmarkUpdated{VariantID: u.VariantID, Kind: u.Kind, Execution: &m}
			}
		})
	}
}

func missingBranch(branch string) string {
	err := errors.NewUniqError(errors.CategorySerialization, "response has no entry for branch", errors.ErrRemoteRejected).
		WithUnit(branch)
	return message(err)
}

// MergeJob describes a merge whose identity was fixed by the reducer.
type MergeJob struct {
	ID          string
	DisplayName string
	Spec        variant.MergeSpec
	Request     collaborator.MergeRequest
}

// Merge synthesizes a hybrid of two variants on a new branch.
func (c *Controller) Merge(job MergeJob) {
	log := c.logger.WithJob("merge")
	fail := func(msg string) action.Action { return action.MergeFailed{Err: msg} }

	c.spawn(log, fail, func() action.Action {
		res, err := c.caller.MergeVariants(c.ctx, job.Request)
		if err != nil {
			log.Warn("merge failed", "merge_id", job.ID, "error", err.Error())
			return fail(message(err))
		}
		if !res.Success {
			return fail(rejected(res, errors.CategoryMerge, job.Request.TargetBranch))
		}
		log.Info("merge done", "merge_id", job.ID, "branch", job.Request.TargetBranch)
		v := variant.NewMerged(job.ID, job.Request.TargetBranch, job.DisplayName, job.Spec,
			res.ModifiedFiles, res.NewDependencies)
		return action.MergeComplete{Variant: v}
	})
}
