package collaborator

import (
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// Endpoint paths, relative to the base address.
const (
	pathHealth           = "/api/health"
	pathAnalyzeProject   = "/api/analyze-project"
	pathSearchPapers     = "/api/search-papers"
	pathExtractTechnique = "/api/extract-technique"
	pathGenerateVariant  = "/api/generate-variant"
	pathMergeVariants    = "/api/merge-variants"
	pathRunBenchmark     = "/api/run-benchmark"
	pathLLMJudge         = "/api/llm-judge"
	pathShutdown         = "/api/shutdown"
)

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type analyzeRequest struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// SearchRequest asks for papers matching any of the queries.
type SearchRequest struct {
	Queries          []string `json:"queries"`
	MaxResults       int      `json:"max_results"`
	YearMin          *int     `json:"year_min,omitempty"`
	YearMax          *int     `json:"year_max,omitempty"`
	PreferOpenAccess bool     `json:"prefer_open_access"`
}

// ExtractRequest asks for a technique card from one paper. PDFURL carries
// the DOI resolver URL when the paper only has a DOI.
type ExtractRequest struct {
	PDFURL         string `json:"pdf_url"`
	DOI            string `json:"doi,omitempty"`
	PaperID        string `json:"paper_id"`
	PaperTitle     string `json:"paper_title"`
	ProjectSummary string `json:"project_summary"`
	UserRequest    string `json:"user_request"`
}

// NewExtractRequest builds the request for p. Callers must check
// p.HasSource first.
func NewExtractRequest(p research.Paper, projectSummary, userRequest string) ExtractRequest {
	pdf := p.PDFURL
	if pdf == "" && p.DOI != "" {
		pdf = "https://doi.org/" + p.DOI
	}
	return ExtractRequest{
		PDFURL:         pdf,
		DOI:            p.DOI,
		PaperID:        p.ID,
		PaperTitle:     p.Title,
		ProjectSummary: projectSummary,
		UserRequest:    userRequest,
	}
}

// GenerateRequest asks for one variant branch implementing a technique.
type GenerateRequest struct {
	Technique  research.Technique `json:"technique"`
	Project    project.Profile    `json:"project"`
	BranchName string             `json:"branch_name"`
}

// MergeRequest asks for a hybrid of two existing variant branches. The
// technique fields carry a technique card for original variants and the
// merge summary for merged ones.
type MergeRequest struct {
	VariantABranch    string          `json:"variant_a_branch"`
	VariantATechnique any             `json:"variant_a_technique"`
	VariantBBranch    string          `json:"variant_b_branch"`
	VariantBTechnique any             `json:"variant_b_technique"`
	BlendA            int             `json:"blend_a"`
	BlendB            int             `json:"blend_b"`
	Project           project.Profile `json:"project"`
	TargetBranch      string          `json:"target_branch"`
}

// GenerationResult is returned by generate-variant and merge-variants.
type GenerationResult struct {
	Success         bool     `json:"success"`
	ModifiedFiles   []string `json:"modified_files"`
	NewDependencies []string `json:"new_dependencies"`
	Error           string   `json:"error,omitempty"`
}

// BenchmarkRequest asks for execution metrics on the given branches.
type BenchmarkRequest struct {
	VariantBranches []string `json:"variant_branches"`
	ProjectPath     string   `json:"project_path"`
	Metrics         []string `json:"metrics"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
}

type benchmarkResponse struct {
	Results map[string]variant.ExecutionMetrics `json:"results"`
}

// JudgeRequest asks the LLM judge to score the given branches.
type JudgeRequest struct {
	VariantBranches []string `json:"variant_branches"`
	ProjectPath     string   `json:"project_path"`
	UserRequest     string   `json:"user_request"`
}
