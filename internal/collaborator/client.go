package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
	"github.com/Iron-Ham/uniq/internal/variant"
)

const (
	defaultRequestTimeout = 120 * time.Second
	maxErrorBody          = 512
)

// Client calls the collaborator's HTTP API. It holds no mutable state and is
// safe to share across goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient constructs a client for the collaborator at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health reports whether the collaborator is serving requests.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, pathHealth, nil, &out, errors.CategoryCollaboratorCommunication)
	return out, err
}

// AnalyzeProject profiles the project at path.
func (c *Client) AnalyzeProject(ctx context.Context, path, description string) (*project.Profile, error) {
	var out project.Profile
	req := analyzeRequest{Path: path, Description: description}
	if err := c.do(ctx, http.MethodPost, pathAnalyzeProject, req, &out, errors.CategoryProjectAnalysis); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPapers runs a literature search.
func (c *Client) SearchPapers(ctx context.Context, req SearchRequest) ([]research.Paper, error) {
	var out []research.Paper
	if err := c.do(ctx, http.MethodPost, pathSearchPapers, req, &out, errors.CategoryResearch); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractTechnique turns one paper into a technique card.
func (c *Client) ExtractTechnique(ctx context.Context, req ExtractRequest) (*research.Technique, error) {
	var out research.Technique
	if err := c.do(ctx, http.MethodPost, pathExtractTechnique, req, &out, errors.CategoryExtraction); err != nil {
		return nil, errors.AsUnit(err, req.PaperID)
	}
	return &out, nil
}

// GenerateVariant implements a technique on a new branch.
func (c *Client) GenerateVariant(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	var out GenerationResult
	if err := c.do(ctx, http.MethodPost, pathGenerateVariant, req, &out, errors.CategoryGeneration); err != nil {
		return nil, errors.AsUnit(err, req.BranchName)
	}
	return &out, nil
}

// MergeVariants synthesizes a hybrid of two variant branches.
func (c *Client) MergeVariants(ctx context.Context, req MergeRequest) (*GenerationResult, error) {
	var out GenerationResult
	if err := c.do(ctx, http.MethodPost, pathMergeVariants, req, &out, errors.CategoryMerge); err != nil {
		return nil, errors.AsUnit(err, req.TargetBranch)
	}
	return &out, nil
}

// RunBenchmark builds and tests the given branches.
func (c *Client) RunBenchmark(ctx context.Context, req BenchmarkRequest) (map[string]variant.ExecutionMetrics, error) {
	var out benchmarkResponse
	if err := c.do(ctx, http.MethodPost, pathRunBenchmark, req, &out, errors.CategoryBenchmark); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// LLMJudge scores the given branches.
func (c *Client) LLMJudge(ctx context.Context, req JudgeRequest) (map[string]variant.JudgeScores, error) {
	var out map[string]variant.JudgeScores
	if err := c.do(ctx, http.MethodPost, pathLLMJudge, req, &out, errors.CategoryBenchmark); err != nil {
		return nil, err
	}
	return out, nil
}

// Shutdown asks the collaborator to exit. The response body is ignored.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, pathShutdown, nil, nil, errors.CategoryCollaboratorCommunication)
}

// do sends one request. Transport failures and non-2xx answers are reported
// under category; undecodable bodies are Serialization errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any, category errors.Category) error {
	op := strings.TrimPrefix(path, "/api/")

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.NewUniqError(errors.CategorySerialization, "encode request", err).WithOp(op)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewUniqError(category, "build request", err).WithOp(op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUniqError(category, "request failed", err).WithOp(op).WithRetryable(true)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewUniqError(category, "read response", err).WithOp(op).WithRetryable(true)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewUniqError(category, fmt.Sprintf("http %d", resp.StatusCode), statusError(data)).
			WithOp(op).
			WithRetryable(resp.StatusCode >= 500)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewUniqError(errors.CategorySerialization, "decode response", err).WithOp(op)
	}
	return nil
}

// statusError extracts FastAPI's {"detail": ...} when present, otherwise a
// trimmed body snippet.
func statusError(body []byte) error {
	var detail struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != nil {
		if s, ok := detail.Detail.(string); ok {
			return errors.New(s)
		}
		return fmt.Errorf("%v", detail.Detail)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return errors.New("empty response body")
	}
	return errors.New(text)
}
