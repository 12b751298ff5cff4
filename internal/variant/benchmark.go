package variant

// ExecutionMetrics is one branch's entry in a run-benchmark response.
type ExecutionMetrics struct {
	BuildSuccess  bool               `json:"build_success"`
	BuildError    string             `json:"build_error,omitempty"`
	TestPassRate  *float64           `json:"test_pass_rate,omitempty"`
	TestsPassed   *int               `json:"tests_passed,omitempty"`
	TestsTotal    *int               `json:"tests_total,omitempty"`
	RuntimeMs     *float64           `json:"runtime_ms,omitempty"`
	MemoryMB      *float64           `json:"memory_mb,omitempty"`
	CustomMetrics map[string]float64 `json:"custom_metrics,omitempty"`
}

// JudgeScores is one branch's entry in an llm-judge response. Scores are 0-10.
type JudgeScores struct {
	CodeQuality   float64 `json:"code_quality"`
	Novelty       float64 `json:"novelty"`
	Feasibility   float64 `json:"feasibility"`
	GoalAlignment float64 `json:"goal_alignment"`
	Completeness  float64 `json:"completeness"`
	Overall       float64 `json:"overall"`
	Explanation   string  `json:"explanation"`
}

// UserRating is the operator's own 1-5 star verdict.
type UserRating struct {
	Stars int    `json:"stars"`
	Notes string `json:"notes"`
}

// Composite score weights. Missing components are left out and the
// remaining weights renormalized.
const (
	executionWeight = 0.4
	judgeWeight     = 0.4
	userWeight      = 0.2
)

// BenchmarkResults collects everything known about one variant's quality.
type BenchmarkResults struct {
	Execution  *ExecutionMetrics `json:"execution,omitempty"`
	Judge      *JudgeScores      `json:"judge,omitempty"`
	UserRating *UserRating       `json:"user_rating,omitempty"`
	Composite  *float64          `json:"composite_score,omitempty"`
}

// ComputeComposite recomputes the 0-100 composite score. It leaves
// Composite nil when no component is present.
func (r *BenchmarkResults) ComputeComposite() {
	var total, weight float64

	if r.Execution != nil {
		score := 0.0
		if r.Execution.BuildSuccess {
			score += 30
		}
		if r.Execution.TestPassRate != nil {
			score += *r.Execution.TestPassRate * 70
		}
		total += score * executionWeight
		weight += executionWeight
	}

	if r.Judge != nil {
		total += r.Judge.Overall / 10 * 100 * judgeWeight
		weight += judgeWeight
	}

	if r.UserRating != nil {
		total += float64(r.UserRating.Stars) / 5 * 100 * userWeight
		weight += userWeight
	}

	if weight == 0 {
		r.Composite = nil
		return
	}
	c := total / weight
	r.Composite = &c
}

// BenchKind is one of the two measurements taken for every Ready variant.
type BenchKind int

const (
	BenchExecution BenchKind = iota
	BenchJudge
)

func (k BenchKind) String() string {
	if k == BenchJudge {
		return "judge"
	}
	return "execution"
}

// BenchKinds lists every kind a variant is measured with.
func BenchKinds() []BenchKind {
	return []BenchKind{BenchExecution, BenchJudge}
}

// Apply stores one measurement and recomputes the composite score.
func (r *BenchmarkResults) Apply(exec *ExecutionMetrics, judge *JudgeScores) {
	if exec != nil {
		r.Execution = exec
	}
	if judge != nil {
		r.Judge = judge
	}
	r.ComputeComposite()
}

// Measured reports whether r holds an execution or judge result. A user
// rating alone does not count. Safe on a nil receiver.
func (r *BenchmarkResults) Measured() bool {
	return r != nil && (r.Execution != nil || r.Judge != nil)
}

// ResetMeasurements clears the execution and judge results ahead of a new
// run. The user's rating is kept.
func (r *BenchmarkResults) ResetMeasurements() {
	r.Execution = nil
	r.Judge = nil
	r.ComputeComposite()
}

// Rate stores the user's rating and recomputes the composite score.
func (r *BenchmarkResults) Rate(stars int, notes string) {
	stars = max(1, min(5, stars))
	r.UserRating = &UserRating{Stars: stars, Notes: notes}
	r.ComputeComposite()
}
