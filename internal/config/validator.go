package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "search.max_papers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidMetrics returns the benchmark metrics the collaborator understands
func ValidMetrics() []string {
	return []string{"build_success", "test_pass", "runtime_ms", "memory_mb"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSearch()...)
	errors = append(errors, c.validateGeneration()...)
	errors = append(errors, c.validateBenchmark()...)
	errors = append(errors, c.validateCollaborator()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

func positive(field string, v int) []ValidationError {
	if v <= 0 {
		return []ValidationError{{Field: field, Value: v, Message: "must be positive"}}
	}
	return nil
}

func (c *Config) validateSearch() []ValidationError {
	var errors []ValidationError

	errors = append(errors, positive("search.max_papers", c.Search.MaxPapers)...)
	errors = append(errors, positive("search.results_per_query", c.Search.ResultsPerQuery)...)

	if c.Search.TopTechniques < 0 {
		errors = append(errors, ValidationError{
			Field:   "search.top_techniques",
			Value:   c.Search.TopTechniques,
			Message: "must be non-negative",
		})
	}

	if c.Search.YearMin != 0 && c.Search.YearMax != 0 && c.Search.YearMin > c.Search.YearMax {
		errors = append(errors, ValidationError{
			Field:   "search.year_min",
			Value:   c.Search.YearMin,
			Message: fmt.Sprintf("must not be after search.year_max (%d)", c.Search.YearMax),
		})
	}

	return errors
}

func (c *Config) validateGeneration() []ValidationError {
	var errors []ValidationError

	errors = append(errors, positive("generation.max_tokens_per_variant", c.Generation.MaxTokensPerVariant)...)

	if strings.ContainsAny(c.Generation.BranchPrefix, " ~^:?*[\\") {
		errors = append(errors, ValidationError{
			Field:   "generation.branch_prefix",
			Value:   c.Generation.BranchPrefix,
			Message: "contains characters not allowed in git branch names",
		})
	}

	return errors
}

func (c *Config) validateBenchmark() []ValidationError {
	var errors []ValidationError

	errors = append(errors, positive("benchmark.timeout_seconds", c.Benchmark.TimeoutSeconds)...)

	for _, m := range c.Benchmark.Metrics {
		if !slices.Contains(ValidMetrics(), m) {
			errors = append(errors, ValidationError{
				Field:   "benchmark.metrics",
				Value:   m,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidMetrics(), ", ")),
			})
		}
	}

	return errors
}

func (c *Config) validateCollaborator() []ValidationError {
	var errors []ValidationError

	if c.Collaborator.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "collaborator.dir",
			Value:   c.Collaborator.Dir,
			Message: "must not be empty",
		})
	}
	if c.Collaborator.Runner == "" {
		errors = append(errors, ValidationError{
			Field:   "collaborator.runner",
			Value:   c.Collaborator.Runner,
			Message: "must not be empty",
		})
	}

	errors = append(errors, positive("collaborator.startup_timeout_seconds", c.Collaborator.StartupTimeoutSeconds)...)
	errors = append(errors, positive("collaborator.poll_interval_ms", c.Collaborator.PollIntervalMs)...)
	errors = append(errors, positive("collaborator.request_timeout_seconds", c.Collaborator.RequestTimeoutSeconds)...)

	if c.Collaborator.GraceDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "collaborator.grace_delay_ms",
			Value:   c.Collaborator.GraceDelayMs,
			Message: "must be non-negative",
		})
	}

	if c.Collaborator.PollIntervalMs > 0 && c.Collaborator.StartupTimeoutSeconds > 0 &&
		c.Collaborator.PollInterval() >= c.Collaborator.StartupTimeout() {
		errors = append(errors, ValidationError{
			Field:   "collaborator.poll_interval_ms",
			Value:   c.Collaborator.PollIntervalMs,
			Message: "must be shorter than the startup timeout",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	errors = append(errors, positive("logging.max_size_mb", c.Logging.MaxSizeMB)...)

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	const minTickMs = 16
	if c.TUI.TickIntervalMs < minTickMs {
		errors = append(errors, ValidationError{
			Field:   "tui.tick_interval_ms",
			Value:   c.TUI.TickIntervalMs,
			Message: fmt.Sprintf("must be at least %dms", minTickMs),
		})
	}

	return errors
}
