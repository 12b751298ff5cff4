// Package errors provides centralized error definitions for uniq. Every
// failure that crosses a task boundary is expressed as a *UniqError carrying
// one Category of the orchestrator's taxonomy, so the reducer can turn it
// into a typed failure action and a status message.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewUniqError(errors.CategoryResearch, "search failed", cause).
//		WithOp("search-papers")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrAlreadyRunning) { ... }
//	if cat, ok := errors.CategoryOf(err); ok && cat == errors.CategoryMerge { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Category identifies which part of the pipeline an error came from.
type Category int

const (
	CategoryConfiguration Category = iota
	CategoryProjectAnalysis
	CategoryResearch
	CategoryExtraction
	CategoryGeneration
	CategoryMerge
	CategoryBenchmark
	CategoryCollaboratorCommunication
	CategoryIo
	CategorySerialization
)

// String returns the human-readable category name used in error messages.
func (c Category) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryProjectAnalysis:
		return "project analysis"
	case CategoryResearch:
		return "research"
	case CategoryExtraction:
		return "extraction"
	case CategoryGeneration:
		return "generation"
	case CategoryMerge:
		return "merge"
	case CategoryBenchmark:
		return "benchmark"
	case CategoryCollaboratorCommunication:
		return "collaborator"
	case CategoryIo:
		return "io"
	case CategorySerialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Collaborator process sentinel errors
var (
	// ErrAlreadyRunning indicates Start was called while a collaborator is live.
	ErrAlreadyRunning = New("collaborator already running")
	// ErrNotRunning indicates an operation needed a live collaborator.
	ErrNotRunning = New("collaborator not running")
	// ErrStartupTimeout indicates the collaborator never reported healthy.
	ErrStartupTimeout = New("collaborator did not become healthy")
	// ErrCollaboratorUnavailable indicates the collaborator failed to start
	// and collaborator-backed features are disabled for this run.
	ErrCollaboratorUnavailable = New("collaborator unavailable")
)

// Pipeline sentinel errors
var (
	// ErrNoSource indicates a paper has neither a PDF URL nor a DOI.
	ErrNoSource = New("no PDF URL or DOI available")
	// ErrRemoteRejected indicates the collaborator answered with success=false.
	ErrRemoteRejected = New("collaborator rejected the request")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ClassifiedError is implemented by every error type in this package.
type ClassifiedError interface {
	error

	Unwrap() error
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// UniqError
// -----------------------------------------------------------------------------

// UniqError is a categorized pipeline error.
//
// Example:
//
//	err := errors.NewUniqError(errors.CategoryExtraction, "extract failed", cause).
//		WithOp("extract-technique").WithUnit("arxiv:2101.00001")
//	fmt.Println(err) // "extraction error [op=extract-technique, unit=arxiv:2101.00001]: extract failed: ..."
type UniqError struct {
	baseError
	Category Category
	Op       string
	Unit     string
}

// NewUniqError creates a new UniqError.
func NewUniqError(category Category, message string, cause error) *UniqError {
	return &UniqError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Category: category,
	}
}

// WithOp records the operation (usually the collaborator endpoint) that failed.
func (e *UniqError) WithOp(op string) *UniqError {
	e.Op = op
	return e
}

// WithUnit records the fan-out unit (paper id, variant id) the error belongs to.
func (e *UniqError) WithUnit(unit string) *UniqError {
	e.Unit = unit
	return e
}

// WithSeverity sets the error severity.
func (e *UniqError) WithSeverity(s Severity) *UniqError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *UniqError) WithRetryable(r bool) *UniqError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *UniqError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Unit != "" {
		parts = append(parts, fmt.Sprintf("unit=%s", e.Unit))
	}

	prefix := e.Category.String() + " error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is reports a match for any *UniqError target of the same category, or
// anything in the cause chain.
func (e *UniqError) Is(target error) bool {
	if t, ok := target.(*UniqError); ok {
		return t.Category == e.Category
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// TimeoutError
// -----------------------------------------------------------------------------

// TimeoutError represents an operation that ran past its deadline.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for collaborator health", 60*time.Second)
//	fmt.Println(err) // "timeout error: waiting for collaborator health (timeout: 1m0s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if target == ErrTimeout {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// CategoryOf returns the category of the first UniqError in err's chain.
func CategoryOf(err error) (Category, bool) {
	var ue *UniqError
	if As(err, &ue) {
		return ue.Category, true
	}
	return 0, false
}

// AsUnit tags the first UniqError in err's chain with unit, unless it
// already names one. It returns err unchanged.
func AsUnit(err error, unit string) error {
	var ue *UniqError
	if As(err, &ue) && ue.Unit == "" {
		ue.Unit = unit
	}
	return err
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var classified ClassifiedError
	if As(err, &classified) {
		return classified.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var classified ClassifiedError
	if As(err, &classified) {
		return classified.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ClassifiedError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var classified ClassifiedError
	if As(err, &classified) {
		return classified.Severity()
	}

	return SeverityError
}

// UserMessage renders err for the status bar. Internal errors collapse to a
// generic message so raw transport noise never reaches the display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	return "internal error: " + err.Error()
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
