// Package errors provides centralized error definitions and error handling utilities
// for App Canvas. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - ModelError: errors returned by (or about) the language model backend
//   - StepError: errors raised while driving a wizard step
//   - SessionError: errors related to saving and loading sessions
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
//	err := errors.NewModelError("generate content", errors.ErrQuotaExceeded).WithStatus(429)
//
//	if errors.IsRetryable(err) { ... }
//	fmt.Println(errors.UserMessage(err))
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
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
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
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

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Model-related sentinel errors
var (
	// ErrMissingAPIKey indicates that no API key has been configured.
	ErrMissingAPIKey = New("API Key is not configured. Please set the API_KEY environment variable.")
	// ErrInvalidAPIKey indicates that the provider rejected the API key.
	ErrInvalidAPIKey = New("the API key was rejected by the model provider")
	// ErrQuotaExceeded indicates that the provider quota has been exhausted.
	ErrQuotaExceeded = New("the model provider quota has been exceeded")
	// ErrMalformedResponse indicates the model answered with something that is not the requested JSON.
	ErrMalformedResponse = New("Received an invalid response from the AI model.")
	// ErrTransient indicates a temporary provider or network failure.
	ErrTransient = New("temporary model provider failure")
)

// Step-related sentinel errors
var (
	// ErrStepNotFound indicates that a step key is outside the catalogue.
	ErrStepNotFound = New("step not found")
	// ErrNotStarted indicates the wizard has no idea yet.
	ErrNotStarted = New("wizard has not been started")
	// ErrBusy indicates a model request is already outstanding.
	ErrBusy = New("a request is already in progress")
	// ErrAwaitingClarification indicates the wizard is waiting for a clarification answer.
	ErrAwaitingClarification = New("waiting for a clarification answer")
	// ErrNoPendingClarification indicates an answer was given while no question was pending.
	ErrNoPendingClarification = New("no clarification is pending")
	// ErrStepIncomplete indicates an operation needs the active step to be complete.
	ErrStepIncomplete = New("the current step has not been generated yet")
	// ErrLastStep indicates Next was called on the final step.
	ErrLastStep = New("already at the last step")
)

// Session-related sentinel errors
var (
	// ErrNoSavedSession indicates no session blob exists in the requested slot.
	ErrNoSavedSession = New("No saved session found.")
	// ErrInvalidSession indicates the session blob is missing required fields or cannot be parsed.
	ErrInvalidSession = New("Could not load session. The saved data is invalid.")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that the input provided is invalid.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// CanvasError is the base interface for all App Canvas errors.
type CanvasError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsRetryable() bool { return e.retryable }

func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ModelError represents errors returned by a language model backend.
//
// Example:
//
//	err := errors.NewModelError("generate content", errors.ErrQuotaExceeded).
//		WithBackend("gemini").WithStatus(429)
//	fmt.Println(err) // "model error [backend=gemini, status=429]: generate content: the model provider quota has been exceeded"
type ModelError struct {
	baseError
	Backend    string
	StatusCode int
}

// NewModelError creates a new ModelError. Errors caused by ErrTransient or
// ErrTimeout are retryable by default.
func NewModelError(message string, cause error) *ModelError {
	return &ModelError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  errors.Is(cause, ErrTransient) || errors.Is(cause, ErrTimeout),
			userFacing: true,
		},
	}
}

// WithBackend adds the backend name to the error context.
func (e *ModelError) WithBackend(name string) *ModelError {
	e.Backend = name
	return e
}

// WithStatus adds the provider status code to the error context.
func (e *ModelError) WithStatus(code int) *ModelError {
	e.StatusCode = code
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ModelError) WithRetryable(r bool) *ModelError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ModelError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	prefix := "model error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("model error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ModelError) Is(target error) bool {
	if _, ok := target.(*ModelError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StepError represents errors raised while running a wizard step.
type StepError struct {
	baseError
	Step     int
	StepName string
}

// NewStepError creates a new StepError for the given step.
func NewStepError(step int, message string, cause error) *StepError {
	return &StepError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Step: step,
	}
}

// WithStepName adds the human-readable step name to the error context.
func (e *StepError) WithStepName(name string) *StepError {
	e.StepName = name
	return e
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	prefix := fmt.Sprintf("step %d", e.Step)
	if e.StepName != "" {
		prefix = fmt.Sprintf("step %d (%s)", e.Step, e.StepName)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StepError) Is(target error) bool {
	if _, ok := target.(*StepError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// IsRetryable defers to the cause so a transient model failure stays retryable
// after being attributed to a step.
func (e *StepError) IsRetryable() bool {
	return IsRetryable(e.cause)
}

// SessionError represents errors related to session persistence.
//
// Example:
//
//	err := errors.NewSessionError("failed to load session", errors.ErrNoSavedSession).WithSlot("default")
//	fmt.Println(err) // "session error [slot=default]: failed to load session: No saved session found."
type SessionError struct {
	baseError
	Slot string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithSlot adds the session slot to the error context.
func (e *SessionError) WithSlot(slot string) *SessionError {
	e.Slot = slot
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.Slot != "" {
		prefix = fmt.Sprintf("session error [slot=%s]", e.Slot)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("node", "auth_module")
//	fmt.Println(err) // "node 'auth_module' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("idea cannot be empty").WithField("idea")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
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
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Quota and credential failures are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, ErrQuotaExceeded) || Is(err, ErrInvalidAPIKey) || Is(err, ErrMissingAPIKey) {
		return false
	}

	var canvasErr CanvasError
	if As(err, &canvasErr) {
		return canvasErr.IsRetryable()
	}

	return Is(err, ErrTimeout) || Is(err, ErrTransient)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var canvasErr CanvasError
	if As(err, &canvasErr) {
		return canvasErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError
	return As(err, &notFound) || As(err, &validation) || As(err, &timeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement CanvasError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var canvasErr CanvasError
	if As(err, &canvasErr) {
		return canvasErr.Severity()
	}
	return SeverityError
}

// userMessages maps sentinel errors to the short message shown in the UI.
// Order matters: the first match wins.
var userMessages = []struct {
	target error
	msg    string
}{
	{ErrMissingAPIKey, ErrMissingAPIKey.Error()},
	{ErrInvalidAPIKey, "The API key is invalid. Check your configuration and try again."},
	{ErrQuotaExceeded, "The API quota has been exceeded. Please try again later."},
	{ErrMalformedResponse, ErrMalformedResponse.Error()},
	{ErrNoSavedSession, ErrNoSavedSession.Error()},
	{ErrInvalidSession, ErrInvalidSession.Error()},
	{ErrStepNotFound, ErrStepNotFound.Error()},
	{ErrTimeout, "The request timed out. Please try again."},
	{ErrNotStarted, "Enter an idea to start."},
	{ErrBusy, "Please wait for the current request to finish."},
	{ErrAwaitingClarification, "Answer the question before moving on."},
	{ErrStepIncomplete, "Generate this step before moving on."},
	{ErrLastStep, "This is the last step."},
}

// UserMessage returns a short message suitable for an error toast.
// Known conditions map to fixed wording; other user-facing errors show their
// own text; everything else collapses to a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if Is(err, m.target) {
			return m.msg
		}
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	return "An unknown error occurred while processing the request."
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
