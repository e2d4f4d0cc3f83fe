package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "retry.max_attempts")
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

// slotNameRegex restricts session slot names to something safe as a file name
var slotNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidSlotName reports whether name can be used as a session slot.
func ValidSlotName(name string) bool {
	return slotNameRegex.MatchString(name) && !strings.Contains(name, "..")
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidBackends returns the list of supported model backends
func ValidBackends() []string {
	return []string{"gemini", "claude"}
}

// ValidCacheBackends returns the list of supported response cache backends
func ValidCacheBackends() []string {
	return []string{"memory", "sqlite", "none"}
}

// ValidExportFormats returns the list of supported export formats
func ValidExportFormats() []string {
	return []string{"json", "md", "txt", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAI()...)
	errors = append(errors, c.validateRetry()...)
	errors = append(errors, c.validateCache()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateExport()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

// validateAI validates the AIConfig
func (c *Config) validateAI() []ValidationError {
	var errors []ValidationError

	if c.AI.Backend != "" && !slices.Contains(ValidBackends(), c.AI.Backend) {
		errors = append(errors, ValidationError{
			Field:   "ai.backend",
			Value:   c.AI.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if c.AI.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "ai.timeout_seconds",
			Value:   c.AI.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	if c.AI.Gemini.Temperature < 0 || c.AI.Gemini.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "ai.gemini.temperature",
			Value:   c.AI.Gemini.Temperature,
			Message: "must be between 0 and 2",
		})
	}

	if c.AI.Backend == "claude" && strings.TrimSpace(c.AI.Claude.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "ai.claude.command",
			Value:   c.AI.Claude.Command,
			Message: "is required when ai.backend is claude",
		})
	}

	return errors
}

// validateRetry validates the RetryConfig
func (c *Config) validateRetry() []ValidationError {
	var errors []ValidationError

	const maxAttemptsLimit = 10
	if c.Retry.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "retry.max_attempts",
			Value:   c.Retry.MaxAttempts,
			Message: "must be at least 1",
		})
	}
	if c.Retry.MaxAttempts > maxAttemptsLimit {
		errors = append(errors, ValidationError{
			Field:   "retry.max_attempts",
			Value:   c.Retry.MaxAttempts,
			Message: fmt.Sprintf("exceeds maximum of %d", maxAttemptsLimit),
		})
	}

	if c.Retry.BaseDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.base_delay_ms",
			Value:   c.Retry.BaseDelayMs,
			Message: "must be non-negative",
		})
	}
	if c.Retry.MaxDelayMs < c.Retry.BaseDelayMs {
		errors = append(errors, ValidationError{
			Field:   "retry.max_delay_ms",
			Value:   c.Retry.MaxDelayMs,
			Message: "must be at least retry.base_delay_ms",
		})
	}

	return errors
}

// validateCache validates the CacheConfig
func (c *Config) validateCache() []ValidationError {
	var errors []ValidationError

	if c.Cache.Backend != "" && !slices.Contains(ValidCacheBackends(), c.Cache.Backend) {
		errors = append(errors, ValidationError{
			Field:   "cache.backend",
			Value:   c.Cache.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidCacheBackends(), ", ")),
		})
	}

	if strings.ContainsRune(c.Cache.Path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "cache.path",
			Value:   c.Cache.Path,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateSession validates the SessionConfig
func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.Slot != "" && !ValidSlotName(c.Session.Slot) {
		errors = append(errors, ValidationError{
			Field:   "session.slot",
			Value:   c.Session.Slot,
			Message: "must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
		})
	}

	if strings.ContainsRune(c.Session.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "session.dir",
			Value:   c.Session.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateExport validates the ExportConfig
func (c *Config) validateExport() []ValidationError {
	var errors []ValidationError

	if c.Export.Format != "" && !slices.Contains(ValidExportFormats(), c.Export.Format) {
		errors = append(errors, ValidationError{
			Field:   "export.format",
			Value:   c.Export.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidExportFormats(), ", ")),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.FeedbackSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.feedback_seconds",
			Value:   c.TUI.FeedbackSeconds,
			Message: "must be non-negative",
		})
	}
	if c.TUI.ErrorSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.error_seconds",
			Value:   c.TUI.ErrorSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}
