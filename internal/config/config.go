package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete App Canvas configuration
type Config struct {
	AI      AIConfig      `mapstructure:"ai"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

// AIConfig selects and configures the language model backend
type AIConfig struct {
	// Backend is the model backend: "gemini" (default) or "claude"
	Backend string `mapstructure:"backend"`
	// APIKey is the provider API key. Falls back to GEMINI_API_KEY / API_KEY.
	APIKey string `mapstructure:"api_key"`
	// TimeoutSeconds bounds a single model request (0 = no timeout)
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	Gemini         GeminiBackendConfig `mapstructure:"gemini"`
	Claude         ClaudeBackendConfig `mapstructure:"claude"`
}

// GeminiBackendConfig configures the Google GenAI backend
type GeminiBackendConfig struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// ClaudeBackendConfig configures the Claude CLI backend
type ClaudeBackendConfig struct {
	// Command is the CLI executable (default: "claude")
	Command string `mapstructure:"command"`
	// Model is passed with --model when set
	Model string `mapstructure:"model"`
}

// RetryConfig controls retry-with-backoff on transient model failures
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first (default: 3)
	MaxAttempts int `mapstructure:"max_attempts"`
	// BaseDelayMs is the delay before the first retry, doubled on each attempt
	BaseDelayMs int `mapstructure:"base_delay_ms"`
	// MaxDelayMs caps the backoff delay
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

// CacheConfig controls the model response cache
type CacheConfig struct {
	// Backend is "memory" (default), "sqlite" or "none"
	Backend string `mapstructure:"backend"`
	// Path is the SQLite database file (default: <data dir>/cache.db)
	Path string `mapstructure:"path"`
}

// SessionConfig controls where wizard sessions are saved
type SessionConfig struct {
	// Dir is the directory holding saved sessions (default: <data dir>/sessions)
	Dir string `mapstructure:"dir"`
	// Slot is the default save slot name
	Slot string `mapstructure:"slot"`
}

// ExportConfig controls plan exports
type ExportConfig struct {
	// Dir is the output directory for exports (default: current directory)
	Dir string `mapstructure:"dir"`
	// Format is the default export format: json, md, txt or yaml
	Format string `mapstructure:"format"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Enabled writes JSON logs to <data dir>/appcanvas.log
	Enabled bool `mapstructure:"enabled"`
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file
	Theme string `mapstructure:"theme"`
	// FeedbackSeconds is how long success toasts stay visible
	FeedbackSeconds int `mapstructure:"feedback_seconds"`
	// ErrorSeconds is how long error toasts stay visible
	ErrorSeconds int `mapstructure:"error_seconds"`
}

// DefaultSlot is the save slot used when none is configured.
const DefaultSlot = "appCanvasAIState"

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Backend:        "gemini",
			TimeoutSeconds: 120,
			Gemini: GeminiBackendConfig{
				Model:       "gemini-2.5-flash",
				Temperature: 0.7,
			},
			Claude: ClaudeBackendConfig{
				Command: "claude",
			},
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 500,
			MaxDelayMs:  8000,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Session: SessionConfig{
			Slot: DefaultSlot,
		},
		Export: ExportConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		TUI: TUIConfig{
			Theme:           "default",
			FeedbackSeconds: 3,
			ErrorSeconds:    5,
		},
	}
}

// RequestTimeout returns the per-request model timeout (0 = none).
func (c *AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIKey returns the configured key or the first non-empty of the
// GEMINI_API_KEY and API_KEY environment variables.
func (c *AIConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	for _, env := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// BaseDelay returns the initial retry delay.
func (c *RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the retry delay cap.
func (c *RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}

// ResolvePath returns the cache database path, defaulting into the data dir.
func (c *CacheConfig) ResolvePath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "cache.db")
}

// ResolveDir returns the session directory, defaulting into the data dir.
func (c *SessionConfig) ResolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(DataDir(), "sessions")
}

// FeedbackDuration returns how long success toasts stay visible.
func (c *TUIConfig) FeedbackDuration() time.Duration {
	return time.Duration(c.FeedbackSeconds) * time.Second
}

// ErrorDuration returns how long error toasts stay visible.
func (c *TUIConfig) ErrorDuration() time.Duration {
	return time.Duration(c.ErrorSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("ai.backend", defaults.AI.Backend)
	viper.SetDefault("ai.api_key", defaults.AI.APIKey)
	viper.SetDefault("ai.timeout_seconds", defaults.AI.TimeoutSeconds)
	viper.SetDefault("ai.gemini.model", defaults.AI.Gemini.Model)
	viper.SetDefault("ai.gemini.temperature", defaults.AI.Gemini.Temperature)
	viper.SetDefault("ai.claude.command", defaults.AI.Claude.Command)
	viper.SetDefault("ai.claude.model", defaults.AI.Claude.Model)

	viper.SetDefault("retry.max_attempts", defaults.Retry.MaxAttempts)
	viper.SetDefault("retry.base_delay_ms", defaults.Retry.BaseDelayMs)
	viper.SetDefault("retry.max_delay_ms", defaults.Retry.MaxDelayMs)

	viper.SetDefault("cache.backend", defaults.Cache.Backend)
	viper.SetDefault("cache.path", defaults.Cache.Path)

	viper.SetDefault("session.dir", defaults.Session.Dir)
	viper.SetDefault("session.slot", defaults.Session.Slot)

	viper.SetDefault("export.dir", defaults.Export.Dir)
	viper.SetDefault("export.format", defaults.Export.Format)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.feedback_seconds", defaults.TUI.FeedbackSeconds)
	viper.SetDefault("tui.error_seconds", defaults.TUI.ErrorSeconds)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "appcanvas")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".appcanvas"
	}
	return filepath.Join(home, ".config", "appcanvas")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory for sessions, the response cache and logs.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "appcanvas")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".appcanvas"
	}
	return filepath.Join(home, ".local", "share", "appcanvas")
}
