package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify App Canvas configuration",
		Long: `View or modify App Canvas configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
		RunE: runConfigShow,
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long:  configSetLong(),
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a default config file",
			Long:  `Create a default config file at ~/.config/appcanvas/config.yaml with all available options.`,
			RunE:  runConfigInit,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			RunE:  runConfigPath,
		},
	)
	return configCmd
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

type configKey struct {
	kind    keyKind
	help    string
	choices func() []string
}

// configKeys are the keys accepted by 'config set'.
var configKeys = map[string]configKey{
	"ai.backend":            {kind: kindString, help: "Model backend", choices: config.ValidBackends},
	"ai.api_key":            {kind: kindString, help: "Gemini API key (or set GEMINI_API_KEY)"},
	"ai.timeout_seconds":    {kind: kindInt, help: "Per-request timeout, 0 for none"},
	"ai.gemini.model":       {kind: kindString, help: "Gemini model name"},
	"ai.gemini.temperature": {kind: kindFloat, help: "Sampling temperature (0-2)"},
	"ai.claude.command":     {kind: kindString, help: "Claude CLI executable"},
	"ai.claude.model":       {kind: kindString, help: "Claude model passed with --model"},
	"retry.max_attempts":    {kind: kindInt, help: "Attempts per request including the first"},
	"retry.base_delay_ms":   {kind: kindInt, help: "First retry delay in milliseconds"},
	"retry.max_delay_ms":    {kind: kindInt, help: "Retry delay cap in milliseconds"},
	"cache.backend":         {kind: kindString, help: "Response cache", choices: config.ValidCacheBackends},
	"cache.path":            {kind: kindString, help: "SQLite cache file"},
	"session.dir":           {kind: kindString, help: "Directory for saved sessions"},
	"session.slot":          {kind: kindString, help: "Default save slot"},
	"export.dir":            {kind: kindString, help: "Directory for exports"},
	"export.format":         {kind: kindString, help: "Default export format", choices: config.ValidExportFormats},
	"logging.enabled":       {kind: kindBool, help: "Write a debug log"},
	"logging.level":         {kind: kindString, help: "Log level", choices: config.ValidLogLevels},
	"tui.theme":             {kind: kindString, help: "Built-in theme or path to a theme file"},
	"tui.feedback_seconds":  {kind: kindInt, help: "How long success messages stay visible"},
	"tui.error_seconds":     {kind: kindInt, help: "How long error messages stay visible"},
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configSetLong() string {
	var b strings.Builder
	b.WriteString(`Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  appcanvas config set ai.gemini.model gemini-2.5-pro
  appcanvas config set cache.backend sqlite
  appcanvas config set tui.theme nord

Valid keys:
`)
	for _, k := range sortedConfigKeys() {
		key := configKeys[k]
		fmt.Fprintf(&b, "  %-22s - %s\n", k, key.help)
		if key.choices != nil {
			fmt.Fprintf(&b, "  %-22s   Options: %s\n", "", strings.Join(key.choices(), ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := config.Get()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintf(out, "Data dir:    %s\n", config.DataDir())
	fmt.Fprintln(out)

	data, err := yaml.Marshal(configView(cfg))
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// configView is the configuration as shown to the user. The API key is
// masked.
func configView(cfg *config.Config) map[string]any {
	key := cfg.AI.APIKey
	if key != "" {
		key = maskSecret(key)
	} else if cfg.AI.ResolveAPIKey() != "" {
		key = "(from environment)"
	}
	return map[string]any{
		"ai": map[string]any{
			"backend":         cfg.AI.Backend,
			"api_key":         key,
			"timeout_seconds": cfg.AI.TimeoutSeconds,
			"gemini": map[string]any{
				"model":       cfg.AI.Gemini.Model,
				"temperature": cfg.AI.Gemini.Temperature,
			},
			"claude": map[string]any{
				"command": cfg.AI.Claude.Command,
				"model":   cfg.AI.Claude.Model,
			},
		},
		"retry": map[string]any{
			"max_attempts":  cfg.Retry.MaxAttempts,
			"base_delay_ms": cfg.Retry.BaseDelayMs,
			"max_delay_ms":  cfg.Retry.MaxDelayMs,
		},
		"cache": map[string]any{
			"backend": cfg.Cache.Backend,
			"path":    cfg.Cache.ResolvePath(),
		},
		"session": map[string]any{
			"dir":  cfg.Session.ResolveDir(),
			"slot": cfg.Session.Slot,
		},
		"export": map[string]any{
			"dir":    cfg.Export.Dir,
			"format": cfg.Export.Format,
		},
		"logging": map[string]any{
			"enabled": cfg.Logging.Enabled,
			"level":   cfg.Logging.Level,
		},
		"tui": map[string]any{
			"theme":            cfg.TUI.Theme,
			"feedback_seconds": cfg.TUI.FeedbackSeconds,
			"error_seconds":    cfg.TUI.ErrorSeconds,
		},
	}
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// parseConfigValue validates value for key and converts it to the key's
// type.
func parseConfigValue(key, value string) (any, error) {
	ck, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'appcanvas config set --help' to see valid keys", key)
	}

	if ck.choices != nil && !slices.Contains(ck.choices(), value) {
		return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
			key, value, strings.Join(ck.choices(), ", "))
	}

	switch ck.kind {
	case kindBool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case kindInt:
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case kindFloat:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a number", key)
		}
		return f, nil
	}

	switch key {
	case "session.slot":
		if !config.ValidSlotName(value) {
			return nil, fmt.Errorf("invalid value for %s: %q is not a valid slot name", key, value)
		}
	case "tui.theme":
		if !styles.IsBuiltinTheme(value) && filepath.Ext(value) != ".yaml" && filepath.Ext(value) != ".yml" {
			return nil, fmt.Errorf("invalid value for %s: %s\nUse one of %s or a .yaml theme file",
				key, value, strings.Join(styles.BuiltinThemes(), ", "))
		}
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	key := args[0]

	typedValue, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	display := typedValue
	if key == "ai.api_key" {
		display = maskSecret(args[1])
	}
	fmt.Fprintf(out, "Set %s = %v\n", key, display)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)

	return nil
}

const defaultConfigFile = `# App Canvas Configuration

# Language model
ai:
  # Backend: gemini or claude
  backend: gemini
  # API key for Gemini. Leave empty to use GEMINI_API_KEY or API_KEY.
  api_key: ""
  # Per-request timeout in seconds (0 = no timeout)
  timeout_seconds: 120
  gemini:
    model: gemini-2.5-flash
    temperature: 0.7
  claude:
    # Claude CLI executable
    command: claude
    # Passed with --model when set
    model: ""

# Retry with exponential backoff on transient model errors
retry:
  max_attempts: 3
  base_delay_ms: 500
  max_delay_ms: 8000

# Model response cache
cache:
  # Options: memory, sqlite, none
  backend: memory
  # SQLite database file (default: <data dir>/cache.db)
  path: ""

# Saved sessions
session:
  # Default: <data dir>/sessions
  dir: ""
  slot: appCanvasAIState

# Plan exports
export:
  # Default: current directory
  dir: ""
  # Options: json, md, txt, yaml
  format: json

# Debug logging to <data dir>/appcanvas.log
logging:
  enabled: false
  # Options: debug, info, warn, error
  level: info

# TUI (terminal user interface) settings
tui:
  # Built-in theme (default, dracula, nord, solarized-light) or a theme file
  theme: default
  # Seconds that success and error messages stay visible
  feedback_seconds: 3
  error_seconds: 5
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'appcanvas config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigFile), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize App Canvas.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", configFile)
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: APPCANVAS_* (e.g., APPCANVAS_AI_BACKEND)")

	return nil
}
