package styles

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ThemeFile represents a custom theme loaded from YAML.
type ThemeFile struct {
	// Name is the display name of the theme.
	Name string `yaml:"name"`
	// Author is the optional theme author.
	Author string `yaml:"author,omitempty"`
	// Version is the theme format version (currently "1").
	Version string `yaml:"version"`
	// Colors defines the color palette.
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors defines all color values for a theme.
type ThemeColors struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Warning   string `yaml:"warning"`
	Error     string `yaml:"error"`
	Muted     string `yaml:"muted"`
	Surface   string `yaml:"surface"`
	Text      string `yaml:"text"`
	Border    string `yaml:"border"`

	// Search colors are optional and fall back to the default palette.
	SearchMatchBg string `yaml:"search_match_bg,omitempty"`
	SearchMatchFg string `yaml:"search_match_fg,omitempty"`
}

// hexColorRegex validates hex color format.
var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadThemeFile loads a theme from a YAML file.
func LoadThemeFile(fs afero.Fs, path string) (*ThemeFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}

	return &theme, nil
}

// Validate checks that the theme file is well-formed.
func (t *ThemeFile) Validate() error {
	if t.Name == "" {
		return errors.New("theme name is required")
	}
	if t.Version != "1" {
		return fmt.Errorf("unsupported theme version: %q (supported: 1)", t.Version)
	}

	required := []struct{ name, value string }{
		{"primary", t.Colors.Primary},
		{"secondary", t.Colors.Secondary},
		{"warning", t.Colors.Warning},
		{"error", t.Colors.Error},
		{"muted", t.Colors.Muted},
		{"surface", t.Colors.Surface},
		{"text", t.Colors.Text},
		{"border", t.Colors.Border},
	}
	for _, c := range required {
		if c.value == "" {
			return fmt.Errorf("color '%s' is required", c.name)
		}
		if !isValidHexColor(c.value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", c.name, c.value)
		}
	}

	for name, value := range map[string]string{
		"search_match_bg": t.Colors.SearchMatchBg,
		"search_match_fg": t.Colors.SearchMatchFg,
	} {
		if value != "" && !isValidHexColor(value) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, value)
		}
	}
	return nil
}

func isValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// ToPalette converts the theme file to a ColorPalette.
func (t *ThemeFile) ToPalette() *ColorPalette {
	defaults := DefaultPalette()
	return &ColorPalette{
		Primary:       lipgloss.Color(t.Colors.Primary),
		Secondary:     lipgloss.Color(t.Colors.Secondary),
		Warning:       lipgloss.Color(t.Colors.Warning),
		Error:         lipgloss.Color(t.Colors.Error),
		Muted:         lipgloss.Color(t.Colors.Muted),
		Surface:       lipgloss.Color(t.Colors.Surface),
		Text:          lipgloss.Color(t.Colors.Text),
		Border:        lipgloss.Color(t.Colors.Border),
		SearchMatchBg: colorOrDefault(t.Colors.SearchMatchBg, defaults.SearchMatchBg),
		SearchMatchFg: colorOrDefault(t.Colors.SearchMatchFg, defaults.SearchMatchFg),
	}
}

func colorOrDefault(color string, fallback lipgloss.Color) lipgloss.Color {
	if color == "" {
		return fallback
	}
	return lipgloss.Color(color)
}

// ResolvePalette returns the palette for a theme setting: a built-in theme
// name, or a path to a YAML theme file. An empty setting gives the default
// palette.
func ResolvePalette(fs afero.Fs, theme string) (*ColorPalette, error) {
	if theme == "" || IsBuiltinTheme(theme) {
		return GetPalette(ThemeName(theme)), nil
	}
	ext := strings.ToLower(filepath.Ext(theme))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unknown theme %q: expected one of %s or a .yaml file",
			theme, strings.Join(BuiltinThemes(), ", "))
	}
	file, err := LoadThemeFile(fs, theme)
	if err != nil {
		return nil, err
	}
	return file.ToPalette(), nil
}
