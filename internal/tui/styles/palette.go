package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault        ThemeName = "default"         // Orange/teal dark theme
	ThemeDracula        ThemeName = "dracula"         // Dracula theme colors
	ThemeNord           ThemeName = "nord"            // Nord theme - cool blue-gray
	ThemeSolarizedLight ThemeName = "solarized-light" // Solarized Light variant
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeDracula),
		string(ThemeNord),
		string(ThemeSolarizedLight),
	}
}

// IsBuiltinTheme checks if a theme name is a built-in theme.
func IsBuiltinTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	// Primary accent color (titles, the active step)
	Primary lipgloss.Color
	// Secondary accent color (completed steps, success feedback)
	Secondary lipgloss.Color
	// Warning color (clarification prompts)
	Warning lipgloss.Color
	// Error color (error toasts)
	Error lipgloss.Color
	// Muted color (pending steps, help text)
	Muted lipgloss.Color
	// Surface color (status bar background)
	Surface lipgloss.Color
	// Text color (primary text)
	Text lipgloss.Color
	// Border color (pane borders)
	Border lipgloss.Color

	// Search highlight colors
	SearchMatchBg lipgloss.Color
	SearchMatchFg lipgloss.Color
}

// DefaultPalette returns the default dark theme palette, using the idea
// node's orange as the primary accent.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FB923C"), // Orange
		Secondary: lipgloss.Color("#2DD4BF"), // Teal
		Warning:   lipgloss.Color("#FBBF24"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500

		SearchMatchBg: lipgloss.Color("#854D0E"), // Dark yellow
		SearchMatchFg: lipgloss.Color("#FEF3C7"), // Light cream
	}
}

// DraculaPalette returns the Dracula theme palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"), // Dracula purple
		Secondary: lipgloss.Color("#50FA7B"), // Dracula green
		Warning:   lipgloss.Color("#F1FA8C"), // Dracula yellow
		Error:     lipgloss.Color("#FF5555"), // Dracula red
		Muted:     lipgloss.Color("#6272A4"), // Dracula comment
		Surface:   lipgloss.Color("#282A36"), // Dracula background
		Text:      lipgloss.Color("#F8F8F2"), // Dracula foreground
		Border:    lipgloss.Color("#44475A"), // Dracula selection

		SearchMatchBg: lipgloss.Color("#44475A"),
		SearchMatchFg: lipgloss.Color("#F1FA8C"),
	}
}

// NordPalette returns the Nord theme palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"), // Frost
		Secondary: lipgloss.Color("#A3BE8C"), // Aurora green
		Warning:   lipgloss.Color("#EBCB8B"), // Aurora yellow
		Error:     lipgloss.Color("#BF616A"), // Aurora red
		Muted:     lipgloss.Color("#7B88A1"), // Muted snow
		Surface:   lipgloss.Color("#3B4252"), // Polar night
		Text:      lipgloss.Color("#ECEFF4"), // Snow storm
		Border:    lipgloss.Color("#4C566A"), // Polar night 3

		SearchMatchBg: lipgloss.Color("#5E81AC"),
		SearchMatchFg: lipgloss.Color("#ECEFF4"),
	}
}

// SolarizedLightPalette returns the Solarized Light theme palette.
func SolarizedLightPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#CB4B16"), // Solarized orange
		Secondary: lipgloss.Color("#859900"), // Solarized green
		Warning:   lipgloss.Color("#B58900"), // Solarized yellow
		Error:     lipgloss.Color("#DC322F"), // Solarized red
		Muted:     lipgloss.Color("#93A1A1"), // Base1
		Surface:   lipgloss.Color("#EEE8D5"), // Base2
		Text:      lipgloss.Color("#586E75"), // Base01 text
		Border:    lipgloss.Color("#93A1A1"), // Base1

		SearchMatchBg: lipgloss.Color("#EEE8D5"),
		SearchMatchFg: lipgloss.Color("#B58900"),
	}
}

// GetPalette returns the color palette for a built-in theme name. Unknown
// names get the default palette.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	case ThemeSolarizedLight:
		return SolarizedLightPalette()
	default:
		return DefaultPalette()
	}
}
