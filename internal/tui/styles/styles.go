// Package styles holds the lipgloss styles and color themes of the wizard
// TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Styles contains all the lipgloss styles built from a color palette.
type Styles struct {
	Palette *ColorPalette

	// Convenience styles for colors
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	// Header
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style

	// Panes
	Sidebar     lipgloss.Style
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	// Timeline
	StepActive    lipgloss.Style
	StepCompleted lipgloss.Style
	StepPending   lipgloss.Style

	// Clarification picker
	Question       lipgloss.Style
	Option         lipgloss.Style
	OptionSelected lipgloss.Style

	// Buttons
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style

	// Toasts
	Feedback lipgloss.Style
	ErrorBox lipgloss.Style

	// Help bar
	HelpBar lipgloss.Style
	HelpKey lipgloss.Style

	// Search
	SearchPrompt lipgloss.Style
	SearchMatch  lipgloss.Style

	// Input
	Input lipgloss.Style
}

// New builds the styles for palette p. A nil palette uses the default.
func New(p *ColorPalette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	s := &Styles{Palette: p}

	s.Primary = lipgloss.NewStyle().Foreground(p.Primary)
	s.Secondary = lipgloss.NewStyle().Foreground(p.Secondary)
	s.Warning = lipgloss.NewStyle().Foreground(p.Warning)
	s.Error = lipgloss.NewStyle().Foreground(p.Error)
	s.Muted = lipgloss.NewStyle().Foreground(p.Muted)
	s.Text = lipgloss.NewStyle().Foreground(p.Text)

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)

	s.Subtitle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	s.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(p.Border).
		PaddingBottom(0)

	s.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	s.Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	s.PaneFocused = s.Pane.
		BorderForeground(p.Primary)

	s.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary)

	s.StepActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)

	s.StepCompleted = lipgloss.NewStyle().
		Foreground(p.Secondary)

	s.StepPending = lipgloss.NewStyle().
		Foreground(p.Muted)

	s.Question = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Warning).
		MarginBottom(1)

	s.Option = lipgloss.NewStyle().
		Foreground(p.Text).
		PaddingLeft(2)

	s.OptionSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		PaddingLeft(0)

	s.Button = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Surface).
		Background(p.Primary).
		Padding(0, 1)

	s.ButtonDisabled = lipgloss.NewStyle().
		Foreground(p.Muted).
		Background(p.Surface).
		Padding(0, 1)

	s.Feedback = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(0, 1)

	s.ErrorBox = lipgloss.NewStyle().
		Foreground(p.Error).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Error).
		Padding(0, 1)

	s.HelpBar = lipgloss.NewStyle().
		Foreground(p.Muted)

	s.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary)

	s.SearchPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Warning)

	s.SearchMatch = lipgloss.NewStyle().
		Foreground(p.SearchMatchFg).
		Background(p.SearchMatchBg)

	s.Input = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)

	return s
}

// StepStyle returns the timeline style for a step status name: "active",
// "completed" or "pending".
func (s *Styles) StepStyle(status string) lipgloss.Style {
	switch status {
	case "active":
		return s.StepActive
	case "completed":
		return s.StepCompleted
	default:
		return s.StepPending
	}
}

// StepIcon returns the timeline icon for a step status name.
func StepIcon(status string) string {
	switch status {
	case "active":
		return "●"
	case "completed":
		return "✓"
	default:
		return "○"
	}
}
