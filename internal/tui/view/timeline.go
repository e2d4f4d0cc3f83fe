package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// RenderTimeline renders the step list. Names longer than the width are
// truncated with an ellipsis.
func RenderTimeline(s *styles.Styles, entries []wizard.TimelineEntry, width int) string {
	var b strings.Builder
	b.WriteString(s.PaneTitle.Render("Steps"))
	b.WriteString("\n\n")

	for i, e := range entries {
		status := e.Status.String()
		label := fmt.Sprintf("%s %d. %s", styles.StepIcon(status), i+1, e.Step.Name)
		if width > 0 {
			label = truncate(label, width)
		}
		b.WriteString(s.StepStyle(status).Render(label))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(str string, width int) string {
	if lipgloss.Width(str) <= width {
		return str
	}
	return ansi.Truncate(str, width, "…")
}
