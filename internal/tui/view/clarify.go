package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// RenderClarification renders a pending question with its options. The
// option at cursor is highlighted.
func RenderClarification(s *styles.Styles, pending *wizard.PendingClarification, cursor int, width int) string {
	if pending == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.Question.Width(max(width, 0)).Render(pending.Question))
	b.WriteString("\n")
	for i, opt := range pending.Options {
		label := fmt.Sprintf("%d. %s", i+1, opt)
		if i == cursor {
			b.WriteString(s.OptionSelected.Render("▸ " + label))
		} else {
			b.WriteString(s.Option.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Answer to continue, or go back."))
	return b.String()
}
