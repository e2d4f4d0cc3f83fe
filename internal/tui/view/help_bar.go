package view

import (
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/tui/keymap"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
)

// RenderHelpBar renders the visible bindings of mode as "[key] description"
// pairs.
func RenderHelpBar(s *styles.Styles, km *keymap.Keymap, mode keymap.Mode) string {
	bindings := km.HelpBindings(mode)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		key := b.String()
		if b.Command == keymap.CmdOptionPick {
			key = "1-9"
		}
		parts = append(parts, s.HelpKey.Render("["+key+"]")+" "+b.Description)
	}
	return s.HelpBar.Render(strings.Join(parts, "  "))
}

// RenderHelp renders the full help overlay grouped by category.
func RenderHelp(s *styles.Styles, km *keymap.Keymap, mode keymap.Mode) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Keys"))
	b.WriteString("\n")
	for _, cat := range km.GetCategories(mode) {
		b.WriteString("\n")
		b.WriteString(s.PaneTitle.Render(cat))
		b.WriteString("\n")
		for _, kb := range km.GetModeBindings(mode) {
			if kb.Category != cat {
				continue
			}
			b.WriteString("  ")
			b.WriteString(s.HelpKey.Render(padRight(kb.String(), 10)))
			b.WriteString(kb.Description)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func padRight(str string, width int) string {
	if n := len([]rune(str)); n < width {
		return str + strings.Repeat(" ", width-n)
	}
	return str + " "
}
