package view

import (
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// RenderNavigation renders the wizard controls. Disabled controls are
// drawn with the disabled button style.
func RenderNavigation(s *styles.Styles, nav wizard.Navigation) string {
	button := func(label string, disabled bool) string {
		if disabled {
			return s.ButtonDisabled.Render(label)
		}
		return s.Button.Render(label)
	}

	next := nav.NextLabel
	if nav.ShowNextArrow {
		next += " →"
	}

	parts := []string{
		button("← Back", nav.DisableBack),
		button(next, nav.DisableNext),
	}
	if nav.CanRegenerate {
		parts = append(parts, button("↻ Regenerate", false))
	}
	return strings.Join(parts, " ")
}
