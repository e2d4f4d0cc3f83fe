package view

import "github.com/Iron-Ham/appcanvas/internal/tui/styles"

// ToastKind selects the toast style.
type ToastKind int

const (
	ToastFeedback ToastKind = iota
	ToastError
)

// Toast is a transient message shown above the help bar.
type Toast struct {
	ID   int
	Kind ToastKind
	Text string
}

// RenderToast renders t, or "" for a nil toast.
func RenderToast(s *styles.Styles, t *Toast) string {
	if t == nil || t.Text == "" {
		return ""
	}
	if t.Kind == ToastError {
		return s.ErrorBox.Render("✗ " + t.Text)
	}
	return s.Feedback.Render("✓ " + t.Text)
}
