package msg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// Advance returns a command that performs the wizard's next action.
func Advance(ctx context.Context, w *wizard.Wizard) tea.Cmd {
	return func() tea.Msg {
		action, err := w.Advance(ctx)
		return AdvancedMsg{Action: action, Err: err}
	}
}

// Answer returns a command that answers the pending clarification.
func Answer(ctx context.Context, w *wizard.Wizard, answer string) tea.Cmd {
	return func() tea.Msg {
		return AnsweredMsg{Err: w.AnswerClarification(ctx, answer)}
	}
}

// Save returns a command that saves the session to slot.
func Save(w *wizard.Wizard, store *session.Store, slot string) tea.Cmd {
	return func() tea.Msg {
		path, err := w.Save(store, slot)
		return SavedMsg{Slot: slot, Path: path, Err: err}
	}
}

// Load returns a command that restores the session in slot.
func Load(w *wizard.Wizard, store *session.Store, slot string) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Slot: slot, Err: w.Load(store, slot)}
	}
}

// Export returns a command that writes the wizard's plan in format f to dir.
func Export(w *wizard.Wizard, f export.Format, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Write(f, w.Snapshot(), dir)
		return ExportedMsg{Format: f, Path: path, Err: err}
	}
}

// ExpireToast returns a command that hides toast id after d.
func ExpireToast(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// WaitForEvent returns a command that blocks until the next event arrives
// on ch. It returns nil once ch is closed.
func WaitForEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}
