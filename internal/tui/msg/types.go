package msg

import (
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// AdvancedMsg is sent when an Advance call returns.
type AdvancedMsg struct {
	Action wizard.Action
	Err    error
}

// AnsweredMsg is sent when a clarification answer has been processed.
type AnsweredMsg struct {
	Err error
}

// SavedMsg is sent when the session has been written.
type SavedMsg struct {
	Slot string
	Path string
	Err  error
}

// LoadedMsg is sent when a saved session has been restored.
type LoadedMsg struct {
	Slot string
	Err  error
}

// ExportedMsg is sent when an export file has been written.
type ExportedMsg struct {
	Format export.Format
	Path   string
	Err    error
}

// ToastExpiredMsg hides the toast with the given ID. A newer toast has a
// different ID and stays visible.
type ToastExpiredMsg struct {
	ID int
}

// EventMsg carries a wizard event from the bus into the update loop.
type EventMsg struct {
	Event event.Event
}
