// Package msg defines the Bubble Tea messages exchanged by the wizard TUI
// and the command factories that produce them.
//
// Every model call, save, load and export runs as a tea.Cmd off the update
// loop. The result comes back as one of the *Msg types in this package so
// the model can update its state and show a toast.
package msg
