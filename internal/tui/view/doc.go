// Package view provides the render functions of the wizard TUI.
//
// Each function takes the styles and the slice of state it draws and
// returns a string, so views can be tested without a running program:
//
//   - [RenderTimeline]: the step list with completed/active/pending icons
//   - [RenderClarification]: the question and its option picker
//   - [RenderNavigation]: the Back / Next / Regenerate controls
//   - [RenderHelpBar]: the key hints for the current input mode
//   - [RenderToast]: a feedback or error toast
//   - [Inspector]: markdown rendering of the selected node's details
package view
