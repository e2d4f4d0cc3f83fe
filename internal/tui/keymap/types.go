// Package keymap provides key binding definitions and lookup for the TUI.
// Bindings are declared per input mode so the update loop can translate a
// key press into a named command without a switch per mode.
package keymap

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the TUI.
type Mode string

const (
	ModeIdea    Mode = "idea"    // Typing the app idea
	ModeNormal  Mode = "normal"  // Browsing the plan
	ModeClarify Mode = "clarify" // Picking a clarification option
	ModeSearch  Mode = "search"  // Typing a node search (after /)
)

// Command represents a named action that can be triggered by a key binding.
type Command string

// Normal mode commands
const (
	// Wizard
	CmdNext       Command = "next"
	CmdBack       Command = "back"
	CmdRegenerate Command = "regenerate"
	CmdNewIdea    Command = "new_idea"

	// Session
	CmdSave   Command = "save"
	CmdLoad   Command = "load"
	CmdExport Command = "export"

	// Mind map
	CmdCursorNext     Command = "cursor_next"
	CmdCursorPrev     Command = "cursor_prev"
	CmdSelect         Command = "select"
	CmdToggleSelect   Command = "toggle_select"
	CmdClearSelection Command = "clear_selection"
	CmdToggleCollapse Command = "toggle_collapse"
	CmdEnterSearch    Command = "enter_search"

	// Inspector
	CmdScrollDown Command = "scroll_down"
	CmdScrollUp   Command = "scroll_up"

	CmdToggleHelp Command = "toggle_help"
	CmdQuit       Command = "quit"
)

// Text entry commands, shared by the idea and search modes
const (
	CmdSubmit Command = "submit"
	CmdCancel Command = "cancel"
)

// Clarify mode commands
const (
	CmdOptionUp   Command = "option_up"
	CmdOptionDown Command = "option_down"
	CmdOptionPick Command = "option_pick" // 1-9 keys
	CmdAnswer     Command = "answer"
)

// KeyBinding represents a single key binding configuration.
type KeyBinding struct {
	// KeyType is the key. For rune keys use tea.KeyRunes and set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys.
	Rune rune

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a human-readable description for help display.
	Description string

	// Category groups related bindings together in help display.
	Category string

	// Hidden bindings work but are left out of the help bar.
	Hidden bool
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	if msg.Alt {
		return false
	}

	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	if kb.KeyType != tea.KeyRunes {
		if kb.KeyType == tea.KeySpace {
			return "space"
		}
		return kb.KeyType.String()
	}
	return string(kb.Rune)
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding looks up a command for a key in this mode.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	Name  string
	Modes map[Mode]*ModeBindings
}

// GetBinding looks up a command for a key in a specific mode.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns all bindings for a specific mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// HelpBindings returns one visible binding per command in a mode, in
// declaration order, for the help bar.
func (km *Keymap) HelpBindings(mode Mode) []KeyBinding {
	var out []KeyBinding
	var seen []Command
	for _, b := range km.GetModeBindings(mode) {
		if b.Hidden || slices.Contains(seen, b.Command) {
			continue
		}
		seen = append(seen, b.Command)
		out = append(out, b)
	}
	return out
}

// GetCategories returns the unique categories in a mode's bindings in
// declaration order.
func (km *Keymap) GetCategories(mode Mode) []string {
	var categories []string
	for _, b := range km.GetModeBindings(mode) {
		if b.Category != "" && !slices.Contains(categories, b.Category) {
			categories = append(categories, b.Category)
		}
	}
	return categories
}
