package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the default key bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeIdea:    defaultIdeaBindings(),
			ModeNormal:  defaultNormalBindings(),
			ModeClarify: defaultClarifyBindings(),
			ModeSearch:  defaultSearchBindings(),
		},
	}
}

func defaultNormalBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeNormal,
		Bindings: []KeyBinding{
			// Wizard
			{KeyType: tea.KeyRunes, Rune: 'n', Command: CmdNext, Description: "next", Category: "Wizard"},
			{KeyType: tea.KeyRunes, Rune: 'b', Command: CmdBack, Description: "back", Category: "Wizard"},
			{KeyType: tea.KeyRunes, Rune: 'r', Command: CmdRegenerate, Description: "regenerate", Category: "Wizard"},
			{KeyType: tea.KeyRunes, Rune: 'i', Command: CmdNewIdea, Description: "new idea", Category: "Wizard"},

			// Session
			{KeyType: tea.KeyRunes, Rune: 's', Command: CmdSave, Description: "save", Category: "Session"},
			{KeyType: tea.KeyRunes, Rune: 'l', Command: CmdLoad, Description: "load", Category: "Session"},
			{KeyType: tea.KeyRunes, Rune: 'e', Command: CmdExport, Description: "export", Category: "Session"},

			// Mind map
			{KeyType: tea.KeyTab, Command: CmdCursorNext, Description: "next node", Category: "Mind map"},
			{KeyType: tea.KeyShiftTab, Command: CmdCursorPrev, Description: "prev node", Category: "Mind map", Hidden: true},
			{KeyType: tea.KeyEnter, Command: CmdSelect, Description: "select", Category: "Mind map"},
			{KeyType: tea.KeyRunes, Rune: 'x', Command: CmdToggleSelect, Description: "multi-select", Category: "Mind map"},
			{KeyType: tea.KeyEsc, Command: CmdClearSelection, Description: "clear selection", Category: "Mind map", Hidden: true},
			{KeyType: tea.KeySpace, Command: CmdToggleCollapse, Description: "collapse", Category: "Mind map"},
			{KeyType: tea.KeyRunes, Rune: '/', Command: CmdEnterSearch, Description: "search", Category: "Mind map"},

			// Inspector
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdScrollDown, Description: "scroll", Category: "Inspector", Hidden: true},
			{KeyType: tea.KeyDown, Command: CmdScrollDown, Description: "scroll", Category: "Inspector", Hidden: true},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdScrollUp, Description: "scroll", Category: "Inspector", Hidden: true},
			{KeyType: tea.KeyUp, Command: CmdScrollUp, Description: "scroll", Category: "Inspector", Hidden: true},

			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "help", Category: "General"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "General"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General", Hidden: true},
		},
	}
}

func defaultIdeaBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeIdea,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdSubmit, Description: "start", Category: "Idea"},
			{KeyType: tea.KeyEsc, Command: CmdCancel, Description: "cancel", Category: "Idea"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General"},
		},
	}
}

func defaultClarifyBindings() *ModeBindings {
	b := &ModeBindings{
		Mode: ModeClarify,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyUp, Command: CmdOptionUp, Description: "up", Category: "Clarify"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdOptionUp, Description: "up", Category: "Clarify", Hidden: true},
			{KeyType: tea.KeyDown, Command: CmdOptionDown, Description: "down", Category: "Clarify"},
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdOptionDown, Description: "down", Category: "Clarify", Hidden: true},
			{KeyType: tea.KeyEnter, Command: CmdAnswer, Description: "answer", Category: "Clarify"},
			{KeyType: tea.KeyRunes, Rune: 'b', Command: CmdBack, Description: "back", Category: "Wizard"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "General"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General", Hidden: true},
		},
	}
	for r := '1'; r <= '9'; r++ {
		b.Bindings = append(b.Bindings, KeyBinding{
			KeyType: tea.KeyRunes, Rune: r, Command: CmdOptionPick,
			Description: "pick option", Category: "Clarify", Hidden: r != '1',
		})
	}
	return b
}

func defaultSearchBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeSearch,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdSubmit, Description: "apply", Category: "Search"},
			{KeyType: tea.KeyEsc, Command: CmdCancel, Description: "clear", Category: "Search"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "General", Hidden: true},
		},
	}
}
