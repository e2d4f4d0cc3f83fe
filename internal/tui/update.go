package tui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/mindmap"
	"github.com/Iron-Ham/appcanvas/internal/tui/keymap"
	"github.com/Iron-Ham/appcanvas/internal/tui/msg"
	"github.com/Iron-Ham/appcanvas/internal/tui/view"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// Update handles messages and updates the model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.resize()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case msg.AdvancedMsg:
		m.busy = false
		if message.Err != nil {
			m.refresh()
			return m, m.showStepError(message.Err)
		}
		if message.Action == wizard.ActionAskClarification && m.wiz.Clarification() != nil {
			m.mode = keymap.ModeClarify
			m.optionCursor = 0
		}
		m.refresh()
		return m, m.advance()

	case msg.AnsweredMsg:
		m.busy = false
		if m.mode == keymap.ModeClarify {
			m.mode = keymap.ModeNormal
		}
		m.refresh()
		if message.Err != nil {
			return m, m.showStepError(message.Err)
		}
		return m, m.advance()

	case msg.SavedMsg:
		if message.Err != nil {
			m.opts.Logger.Error("save failed", "slot", message.Slot, "error", message.Err.Error())
			return m, m.showError(MsgSaveFailed)
		}
		return m, m.showFeedback(MsgSaved)

	case msg.LoadedMsg:
		if message.Err != nil {
			return m, m.showError(errors.UserMessage(message.Err))
		}
		m.mode = keymap.ModeNormal
		m.ideaInput.Blur()
		m.cursorID = ""
		m.optionCursor = 0
		m.refresh()
		return m, tea.Batch(m.showFeedback(MsgLoaded), m.advance())

	case msg.ExportedMsg:
		if message.Err != nil {
			m.opts.Logger.Error("export failed", "format", string(message.Format), "error", message.Err.Error())
			return m, m.showError(MsgExportFailed)
		}
		return m, m.showFeedback("Exported to " + message.Path)

	case msg.ToastExpiredMsg:
		if m.toast != nil && m.toast.ID == message.ID {
			m.toast = nil
		}
		return m, nil

	case msg.EventMsg:
		m.activity = describeEvent(message.Event)
		return m, msg.WaitForEvent(m.events)
	}

	return m, nil
}

// handleKeypress routes a key to the handler of the current mode.
func (m Model) handleKeypress(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.opts.Keymap.GetBinding(key, m.mode)

	if m.showHelp {
		if ok && cmd == keymap.CmdQuit {
			return m.quit()
		}
		m.showHelp = false
		return m, nil
	}

	switch m.mode {
	case keymap.ModeIdea:
		return m.handleIdeaKey(key, cmd, ok)
	case keymap.ModeSearch:
		return m.handleSearchKey(key, cmd, ok)
	case keymap.ModeClarify:
		if !ok {
			return m, nil
		}
		return m.handleClarifyKey(key, cmd)
	default:
		if !ok {
			return m, nil
		}
		return m.handleNormalKey(cmd)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.close()
	return m, tea.Quit
}

func (m Model) handleIdeaKey(key tea.KeyMsg, cmd keymap.Command, ok bool) (tea.Model, tea.Cmd) {
	if ok {
		switch cmd {
		case keymap.CmdQuit:
			return m.quit()
		case keymap.CmdCancel:
			if m.wiz.Started() {
				m.mode = keymap.ModeNormal
				m.ideaInput.Blur()
				return m, nil
			}
			return m.quit()
		case keymap.CmdSubmit:
			if err := m.wiz.Start(m.ideaInput.Value()); err != nil {
				return m, m.showError(errors.UserMessage(err))
			}
			m.mode = keymap.ModeNormal
			m.ideaInput.Blur()
			m.ideaInput.Reset()
			m.cursorID = mindmap.RootID
			m.searchQuery = ""
			m.refresh()
			return m, m.advance()
		}
	}

	var inputCmd tea.Cmd
	m.ideaInput, inputCmd = m.ideaInput.Update(key)
	return m, inputCmd
}

func (m Model) handleSearchKey(key tea.KeyMsg, cmd keymap.Command, ok bool) (tea.Model, tea.Cmd) {
	if ok {
		switch cmd {
		case keymap.CmdQuit:
			return m.quit()
		case keymap.CmdCancel:
			m.searchQuery = ""
			m.searchInput.Reset()
			m.searchInput.Blur()
			m.mode = keymap.ModeNormal
			m.refresh()
			return m, nil
		case keymap.CmdSubmit:
			m.searchQuery = m.searchInput.Value()
			m.searchInput.Blur()
			m.mode = keymap.ModeNormal
			if hits := m.graph().Search(m.searchQuery); len(hits) > 0 {
				m.cursorID = hits[0].ID
			}
			m.refresh()
			return m, nil
		}
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(key)
	m.searchQuery = m.searchInput.Value()
	m.refresh()
	return m, inputCmd
}

func (m Model) handleClarifyKey(key tea.KeyMsg, cmd keymap.Command) (tea.Model, tea.Cmd) {
	pending := m.wiz.Clarification()
	if pending == nil {
		m.mode = keymap.ModeNormal
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		return m.quit()
	case keymap.CmdOptionUp:
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case keymap.CmdOptionDown:
		if m.optionCursor < len(pending.Options)-1 {
			m.optionCursor++
		}
	case keymap.CmdOptionPick:
		i := int(key.Runes[0] - '1')
		if i >= len(pending.Options) {
			return m, nil
		}
		m.optionCursor = i
		return m.answer(pending.Options[i])
	case keymap.CmdAnswer:
		if m.optionCursor < len(pending.Options) {
			return m.answer(pending.Options[m.optionCursor])
		}
	case keymap.CmdBack:
		if err := m.wiz.Back(); err != nil {
			return m, m.showError(errors.UserMessage(err))
		}
		m.mode = keymap.ModeNormal
		m.refresh()
		return m, m.advance()
	}
	m.refresh()
	return m, nil
}

func (m Model) answer(option string) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.refresh()
	return m, msg.Answer(m.ctx, m.wiz, option)
}

func (m Model) handleNormalKey(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m.quit()

	case keymap.CmdToggleHelp:
		m.showHelp = true
		return m, nil

	case keymap.CmdNewIdea:
		if m.busy {
			return m, nil
		}
		m.mode = keymap.ModeIdea
		m.ideaInput.Reset()
		m.ideaInput.Focus()
		return m, textinput.Blink

	case keymap.CmdNext:
		if err := m.wiz.Next(); err != nil {
			return m, m.showError(errors.UserMessage(err))
		}
		m.refresh()
		return m, m.advance()

	case keymap.CmdBack:
		if err := m.wiz.Back(); err != nil {
			return m, m.showError(errors.UserMessage(err))
		}
		m.refresh()
		return m, m.advance()

	case keymap.CmdRegenerate:
		if !m.wiz.Retry() {
			m.wiz.Regenerate()
		}
		m.refresh()
		return m, m.advance()

	case keymap.CmdSave:
		if !m.wiz.Started() {
			return m, nil
		}
		return m, msg.Save(m.wiz, m.opts.Store, m.opts.Slot)

	case keymap.CmdLoad:
		if m.busy {
			return m, nil
		}
		return m, msg.Load(m.wiz, m.opts.Store, m.opts.Slot)

	case keymap.CmdExport:
		if !m.wiz.Started() {
			return m, nil
		}
		return m, msg.Export(m.wiz, m.opts.ExportFormat, m.opts.ExportDir)

	case keymap.CmdEnterSearch:
		m.mode = keymap.ModeSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
		return m, textinput.Blink

	case keymap.CmdCursorNext:
		m.moveCursor(1)
	case keymap.CmdCursorPrev:
		m.moveCursor(-1)
	case keymap.CmdSelect:
		if m.cursorID != "" {
			m.wiz.SelectNode(m.cursorID, false)
		}
	case keymap.CmdToggleSelect:
		if m.cursorID != "" {
			m.wiz.SelectNode(m.cursorID, true)
		}
	case keymap.CmdClearSelection:
		m.wiz.SelectNode("", false)
		m.searchQuery = ""
	case keymap.CmdToggleCollapse:
		if m.cursorID != "" && len(m.graph().Children()[m.cursorID]) > 0 {
			m.wiz.ToggleCollapse(m.cursorID)
		}

	case keymap.CmdScrollDown:
		m.details.ScrollDown(1)
		return m, nil
	case keymap.CmdScrollUp:
		m.details.ScrollUp(1)
		return m, nil
	}

	m.refresh()
	return m, nil
}

// advance dispatches the wizard's next model call, if it needs one.
func (m *Model) advance() tea.Cmd {
	if m.busy {
		return nil
	}
	switch m.wiz.Decide() {
	case wizard.ActionAskClarification, wizard.ActionGenerate:
		m.busy = true
		return msg.Advance(m.ctx, m.wiz)
	}
	return nil
}

// moveCursor moves the node cursor by delta through the visible nodes in
// tree order, wrapping at either end.
func (m *Model) moveCursor(delta int) {
	st := m.wiz.State()
	order := mindmap.Build(st.Idea, st.Data).Visible(st.Collapsed).Order()
	if len(order) == 0 {
		m.cursorID = ""
		return
	}
	i := slices.IndexFunc(order, func(n mindmap.Node) bool { return n.ID == m.cursorID })
	if i < 0 {
		m.cursorID = order[0].ID
		return
	}
	i = (i + delta + len(order)) % len(order)
	m.cursorID = order[i].ID
}

func (m Model) graph() mindmap.Graph {
	st := m.wiz.State()
	return mindmap.Build(st.Idea, st.Data)
}

// showStepError shows a failed model call. A rejected duplicate request is
// not worth a toast.
func (m *Model) showStepError(err error) tea.Cmd {
	if errors.Is(err, errors.ErrBusy) {
		return nil
	}
	return m.showError(errors.UserMessage(err))
}

func (m *Model) showFeedback(text string) tea.Cmd {
	return m.setToast(view.ToastFeedback, text, m.opts.FeedbackDuration)
}

func (m *Model) showError(text string) tea.Cmd {
	return m.setToast(view.ToastError, text, m.opts.ErrorDuration)
}

func (m *Model) setToast(kind view.ToastKind, text string, d time.Duration) tea.Cmd {
	m.toastSeq++
	m.toast = &view.Toast{ID: m.toastSeq, Kind: kind, Text: text}
	return msg.ExpireToast(m.toastSeq, d)
}

// describeEvent turns a wizard event into the status line text.
func describeEvent(e event.Event) string {
	switch e := e.(type) {
	case event.WizardStartedEvent:
		return "Started a new plan"
	case event.ClarificationRequestedEvent:
		return fmt.Sprintf("%s: waiting for your answer", e.StepName)
	case event.StepCompletedEvent:
		if e.Final {
			return "All steps complete"
		}
		return fmt.Sprintf("%s generated", e.StepName)
	case event.StepFailedEvent:
		return fmt.Sprintf("%s failed, press r to retry", e.StepName)
	case event.StepRegeneratedEvent:
		return fmt.Sprintf("Cleared %d step(s)", len(e.Dropped))
	case event.StepNavigatedEvent:
		return fmt.Sprintf("Moved to step %d", e.To+1)
	case event.SessionSavedEvent:
		return "Saved to " + e.Path
	case event.SessionLoadedEvent:
		return "Loaded " + e.Slot
	default:
		return e.EventType()
	}
}
