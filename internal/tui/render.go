package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/appcanvas/internal/mindmap"
	"github.com/Iron-Ham/appcanvas/internal/tui/keymap"
	"github.com/Iron-Ham/appcanvas/internal/tui/view"
)

// refresh re-renders the tree and inspector panes from the wizard state.
func (m *Model) refresh() {
	st := m.wiz.State()
	g := mindmap.Build(st.Idea, st.Data)

	if m.cursorID != "" {
		if _, ok := g.Visible(st.Collapsed).Node(m.cursorID); !ok {
			m.cursorID = ""
		}
	}
	if m.cursorID == "" && len(g.Nodes) > 0 {
		m.cursorID = mindmap.RootID
	}

	m.tree.SetContent(mindmap.RenderTree(g, mindmap.RenderOptions{
		Collapsed: st.Collapsed,
		Selected:  st.Selected,
		Matches:   g.Matches(m.searchQuery),
		Cursor:    m.cursorID,
	}))

	detail := mindmap.Inspect(st.Selected, st.Data, st.ActiveStep)
	m.details.SetContent(m.inspector.Render(detail))
	m.details.GotoTop()
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	s := m.opts.Styles
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case m.showHelp:
		b.WriteString(s.Pane.Render(view.RenderHelp(s, m.opts.Keymap, m.helpMode())))
	case m.mode == keymap.ModeIdea:
		b.WriteString(m.renderWelcome())
	default:
		b.WriteString(m.renderBody())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) helpMode() keymap.Mode {
	if m.mode == keymap.ModeIdea {
		return keymap.ModeIdea
	}
	return keymap.ModeNormal
}

func (m Model) renderHeader() string {
	s := m.opts.Styles
	title := s.Title.Render("App Canvas AI")
	if idea := m.wiz.State().Idea; idea != "" && m.mode != keymap.ModeIdea {
		room := max(m.width-lipgloss.Width(title)-6, 10)
		title += "  " + s.Subtitle.Render(truncateText(idea, room))
	}
	if m.busy {
		title += "  " + m.spinner.View() + s.Muted.Render(" generating...")
	}
	return s.Header.Width(max(m.width, 1)).Render(title)
}

func (m Model) renderWelcome() string {
	s := m.opts.Styles
	lines := []string{
		s.Title.Render("What do you want to build?"),
		s.Muted.Render("Describe your app in a sentence. The plan is generated step by step."),
		"",
		s.Input.Render(m.ideaInput.View()),
	}
	return lipgloss.Place(max(m.width, 1), max(m.height-headerHeight-footerHeight, len(lines)),
		lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func (m Model) renderBody() string {
	s := m.opts.Styles
	l := CalculateLayout(m.width, m.height)

	sidebar := s.Sidebar.Width(l.Sidebar).Height(l.Height).
		Render(view.RenderTimeline(s, m.wiz.Timeline(), l.Sidebar))

	treePane := s.PaneFocused.Width(l.Tree).Height(l.Height).
		Render(s.PaneTitle.Render("Mind map") + "\n\n" + m.tree.View())

	var right string
	if m.mode == keymap.ModeClarify {
		right = s.Pane.Width(l.Inspector).Height(l.Height).Render(
			s.PaneTitle.Render("Clarification") + "\n\n" +
				view.RenderClarification(s, m.wiz.Clarification(), m.optionCursor, l.Inspector))
	} else {
		right = s.Pane.Width(l.Inspector).Height(l.Height).
			Render(s.PaneTitle.Render("Inspector") + "\n\n" + m.details.View())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, treePane, right)
}

func (m Model) renderFooter() string {
	s := m.opts.Styles
	var lines []string

	if m.mode != keymap.ModeIdea {
		nav := view.RenderNavigation(s, m.wiz.Navigation())
		if m.activity != "" {
			nav += "  " + s.Muted.Render(m.activity)
		}
		lines = append(lines, nav)
	}
	if t := view.RenderToast(s, m.toast); t != "" {
		lines = append(lines, t)
	}
	if m.mode == keymap.ModeSearch {
		lines = append(lines, s.SearchPrompt.Render(m.searchInput.View()))
	} else if m.searchQuery != "" {
		n := len(m.graph().Search(m.searchQuery))
		lines = append(lines, s.Muted.Render("search: ")+s.SearchMatch.Render(m.searchQuery)+
			s.Muted.Render(" ("+pluralize(n, "match", "matches")+", esc clears)"))
	}
	lines = append(lines, view.RenderHelpBar(s, m.opts.Keymap, m.mode))
	return strings.Join(lines, "\n")
}

// truncateText shortens str to width columns, keeping escape sequences
// intact.
func truncateText(str string, width int) string {
	if lipgloss.Width(str) <= width {
		return str
	}
	return ansi.Truncate(str, width, "...")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
