package tui

// Layout constants
const (
	SidebarWidth    = 30 // Fixed sidebar width
	SidebarMinWidth = 22 // Sidebar width on narrow terminals

	headerHeight = 2 // title + rule
	footerHeight = 5 // navigation, activity, toast, help bar
	paneChrome   = 4 // border (2) + padding (2)
	paneTitle    = 2 // title + blank line
)

// Layout holds the computed pane sizes for a terminal size.
type Layout struct {
	Sidebar   int
	Tree      int
	Inspector int
	Height    int
}

// CalculateLayout splits the terminal into sidebar, tree and inspector
// columns. Widths and height are inner content sizes, excluding borders.
func CalculateLayout(termWidth, termHeight int) Layout {
	sidebar := SidebarWidth
	if termWidth < 100 {
		sidebar = SidebarMinWidth
	}
	rest := max(termWidth-sidebar-3*paneChrome, 2)
	tree := rest * 45 / 100
	return Layout{
		Sidebar:   sidebar,
		Tree:      tree,
		Inspector: rest - tree,
		Height:    max(termHeight-headerHeight-footerHeight-2, 3),
	}
}

// resize applies the layout to the scrollable panes.
func (m *Model) resize() {
	l := CalculateLayout(m.width, m.height)
	m.tree.Width = l.Tree
	m.tree.Height = max(l.Height-paneTitle, 1)
	m.details.Width = l.Inspector
	m.details.Height = max(l.Height-paneTitle, 1)
	m.inspector.SetWidth(l.Inspector)
	m.ideaInput.Width = max(m.width-12, 10)
	m.searchInput.Width = max(m.width-6, 10)
}
