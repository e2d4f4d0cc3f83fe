package mindmap

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// RenderOptions controls RenderTree.
type RenderOptions struct {
	Collapsed map[string]bool
	Selected  []string
	Matches   map[string]bool
	// Cursor is the node the keyboard cursor is on, if any.
	Cursor string
	// Plain disables colour, for non-terminal output.
	Plain bool
}

var (
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginRight(1)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	selectedStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	matchStyle      = lipgloss.NewStyle().Background(lipgloss.Color("#FBBF24")).Foreground(lipgloss.Color("#111827"))
)

// RenderTree draws the visible part of the graph as a terminal tree rooted
// at the idea node. Nodes the root does not reach are listed under it
// marked as unlinked. Collapsed nodes show how many descendants they hide.
func RenderTree(g Graph, opts RenderOptions) string {
	if len(g.Nodes) == 0 {
		return ""
	}
	visible := g.Visible(opts.Collapsed)
	children := visible.Children()
	selected := make(map[string]bool, len(opts.Selected))
	for _, id := range opts.Selected {
		selected[id] = true
	}

	label := func(n Node, suffix string) string {
		text := n.Name
		if text == "" {
			text = n.ID
		}
		if opts.Collapsed[n.ID] {
			if hidden := g.HiddenCount(n.ID); hidden > 0 {
				text = fmt.Sprintf("%s (+%d)", text, hidden)
			}
		}
		if opts.Plain {
			if n.ID == opts.Cursor {
				return "> " + text + suffix
			}
			return text + suffix
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
		switch {
		case n.ID == opts.Cursor:
			style = style.Inherit(cursorStyle)
		case opts.Matches[n.ID]:
			style = matchStyle
		}
		if selected[n.ID] {
			style = style.Inherit(selectedStyle)
		}
		return style.Render(text) + suffix
	}

	seen := make(map[string]bool, len(visible.Nodes))
	var build func(n Node, suffix string) *tree.Tree
	build = func(n Node, suffix string) *tree.Tree {
		seen[n.ID] = true
		t := tree.Root(label(n, suffix))
		for _, id := range children[n.ID] {
			if seen[id] {
				continue
			}
			child, ok := visible.Node(id)
			if !ok {
				continue
			}
			t.Child(build(child, ""))
		}
		return t
	}

	rootNode, ok := visible.Node(RootID)
	if !ok {
		rootNode = visible.Nodes[0]
	}
	root := build(rootNode, "")
	for _, n := range visible.Order() {
		if !seen[n.ID] {
			root.Child(build(n, mutedSuffix(" (unlinked)", opts.Plain)))
		}
	}

	root.Enumerator(tree.RoundedEnumerator)
	if !opts.Plain {
		root.EnumeratorStyle(enumeratorStyle)
	}
	return root.String()
}

func mutedSuffix(s string, plain bool) string {
	if plain {
		return s
	}
	return mutedStyle.Render(s)
}
