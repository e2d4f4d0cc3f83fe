// Package mindmap derives the idea → module → feature → action graph from
// the wizard's step data, and renders and inspects it.
package mindmap

import (
	"github.com/Iron-Ham/appcanvas/internal/plan"
)

// RootID is the ID of the idea node.
const RootID = "idea"

// Kind is the type of a node.
type Kind string

const (
	KindIdea    Kind = "idea"
	KindModule  Kind = "module"
	KindFeature Kind = "feature"
	KindAction  Kind = "action"
)

// Node colours.
const (
	ColorIdea    = "#f97316"
	ColorModule  = "#3b82f6"
	ColorFeature = "#22c55e"
	ColorAction  = "#a855f7"
)

// maxIdeaName is the longest idea shown untruncated on the root node.
const maxIdeaName = 20

// Node is a vertex of the mind map.
type Node struct {
	ID    string
	Name  string
	Kind  Kind
	Color string
}

// Link connects a parent node to a child node.
type Link struct {
	Source string
	Target string
}

// Graph is the mind map. Nodes and links keep the order they were derived
// in: idea, modules, features, actions.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Build derives the graph for idea from data. An empty idea yields an empty
// graph. Features and actions link to their parents by ID whether or not the
// parent exists; Visible drops such dangling links.
func Build(idea string, data plan.AppData) Graph {
	if idea == "" {
		return Graph{}
	}

	g := Graph{
		Nodes: []Node{{ID: RootID, Name: ideaName(idea), Kind: KindIdea, Color: ColorIdea}},
	}
	for _, m := range data.Modules() {
		g.Nodes = append(g.Nodes, Node{ID: m.ID, Name: m.Name, Kind: KindModule, Color: ColorModule})
		g.Links = append(g.Links, Link{Source: RootID, Target: m.ID})
	}
	for _, f := range data.Features() {
		g.Nodes = append(g.Nodes, Node{ID: f.ID, Name: f.Name, Kind: KindFeature, Color: ColorFeature})
		g.Links = append(g.Links, Link{Source: f.ModuleID, Target: f.ID})
	}
	for _, a := range data.Actions() {
		g.Nodes = append(g.Nodes, Node{ID: a.ID, Name: a.Name, Kind: KindAction, Color: ColorAction})
		g.Links = append(g.Links, Link{Source: a.FeatureID, Target: a.ID})
	}
	return g
}

func ideaName(idea string) string {
	r := []rune(idea)
	if len(r) > maxIdeaName {
		return string(r[:17]) + "..."
	}
	return idea
}

// Node returns the first node with id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Children maps each node ID to the targets of its outgoing links in link
// order.
func (g Graph) Children() map[string][]string {
	children := make(map[string][]string)
	for _, l := range g.Links {
		children[l.Source] = append(children[l.Source], l.Target)
	}
	return children
}

// Visible returns the graph with every descendant of a collapsed node
// removed, keeping only links whose endpoints are both still present. The
// collapsed nodes themselves stay visible. Links from parents that do not
// exist are dropped even when nothing is collapsed.
func (g Graph) Visible(collapsed map[string]bool) Graph {
	children := g.Children()
	hidden := make(map[string]bool)
	var queue []string
	for id, ok := range collapsed {
		if ok {
			queue = append(queue, children[id]...)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if hidden[id] {
			continue
		}
		hidden[id] = true
		queue = append(queue, children[id]...)
	}

	out := Graph{}
	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if !hidden[n.ID] {
			out.Nodes = append(out.Nodes, n)
			present[n.ID] = true
		}
	}
	for _, l := range g.Links {
		if present[l.Source] && present[l.Target] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

// HiddenCount returns how many descendants of id are hidden when it is
// collapsed.
func (g Graph) HiddenCount(id string) int {
	children := g.Children()
	seen := map[string]bool{id: true}
	queue := append([]string(nil), children[id]...)
	count := 0
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		count++
		queue = append(queue, children[next]...)
	}
	return count
}

// Order returns the nodes depth-first from the root, followed by any nodes
// the root does not reach, each at most once.
func (g Graph) Order() []Node {
	if len(g.Nodes) == 0 {
		return nil
	}
	children := g.Children()
	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}

	seen := make(map[string]bool, len(g.Nodes))
	out := make([]Node, 0, len(g.Nodes))
	var walk func(id string)
	walk = func(id string) {
		n, ok := byID[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, n)
		for _, c := range children[id] {
			walk(c)
		}
	}
	walk(RootID)
	for _, n := range g.Nodes {
		walk(n.ID)
	}
	return out
}
