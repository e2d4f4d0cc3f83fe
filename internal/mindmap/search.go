package mindmap

import (
	"regexp"
	"strings"
)

// Search returns the nodes whose name or ID matches query, in graph order.
// Queries starting with "r:" are case-insensitive regular expressions;
// anything else is a case-insensitive substring. An empty or invalid query
// matches nothing.
func (g Graph) Search(query string) []Node {
	re := compileQuery(query)
	if re == nil {
		return nil
	}
	var out []Node
	for _, n := range g.Nodes {
		if re.MatchString(n.Name) || re.MatchString(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// Matches returns the IDs from Search as a set.
func (g Graph) Matches(query string) map[string]bool {
	nodes := g.Search(query)
	if len(nodes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}

func compileQuery(query string) *regexp.Regexp {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if pattern, ok := strings.CutPrefix(query, "r:"); ok {
		if pattern == "" {
			return nil
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil
		}
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}
