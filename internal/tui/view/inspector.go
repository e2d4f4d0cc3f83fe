package view

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Iron-Ham/appcanvas/internal/mindmap"
)

// Inspector renders node details as terminal markdown.
type Inspector struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// NewInspector creates an Inspector wrapping text at width. style is a
// glamour standard style name ("dark", "light", "notty"); empty picks one
// from the terminal background.
func NewInspector(width int, style string) *Inspector {
	in := &Inspector{style: style}
	in.SetWidth(width)
	return in
}

// SetWidth rebuilds the renderer for a new wrap width.
func (in *Inspector) SetWidth(width int) {
	if width == in.width && in.renderer != nil {
		return
	}
	in.width = width

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if in.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(in.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		in.renderer = nil
		return
	}
	in.renderer = r
}

// Render renders d. When glamour fails the raw markdown is returned.
func (in *Inspector) Render(d mindmap.Detail) string {
	md := d.Markdown()
	if in.renderer == nil {
		return md
	}
	out, err := in.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
