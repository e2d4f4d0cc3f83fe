package mindmap

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/steps"
)

// Inspector placeholder messages.
const (
	MsgNoSummary      = "No summary available yet."
	MsgNodeUnknown    = "Details for this node are not available yet."
	MsgNoDatabase     = "Database schema will appear here once generated."
	MsgNothingToShow  = "Select a node on the mind map or advance to a step with a detailed view."
	MsgBulkSelection  = "Bulk actions are not yet available. Select a single node to see its details."
	unknownParentName = "Unknown"
)

// Field is a labelled value in the inspector.
type Field struct {
	Label string
	Value string
	Code  bool // render the value as inline code
}

// Detail is what the inspector shows for a selection or step.
type Detail struct {
	Title    string
	Color    string
	Fields   []Field
	Entities []plan.Entity
	JSON     string // pretty-printed step payload
	Note     string // placeholder or hint text
}

// Inspect describes the selected nodes, or the active step's content when
// nothing is selected.
func Inspect(selected []string, data plan.AppData, active plan.StepKey) Detail {
	switch len(selected) {
	case 0:
		return inspectStep(data, active)
	case 1:
		return inspectNode(selected[0], data)
	default:
		return Detail{
			Title:  "Multiple Items Selected",
			Fields: []Field{{Label: "Count", Value: fmt.Sprintf("%d items", len(selected))}},
			Note:   MsgBulkSelection,
		}
	}
}

func inspectNode(id string, data plan.AppData) Detail {
	if id == RootID {
		summary := data.Summary()
		if summary == "" {
			summary = MsgNoSummary
		}
		return Detail{
			Title:  "Core Idea",
			Color:  ColorIdea,
			Fields: []Field{{Label: "Summary", Value: summary}},
		}
	}

	if m, ok := data.ModuleByID(id); ok {
		return Detail{
			Title: m.Name,
			Color: ColorModule,
			Fields: []Field{
				{Label: "Type", Value: "Module"},
				{Label: "ID", Value: m.ID, Code: true},
				{Label: "Description", Value: m.Description},
			},
		}
	}

	if f, ok := data.FeatureByID(id); ok {
		parent := unknownParentName
		if m, ok := data.ModuleByID(f.ModuleID); ok && m.Name != "" {
			parent = m.Name
		}
		return Detail{
			Title: f.Name,
			Color: ColorFeature,
			Fields: []Field{
				{Label: "Type", Value: "Feature"},
				{Label: "ID", Value: f.ID, Code: true},
				{Label: "Module", Value: parent},
				{Label: "Description", Value: f.Description},
			},
		}
	}

	if a, ok := data.ActionByID(id); ok {
		parent := unknownParentName
		if f, ok := data.FeatureByID(a.FeatureID); ok && f.Name != "" {
			parent = f.Name
		}
		return Detail{
			Title: a.Name,
			Color: ColorAction,
			Fields: []Field{
				{Label: "Type", Value: "Action"},
				{Label: "ID", Value: a.ID, Code: true},
				{Label: "Feature", Value: parent},
				{Label: "Description", Value: a.Description},
			},
		}
	}

	return Detail{Note: MsgNodeUnknown}
}

func inspectStep(data plan.AppData, active plan.StepKey) Detail {
	switch {
	case active == plan.StepRefineIdea && data.Has(plan.StepRefineIdea):
		r := data.Refinement()
		return Detail{
			Title: "Refined Idea",
			Fields: []Field{
				{Label: "Refined Core Concept", Value: r.RefinedIdea},
				{Label: "Identified Target Audience", Value: r.TargetAudience},
			},
		}

	case active == plan.StepDatabase && data.Has(plan.StepDatabase):
		entities := data.Database()
		if len(entities) == 0 {
			return Detail{Note: MsgNoDatabase}
		}
		return Detail{Title: "Database Schema", Entities: entities}
	}

	step, err := steps.Get(active)
	if err == nil && data.Has(active) {
		return Detail{Title: step.Name + " Details", JSON: data.Pretty(active)}
	}
	return Detail{Note: MsgNothingToShow}
}

// Markdown renders the detail as Markdown.
func (d Detail) Markdown() string {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "## %s\n\n", d.Title)
	}
	for _, f := range d.Fields {
		value := f.Value
		if f.Code {
			value = "`" + value + "`"
		}
		fmt.Fprintf(&b, "**%s**  \n%s\n\n", strings.ToUpper(f.Label), value)
	}
	for _, e := range d.Entities {
		fmt.Fprintf(&b, "### %s\n\n", e.Name)
		if len(e.Attributes) > 0 {
			b.WriteString("**ATTRIBUTES**\n\n")
			for _, a := range e.Attributes {
				fmt.Fprintf(&b, "- `%s` (%s)", a.Name, a.Type)
				if a.Description != "" {
					fmt.Fprintf(&b, ": %s", a.Description)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		writeList(&b, "RELATIONSHIPS", e.Relationships)
		writeList(&b, "CONSTRAINTS", e.Constraints)
	}
	if d.JSON != "" {
		fmt.Fprintf(&b, "```json\n%s\n```\n\n", d.JSON)
	}
	if d.Note != "" {
		fmt.Fprintf(&b, "_%s_\n", d.Note)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
