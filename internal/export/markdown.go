package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Iron-Ham/appcanvas/internal/plan"
)

// markdownData is what the Markdown template sees.
type markdownData struct {
	Idea           string
	Refinement     plan.Refinement
	Summary        string
	Document       Document
	Pages          []plan.Page
	Database       []plan.Entity
	FeatureDetails []plan.FeatureDetail
	Backend        plan.Backend
	Design         plan.DesignGuidelines
	HasDesign      bool
	FeatureName    func(id string) string
}

const markdownTemplate = `# {{.Idea}}
{{with .Refinement.RefinedIdea}}
**Refined idea:** {{.}}
{{end}}{{with .Refinement.TargetAudience}}
**Target audience:** {{.}}
{{end}}{{with .Summary}}
{{.}}
{{end}}{{if .Document.Modules}}
## Modules
{{range .Document.Modules}}
### {{.Name}}

{{.Description}}
{{range .Features}}
- **{{.Name}}**: {{.Description}}
{{- range .Actions}}
  - {{.Name}}: {{.Description}}
{{- end}}
{{- end}}
{{end}}{{end}}{{if .Pages}}
## Pages
{{range .Pages}}
### {{.Name}}{{with .Layout}} ({{.}}){{end}}

{{.Description}}
{{if .Components}}
Components: {{join .Components ", "}}
{{end}}{{end}}{{end}}{{if .Database}}
## Database
{{range .Database}}
### {{.Name}}

| Attribute | Type | Description |
|---|---|---|
{{- range .Attributes}}
| {{.Name}} | {{.Type}} | {{.Description}} |
{{- end}}
{{range .Relationships}}
- Relationship: {{.}}
{{- end}}{{range .Constraints}}
- Constraint: {{.}}
{{- end}}{{range .Logging}}
- Logging: {{.}}
{{- end}}
{{end}}{{end}}{{if .FeatureDetails}}
## Feature Details
{{range .FeatureDetails}}
### {{call $.FeatureName .FeatureID}}

- State management: {{.StateManagement}}
- Form handling: {{.FormHandling}}
- Authorization: {{.Authorization}}
{{end}}{{end}}{{if or .Backend.Functions .Backend.CronJobs}}
## Backend
{{range .Backend.Functions}}
- **{{.Name}}** ({{call $.FeatureName .FeatureID}}): {{.Description}}
{{- end}}
{{range .Backend.CronJobs}}
- Cron **{{.Name}}** ` + "`{{.Schedule}}`" + `: {{.Description}}
{{- end}}
{{end}}{{if .HasDesign}}
## Design System

- Colors: primary {{.Design.Colors.Primary}}, secondary {{.Design.Colors.Secondary}}, accent {{.Design.Colors.Accent}}, neutral {{.Design.Colors.Neutral}}
- Typography: {{.Design.Typography.Heading}} / {{.Design.Typography.Body}}
- Style: {{.Design.Style}}
- Spacing: {{.Design.Spacing}}
- Icons: {{.Design.Icons}}
{{end}}`

var mdTemplate = template.Must(template.New("markdown").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(markdownTemplate))

func renderMarkdown(snap *plan.Snapshot) ([]byte, error) {
	data := snap.AppData
	md := markdownData{
		Idea:           snap.Idea,
		Refinement:     data.Refinement(),
		Summary:        data.Concept().Description,
		Document:       NewDocument(snap.Idea, data),
		Pages:          data.Pages(),
		Database:       data.Database(),
		FeatureDetails: data.FeatureDetails(),
		Backend:        data.Backend(),
		Design:         data.DesignGuidelines(),
		HasDesign:      data.Has(plan.StepDesignSystem),
		FeatureName:    featureNamer(data),
	}

	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, md); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// featureNamer resolves a feature ID to its name, falling back to the ID.
func featureNamer(data plan.AppData) func(string) string {
	names := make(map[string]string)
	for _, f := range data.Features() {
		names[f.ID] = f.Name
	}
	return func(id string) string {
		if name := names[id]; name != "" {
			return name
		}
		return id
	}
}

func renderText(snap *plan.Snapshot) string {
	var b strings.Builder
	doc := NewDocument(snap.Idea, snap.AppData)

	fmt.Fprintf(&b, "Idea: %s\n", doc.Idea)
	if doc.RefinedIdea != nil && *doc.RefinedIdea != "" {
		fmt.Fprintf(&b, "Refined idea: %s\n", *doc.RefinedIdea)
	}
	if audience := snap.AppData.Refinement().TargetAudience; audience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", audience)
	}

	for _, m := range doc.Modules {
		fmt.Fprintf(&b, "\n%s\n", m.Name)
		if m.Description != "" {
			fmt.Fprintf(&b, "  %s\n", m.Description)
		}
		for _, f := range m.Features {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Name, f.Description)
			for _, a := range f.Actions {
				fmt.Fprintf(&b, "      * %s: %s\n", a.Name, a.Description)
			}
		}
	}

	if pages := snap.AppData.Pages(); len(pages) > 0 {
		b.WriteString("\nPages\n")
		for _, p := range pages {
			fmt.Fprintf(&b, "  - %s: %s\n", p.Name, p.Description)
		}
	}
	if entities := snap.AppData.Database(); len(entities) > 0 {
		b.WriteString("\nDatabase\n")
		for _, e := range entities {
			names := make([]string, len(e.Attributes))
			for i, a := range e.Attributes {
				names[i] = a.Name
			}
			fmt.Fprintf(&b, "  - %s (%s)\n", e.Name, strings.Join(names, ", "))
		}
	}
	return b.String()
}
