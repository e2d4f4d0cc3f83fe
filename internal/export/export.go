// Package export writes a wizard session to a file as JSON, Markdown, plain
// text or YAML.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/plan"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatYAML     Format = "yaml"
)

// baseName is the export file name without extension.
const baseName = "app-canvas-export"

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatMarkdown, FormatText, FormatYAML}
}

// ParseFormat validates a format name. Matching is case-insensitive and a
// leading dot is ignored, so ".MD" is accepted.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if f == "markdown" {
		f = FormatMarkdown
	}
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats(), f) {
		return "", errors.NewValidationError("unsupported export format").
			WithField("format").
			WithValue(s).
			WithCause(errors.ErrInvalidInput)
	}
	return f, nil
}

// FileName returns the file name an export in f is written to.
func (f Format) FileName() string {
	return baseName + "." + string(f)
}

// Document is the exported hierarchy: modules with their features, features
// with their actions.
type Document struct {
	Idea        string   `json:"idea" yaml:"idea"`
	RefinedIdea *string  `json:"refinedIdea,omitempty" yaml:"refinedIdea,omitempty"`
	Modules     []Module `json:"modules" yaml:"modules"`
}

// Module is a module with its features.
type Module struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Features    []Feature      `json:"features" yaml:"features"`
	Extra       map[string]any `json:"-" yaml:",inline"`
}

// Feature is a feature with its actions.
type Feature struct {
	ID          string         `json:"id" yaml:"id"`
	ModuleID    string         `json:"moduleId" yaml:"moduleId"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Actions     []Action       `json:"actions" yaml:"actions"`
	Extra       map[string]any `json:"-" yaml:",inline"`
}

// Action is a user action.
type Action struct {
	ID          string         `json:"id" yaml:"id"`
	FeatureID   string         `json:"featureId" yaml:"featureId"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Extra       map[string]any `json:"-" yaml:",inline"`
}

// MarshalJSON writes the known fields followed by any extra ones.
func (m Module) MarshalJSON() ([]byte, error) {
	type module Module
	return withExtra(module(m), m.Extra)
}

// MarshalJSON writes the known fields followed by any extra ones.
func (f Feature) MarshalJSON() ([]byte, error) {
	type feature Feature
	return withExtra(feature(f), f.Extra)
}

// MarshalJSON writes the known fields followed by any extra ones.
func (a Action) MarshalJSON() ([]byte, error) {
	type action Action
	return withExtra(action(a), a.Extra)
}

// NewDocument builds the export hierarchy. Features whose module does not
// exist and actions whose feature does not exist are left out. Fields the
// model returned beyond the known ones are carried into Extra.
func NewDocument(idea string, data plan.AppData) Document {
	doc := Document{Idea: idea, Modules: []Module{}}
	if data.Has(plan.StepRefineIdea) {
		refined := data.Refinement().RefinedIdea
		doc.RefinedIdea = &refined
	}

	modules := data.Modules()
	features := data.Features()
	actions := data.Actions()
	moduleExtra := extraFields(data.Raw(plan.StepModules), "modules", len(modules), "id", "name", "description", "features")
	featureExtra := extraFields(data.Raw(plan.StepFeatures), "features", len(features), "id", "moduleId", "name", "description", "actions")
	actionExtra := extraFields(data.Raw(plan.StepActions), "actions", len(actions), "id", "featureId", "name", "description")

	for i, m := range modules {
		mod := Module{ID: m.ID, Name: m.Name, Description: m.Description, Features: []Feature{}, Extra: moduleExtra[i]}
		for j, f := range features {
			if f.ModuleID != m.ID {
				continue
			}
			feat := Feature{ID: f.ID, ModuleID: f.ModuleID, Name: f.Name, Description: f.Description, Actions: []Action{}, Extra: featureExtra[j]}
			for k, a := range actions {
				if a.FeatureID == f.ID {
					feat.Actions = append(feat.Actions, Action{
						ID:          a.ID,
						FeatureID:   a.FeatureID,
						Name:        a.Name,
						Description: a.Description,
						Extra:       actionExtra[k],
					})
				}
			}
			mod.Features = append(mod.Features, feat)
		}
		doc.Modules = append(doc.Modules, mod)
	}
	return doc
}

// extraFields decodes the objects in raw[list] and returns, per object, the
// fields not named in known. The result always has n entries; objects
// without extra fields map to nil.
func extraFields(raw json.RawMessage, list string, n int, known ...string) []map[string]any {
	out := make([]map[string]any, n)
	var payload map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		return out
	}
	var items []map[string]any
	if json.Unmarshal(payload[list], &items) != nil {
		return out
	}
	for i, item := range items {
		if i >= n {
			break
		}
		for _, k := range known {
			delete(item, k)
		}
		if len(item) > 0 {
			out[i] = item
		}
	}
	return out
}

func withExtra(v any, extra map[string]any) ([]byte, error) {
	known, err := encodeJSON(v)
	if err != nil || len(extra) == 0 {
		return known, err
	}
	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		key, err := encodeJSON(k)
		if err != nil {
			return nil, err
		}
		val, err := encodeJSON(extra[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON is json.Marshal without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Render encodes the session in format f.
func Render(f Format, snap *plan.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.NewValidationError("nothing to export").WithCause(errors.ErrInvalidInput)
	}
	switch f {
	case FormatJSON:
		return renderJSON(NewDocument(snap.Idea, snap.AppData))
	case FormatYAML:
		return renderYAML(NewDocument(snap.Idea, snap.AppData))
	case FormatMarkdown:
		return renderMarkdown(snap)
	case FormatText:
		return []byte(renderText(snap)), nil
	default:
		_, err := ParseFormat(string(f))
		return nil, err
	}
}

func renderJSON(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

func renderYAML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the session in format f and writes it to dir on the OS
// filesystem, returning the file path.
func Write(f Format, snap *plan.Snapshot, dir string) (string, error) {
	return WriteFS(afero.NewOsFs(), f, snap, dir)
}

// WriteFS is Write on an arbitrary filesystem. An empty dir means the
// current directory.
func WriteFS(fs afero.Fs, f Format, snap *plan.Snapshot, dir string) (string, error) {
	data, err := Render(f, snap)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, f.FileName())
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
