// Package schema describes the JSON shape a model response must have.
//
// A Schema is provider neutral: the Gemini backend converts it to the SDK's
// native response schema, while backends without structured output embed
// Describe() in the prompt. Validate rejects answers that do not match before
// they reach the wizard's data.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Type is a JSON schema primitive type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is a recursive response schema definition.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Object returns an object schema. Every property named in required must also
// appear in props; the order of required is used as the property ordering.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// Array returns an array schema with the given element schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String returns a string schema.
func String() *Schema {
	return &Schema{Type: TypeString}
}

// WithDescription sets the description and returns the schema for chaining.
func (s *Schema) WithDescription(desc string) *Schema {
	s.Description = desc
	return s
}

// Ordering returns property names in declaration order: required properties
// first, then any remaining ones sorted by name.
func (s *Schema) Ordering() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(s.Properties))
	out := make([]string, 0, len(s.Properties))
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0)
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// Describe renders the schema as indented JSON for prompts.
func (s *Schema) Describe() string {
	if s == nil {
		return "null"
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Sprintf("<invalid schema: %v>", err)
	}
	return string(data)
}

// Error describes where a document diverges from its schema.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Validate decodes raw and checks it against the schema. Extra properties are
// allowed; missing required properties and type mismatches are not.
func (s *Schema) Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &Error{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return &Error{Reason: "invalid JSON: trailing data after document"}
	}
	if s == nil {
		return nil
	}
	return s.check("", doc)
}

func (s *Schema) check(path string, v any) error {
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		for _, name := range s.Required {
			if val, present := obj[name]; !present || val == nil {
				return &Error{Path: join(path, name), Reason: "missing required property"}
			}
		}
		for _, name := range s.Ordering() {
			val, present := obj[name]
			if !present || val == nil {
				continue
			}
			if err := s.Properties[name].check(join(path, name), val); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		if s.Items == nil {
			return nil
		}
		for i, el := range arr {
			if err := s.Items.check(fmt.Sprintf("%s[%d]", path, i), el); err != nil {
				return err
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return mismatch(path, s.Type, v)
		}
	case TypeNumber:
		if _, ok := v.(json.Number); !ok {
			return mismatch(path, s.Type, v)
		}
	case TypeInteger:
		n, ok := v.(json.Number)
		if !ok {
			return mismatch(path, s.Type, v)
		}
		if _, err := n.Int64(); err != nil {
			return mismatch(path, s.Type, v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, s.Type, v)
		}
	}
	return nil
}

func mismatch(path string, want Type, got any) *Error {
	return &Error{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, kindOf(got))}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

