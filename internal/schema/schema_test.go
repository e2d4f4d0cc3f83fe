package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func moduleSchema() *Schema {
	return Object(map[string]*Schema{
		"description": String().WithDescription("summary"),
		"modules": Array(Object(map[string]*Schema{
			"id":   String(),
			"name": String(),
		}, "id", "name")),
		"count": {Type: TypeInteger},
	}, "description", "modules")
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPath string
		wantErr  bool
	}{
		{
			name: "valid document",
			raw:  `{"description":"d","modules":[{"id":"a","name":"A"}]}`,
		},
		{
			name: "extra properties allowed",
			raw:  `{"description":"d","modules":[],"extra":true}`,
		},
		{
			name:     "missing required top level",
			raw:      `{"modules":[]}`,
			wantErr:  true,
			wantPath: "description",
		},
		{
			name:     "null counts as missing",
			raw:      `{"description":null,"modules":[]}`,
			wantErr:  true,
			wantPath: "description",
		},
		{
			name:     "nested missing property",
			raw:      `{"description":"d","modules":[{"id":"a"}]}`,
			wantErr:  true,
			wantPath: "modules[0].name",
		},
		{
			name:     "wrong type",
			raw:      `{"description":"d","modules":{}}`,
			wantErr:  true,
			wantPath: "modules",
		},
		{
			name:     "integer rejects fraction",
			raw:      `{"description":"d","modules":[],"count":1.5}`,
			wantErr:  true,
			wantPath: "count",
		},
		{
			name:    "not json",
			raw:     `Sure! Here is your plan`,
			wantErr: true,
		},
		{
			name:    "trailing data",
			raw:     `{"description":"d","modules":[]} {}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := moduleSchema().Validate([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var schemaErr *Error
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Validate() error type = %T, want *Error", err)
			}
			if schemaErr.Path != tt.wantPath {
				t.Errorf("Error.Path = %q, want %q", schemaErr.Path, tt.wantPath)
			}
		})
	}
}

func TestSchema_ValidateNilSchemaOnlyChecksJSON(t *testing.T) {
	var s *Schema
	if err := s.Validate([]byte(`[1,2,3]`)); err != nil {
		t.Errorf("nil schema should accept any JSON, got %v", err)
	}
	if err := s.Validate([]byte(`{`)); err == nil {
		t.Error("nil schema should still reject invalid JSON")
	}
}

func TestSchema_Ordering(t *testing.T) {
	s := Object(map[string]*Schema{
		"zeta":  String(),
		"alpha": String(),
		"beta":  String(),
	}, "zeta", "beta")

	got := strings.Join(s.Ordering(), ",")
	if got != "zeta,beta,alpha" {
		t.Errorf("Ordering() = %q, want %q", got, "zeta,beta,alpha")
	}
}

func TestSchema_DescribeIsStable(t *testing.T) {
	first := moduleSchema().Describe()
	second := moduleSchema().Describe()
	if first != second {
		t.Error("Describe() should be deterministic across equal schemas")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(first), &decoded); err != nil {
		t.Fatalf("Describe() produced invalid JSON: %v", err)
	}
	if decoded["type"] != "object" {
		t.Errorf("type = %v, want object", decoded["type"])
	}
	if !strings.Contains(first, `"description": "summary"`) {
		t.Errorf("Describe() should include property descriptions:\n%s", first)
	}
}
