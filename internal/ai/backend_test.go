package ai

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("gemini without key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("API_KEY", "")
		cfg := config.Default()
		_, err := NewFromConfig(context.Background(), cfg)
		if !errors.Is(err, errors.ErrMissingAPIKey) {
			t.Fatalf("NewFromConfig() error = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("gemini with key", func(t *testing.T) {
		cfg := config.Default()
		cfg.AI.APIKey = "test-key"
		backend, err := NewFromConfig(context.Background(), cfg)
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		if backend.Name() != BackendGemini {
			t.Errorf("backend.Name() = %q, want %q", backend.Name(), BackendGemini)
		}
	})

	t.Run("claude backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.AI.Backend = "Claude"
		backend, err := NewFromConfig(context.Background(), cfg)
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		if backend.Name() != BackendClaude {
			t.Errorf("backend.Name() = %q, want %q", backend.Name(), BackendClaude)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := NewFromConfig(context.Background(), nil); err == nil {
			t.Fatal("NewFromConfig(nil) should return error")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.AI.Backend = "unknown-backend"
		_, err := NewFromConfig(context.Background(), cfg)
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("error should be ErrUnknownBackend, got: %v", err)
		}
	})
}

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = cfg
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiBackend_Generate(t *testing.T) {
	models := &fakeModels{resp: textResponse("  {\"ok\":true}\n")}
	backend := newGeminiBackend(models, config.GeminiBackendConfig{Temperature: 0.7})

	got, err := backend.Generate(context.Background(), Request{Prompt: "p", Schema: ideaSchema})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("Generate() = %q", got)
	}
	if models.model != DefaultGeminiModel {
		t.Errorf("model = %q, want %q", models.model, DefaultGeminiModel)
	}
	if models.config.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q", models.config.ResponseMIMEType)
	}
	if models.config.Temperature == nil || *models.config.Temperature != float32(0.7) {
		t.Errorf("Temperature = %v", models.config.Temperature)
	}
	rs := models.config.ResponseSchema
	if rs == nil || rs.Type != genai.TypeObject {
		t.Fatalf("ResponseSchema = %+v", rs)
	}
	if !slices.Equal(rs.PropertyOrdering, []string{"refinedIdea", "targetAudience"}) {
		t.Errorf("PropertyOrdering = %v", rs.PropertyOrdering)
	}

	if _, err := backend.Generate(context.Background(), Request{Prompt: "p"}); err != nil {
		t.Fatal(err)
	}
	if models.config.ResponseMIMEType != "" || models.config.ResponseSchema != nil {
		t.Error("requests without a schema should not force JSON output")
	}
}

func TestToGenaiSchema(t *testing.T) {
	s := schema.Object(map[string]*schema.Schema{
		"items": schema.Array(schema.String()).WithDescription("things"),
	}, "items")

	got := toGenaiSchema(s)
	items := got.Properties["items"]
	if items == nil || items.Type != genai.TypeArray || items.Description != "things" {
		t.Fatalf("items = %+v", items)
	}
	if items.Items == nil || items.Items.Type != genai.TypeString {
		t.Errorf("items.Items = %+v", items.Items)
	}
	if !slices.Equal(got.Required, []string{"items"}) {
		t.Errorf("Required = %v", got.Required)
	}
	if toGenaiSchema(nil) != nil {
		t.Error("nil schema should convert to nil")
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      error
		retryable bool
	}{
		{"unauthorized", genai.APIError{Code: 401, Message: "unauthenticated"}, errors.ErrInvalidAPIKey, false},
		{"bad key message", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"}, errors.ErrInvalidAPIKey, false},
		{"quota", genai.APIError{Code: 429, Message: "You exceeded your current quota", Status: "RESOURCE_EXHAUSTED"}, errors.ErrQuotaExceeded, false},
		{"rate limited", genai.APIError{Code: 429, Message: "Too many requests"}, errors.ErrTransient, true},
		{"server error", genai.APIError{Code: 503, Message: "The model is overloaded."}, errors.ErrTransient, true},
		{"pointer form", &genai.APIError{Code: 500, Message: "internal"}, errors.ErrTransient, true},
		{"transport", fmt.Errorf("dial tcp: connection refused"), errors.ErrTransient, true},
		{"deadline", context.DeadlineExceeded, errors.ErrTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyGeminiError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyGeminiError() = %v, want %v", got, tt.want)
			}
			if errors.IsRetryable(got) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", errors.IsRetryable(got), tt.retryable)
			}
		})
	}

	t.Run("bad request is neither retryable nor credential", func(t *testing.T) {
		got := classifyGeminiError(genai.APIError{Code: 400, Message: "invalid schema"})
		if errors.IsRetryable(got) || errors.Is(got, errors.ErrInvalidAPIKey) {
			t.Errorf("unexpected classification: %v", got)
		}
		var modelErr *errors.ModelError
		if !errors.As(got, &modelErr) || modelErr.StatusCode != 400 {
			t.Errorf("expected ModelError with status 400, got %v", got)
		}
	})
}

func TestClaudeBackend_Generate(t *testing.T) {
	var gotName, gotStdin string
	var gotArgs []string
	backend := NewClaudeBackend(config.ClaudeBackendConfig{Model: "sonnet"}).
		WithRunner(func(_ context.Context, stdin string, name string, args ...string) ([]byte, error) {
			gotName, gotStdin, gotArgs = name, stdin, args
			return []byte("Here you go:\n```json\n{\"refinedIdea\":\"r\",\"targetAudience\":\"t\"}\n```\n"), nil
		})

	text, err := backend.Generate(context.Background(), Request{Prompt: "Refine this.", Schema: ideaSchema})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotName != "claude" {
		t.Errorf("command = %q, want claude", gotName)
	}
	if !slices.Contains(gotArgs, "--print") || !slices.Contains(gotArgs, "sonnet") {
		t.Errorf("args = %v", gotArgs)
	}
	if !strings.HasPrefix(gotStdin, "Refine this.") || !strings.Contains(gotStdin, `"refinedIdea"`) {
		t.Errorf("stdin should carry the prompt and schema:\n%s", gotStdin)
	}

	raw, err := ParseResponse(text, ideaSchema)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if string(raw) != `{"refinedIdea":"r","targetAudience":"t"}` {
		t.Errorf("ParseResponse() = %s", raw)
	}
}

func TestClassifyClaudeError(t *testing.T) {
	exitErr := fmt.Errorf("exit status 1")
	tests := []struct {
		name   string
		err    error
		output string
		want   error
	}{
		{"not installed", &exec.Error{Name: "claude", Err: exec.ErrNotFound}, "", exec.ErrNotFound},
		{"bad key", exitErr, "Invalid API key · Please run /login", errors.ErrInvalidAPIKey},
		{"usage limit", exitErr, "Claude AI usage limit reached", errors.ErrQuotaExceeded},
		{"overloaded", exitErr, "API Error: 529 Overloaded", errors.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyClaudeError(context.Background(), tt.err, []byte(tt.output))
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyClaudeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Sure! {\"a\":{\"b\":2}} Hope that helps.", `{"a":{"b":2}}`},
		{"array", `[1,2]`, `[1,2]`},
		{"nothing", "no json here", "no json here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	raw, err := ParseResponse("{\n  \"refinedIdea\": \"r\",\n  \"targetAudience\": \"t\"\n}", ideaSchema)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if string(raw) != `{"refinedIdea":"r","targetAudience":"t"}` {
		t.Errorf("ParseResponse() should compact, got %s", raw)
	}

	for _, bad := range []string{"", "   ", "{", `{"refinedIdea":1,"targetAudience":"t"}`} {
		if _, err := ParseResponse(bad, ideaSchema); !errors.Is(err, errors.ErrMalformedResponse) {
			t.Errorf("ParseResponse(%q) error = %v, want malformed", bad, err)
		}
	}
}
