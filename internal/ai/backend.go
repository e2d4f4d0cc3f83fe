package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

// BackendName identifies a supported AI backend.
type BackendName string

const (
	BackendGemini BackendName = "gemini"
	BackendClaude BackendName = "claude"
)

// Request is a single structured generation request.
type Request struct {
	Prompt string
	// Schema is the shape the answer must have. Nil asks for free-form JSON.
	Schema *schema.Schema
}

// Backend sends prompts to a language model and returns its raw text answer.
// Implementations classify provider failures into the sentinel errors of the
// errors package so the Client can decide whether to retry.
type Backend interface {
	Name() BackendName
	DisplayName() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrUnknownBackend is returned when the configured backend is unsupported.
var ErrUnknownBackend = fmt.Errorf("unknown AI backend")

// NewFromConfig builds a Backend from configuration. The Gemini backend
// requires an API key; without one errors.ErrMissingAPIKey is returned.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing config")
	}

	switch strings.ToLower(cfg.AI.Backend) {
	case string(BackendGemini), "":
		key := cfg.AI.ResolveAPIKey()
		if key == "" {
			return nil, errors.ErrMissingAPIKey
		}
		return NewGeminiBackend(ctx, key, cfg.AI.Gemini)
	case string(BackendClaude):
		return NewClaudeBackend(cfg.AI.Claude), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.AI.Backend)
	}
}
