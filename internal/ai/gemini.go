package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Iron-Ham/appcanvas/internal/config"
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

// DefaultGeminiModel is used when ai.gemini.model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the subset of *genai.Models used by the backend.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend implements Backend for the Google Gemini API.
type GeminiBackend struct {
	models      contentGenerator
	model       string
	temperature float32
}

// NewGeminiBackend creates a Gemini backend authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey string, cfg config.GeminiBackendConfig) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiBackend(client.Models, cfg), nil
}

func newGeminiBackend(models contentGenerator, cfg config.GeminiBackendConfig) *GeminiBackend {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiBackend{
		models:      models,
		model:       model,
		temperature: float32(cfg.Temperature),
	}
}

func (g *GeminiBackend) Name() BackendName { return BackendGemini }

func (g *GeminiBackend) DisplayName() string { return "Gemini" }

// Model returns the model identifier requests are sent to.
func (g *GeminiBackend) Model() string { return g.model }

func (g *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil {
		return "", errors.NewModelError("empty response", errors.ErrMalformedResponse).WithBackend(string(BackendGemini))
	}
	return strings.TrimSpace(resp.Text()), nil
}

// toGenaiSchema converts a provider-neutral schema into the SDK's form,
// keeping property order stable so the model emits fields predictably.
func toGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
		out.PropertyOrdering = s.Ordering()
	}
	return out
}

func genaiType(t schema.Type) genai.Type {
	switch t {
	case schema.TypeObject:
		return genai.TypeObject
	case schema.TypeArray:
		return genai.TypeArray
	case schema.TypeNumber:
		return genai.TypeNumber
	case schema.TypeInteger:
		return genai.TypeInteger
	case schema.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// classifyGeminiError maps SDK failures onto the sentinel errors used for
// user messages and retry decisions.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.NewModelError("request deadline exceeded", errors.ErrTimeout).WithBackend(string(BackendGemini))
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		// Transport failures never reached the API.
		return errors.NewModelError("request failed", errors.Join(errors.ErrTransient, err)).WithBackend(string(BackendGemini))
	}

	msg := strings.ToLower(apiErr.Message + " " + apiErr.Status)
	var cause error
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden ||
		strings.Contains(msg, "api key not valid") || strings.Contains(msg, "api_key_invalid"):
		cause = errors.ErrInvalidAPIKey
	case apiErr.Code == http.StatusTooManyRequests && strings.Contains(msg, "quota"):
		cause = errors.ErrQuotaExceeded
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusRequestTimeout ||
		apiErr.Code >= http.StatusInternalServerError:
		cause = errors.ErrTransient
	}

	return errors.NewModelError(apiErr.Message, cause).
		WithBackend(string(BackendGemini)).
		WithStatus(apiErr.Code)
}
