package ai

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// extractJSON isolates a JSON document from model output that may be wrapped
// in a markdown code fence or surrounded by prose.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if matches := codeBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		content = strings.TrimSpace(matches[1])
	}

	if json.Valid([]byte(content)) {
		return content
	}

	if start := strings.Index(content, "{"); start != -1 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1]
		}
	}
	return content
}

// ParseResponse extracts the JSON document from text and validates it
// against s. Any failure is reported as errors.ErrMalformedResponse.
func ParseResponse(text string, s *schema.Schema) (json.RawMessage, error) {
	doc := extractJSON(text)
	if doc == "" {
		return nil, errors.NewModelError("empty response", errors.ErrMalformedResponse)
	}
	if err := s.Validate([]byte(doc)); err != nil {
		return nil, errors.NewModelError(err.Error(), errors.ErrMalformedResponse)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(doc)); err != nil {
		return nil, errors.NewModelError(err.Error(), errors.ErrMalformedResponse)
	}
	return json.RawMessage(compact.Bytes()), nil
}
