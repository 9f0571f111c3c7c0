package search

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the JSON shape the model is instructed to reply with for
// every generated mode. References stay raw here because the model emits
// them as strings or loosely-shaped objects.
type Envelope struct {
	Answer     string          `json:"answer"`
	References json.RawMessage `json:"references"`
}

// ParseEnvelope extracts and decodes the envelope from a model response.
// Models wrap JSON in prose or code fences often enough that we scan for
// the outermost braces instead of decoding the raw response.
func ParseEnvelope(response string) (*Envelope, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in model response")
	}

	var env Envelope
	if err := json.Unmarshal([]byte(jsonContent), &env); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if env.Answer == "" {
		return nil, fmt.Errorf("model envelope has no answer")
	}
	return &env, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
