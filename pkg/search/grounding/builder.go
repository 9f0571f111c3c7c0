// Package grounding formats a user's document corpus into the single
// context blob handed to the generative model.
package grounding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"medivault-be/internal/constant"
	"medivault-be/internal/entity"
)

// BuildContext renders one labeled block per document, in input order,
// joined by a blank line. The builder is pure and never truncates; any
// token-budget enforcement is the caller's job.
func BuildContext(documents []*entity.Document) string {
	if len(documents) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(documents))
	for _, doc := range documents {
		blocks = append(blocks, buildBlock(doc))
	}
	return strings.Join(blocks, "\n\n")
}

func buildBlock(doc *entity.Document) string {
	var b strings.Builder

	b.WriteString("Document: ")
	b.WriteString(doc.Name())
	b.WriteString("\n")

	b.WriteString("Summary: ")
	if doc.SearchSummary != "" {
		b.WriteString(doc.SearchSummary)
	} else {
		b.WriteString(constant.NoSummaryPlaceholder)
	}

	if len(doc.StructuredData) > 0 {
		b.WriteString("\nDetailed Values:")
		for _, key := range sortedKeys(doc.StructuredData) {
			b.WriteString("\n- ")
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(renderValue(doc.StructuredData[key]))
		}
	}

	return b.String()
}

// Go maps carry no insertion order, so sorted keys are the canonical
// iteration order for structured data.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderValue(v interface{}) string {
	switch v.(type) {
	case nil:
		return ""
	case string, bool, int, int32, int64, float32, float64, json.Number:
		return fmt.Sprintf("%v", v)
	default:
		// Object-typed values serialize to compact JSON
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
