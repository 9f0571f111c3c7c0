package reference

import (
	"log"
	"strings"

	"medivault-be/internal/entity"
)

// Report surfaces what could not be matched. Unmatched references are a
// visible side effect, never a silent drop.
type Report struct {
	Unmatched   []string
	Invalid     int
	Ambiguous   int
	BadSequence bool
}

// Matcher maps citation tokens back to records from the same corpus the
// context was built from.
type Matcher struct {
	logger *log.Logger
}

func NewMatcher(logger *log.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// Match resolves each token against the corpus, first success wins:
//  1. exact display name (case-sensitive)
//  2. exact filename
//  3. exact id
//  4. fuzzy: case-folded bidirectional substring on display name, then
//     filename; first corpus hit wins on ties
//
// The result preserves token order, contains only corpus documents, and
// never exceeds the number of input tokens. Neither input is mutated.
func (m *Matcher) Match(tokens []Token, corpus []*entity.Document) ([]*entity.Document, Report) {
	var report Report
	matched := make([]*entity.Document, 0, len(tokens))

	for _, tok := range tokens {
		value, ok := tok.Normalize()
		if !ok {
			report.Invalid++
			continue
		}

		if doc := m.matchOne(value, corpus, &report); doc != nil {
			matched = append(matched, doc)
		} else {
			report.Unmatched = append(report.Unmatched, value)
			m.logger.Printf("[MATCH] Unmatched reference: %q", value)
		}
	}

	return matched, report
}

func (m *Matcher) matchOne(value string, corpus []*entity.Document, report *Report) *entity.Document {
	for _, doc := range corpus {
		if doc.DisplayName != "" && doc.DisplayName == value {
			return doc
		}
	}
	for _, doc := range corpus {
		if doc.Filename != "" && doc.Filename == value {
			return doc
		}
	}
	for _, doc := range corpus {
		if doc.Id.String() == value {
			return doc
		}
	}

	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return nil
	}

	var first *entity.Document
	hits := 0
	for _, doc := range corpus {
		if fuzzyHit(needle, doc) {
			if first == nil {
				first = doc
			}
			hits++
		}
	}
	if hits > 1 {
		// Ties resolve by corpus order; logged because overlapping
		// display names can misattribute a citation.
		report.Ambiguous++
		m.logger.Printf("[MATCH] Ambiguous reference %q: %d candidates, keeping %q", value, hits, first.Name())
	}
	return first
}

func fuzzyHit(needle string, doc *entity.Document) bool {
	name := strings.ToLower(doc.DisplayName)
	if name != "" && (strings.Contains(name, needle) || strings.Contains(needle, name)) {
		return true
	}
	filename := strings.ToLower(doc.Filename)
	if filename != "" && (strings.Contains(filename, needle) || strings.Contains(needle, filename)) {
		return true
	}
	return false
}
