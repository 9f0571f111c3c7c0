package search

import (
	"strings"

	"medivault-be/internal/entity"
)

// Classifier decides which response mode a query warrants using lexical
// signals only. No model call happens here; when signals are ambiguous the
// cheaper mode wins (documents > summary > answer > chat).
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Listing verbs as the first word signal a direct record lookup.
var listingVerbs = map[string]bool{
	"show":     true,
	"list":     true,
	"display":  true,
	"find":     true,
	"get":      true,
	"fetch":    true,
	"retrieve": true,
}

// Interrogative openers signal a pointed factual question.
var interrogatives = map[string]bool{
	"what": true, "when": true, "where": true, "which": true,
	"who": true, "whose": true, "why": true, "how": true,
	"did": true, "do": true, "does": true, "is": true, "are": true,
	"was": true, "were": true, "can": true, "could": true,
	"will": true, "would": true, "should": true, "have": true, "has": true,
}

var conversationCues = []string{
	"let's talk", "lets talk", "let's chat", "lets chat",
	"let's discuss", "lets discuss", "can we talk", "can we discuss",
	"tell me more", "keep talking", "continue our",
}

// Classify inspects the query and session signal and picks one of the four
// response modes. An explicit listing intent always wins, even mid-session:
// it needs no generation and is the cheapest path.
func (c *Classifier) Classify(query string, corpus []*entity.Document, hasActiveSession bool) Mode {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ModeDocuments
	}

	words := strings.Fields(q)
	first := strings.Trim(words[0], ",.!?")

	if listingVerbs[first] {
		return ModeDocuments
	}

	if hasActiveSession {
		return ModeChat
	}
	for _, cue := range conversationCues {
		if strings.Contains(q, cue) {
			return ModeChat
		}
	}

	if strings.HasSuffix(q, "?") || interrogatives[first] {
		return ModeAnswer
	}

	// Bare topic phrases ("blood pressure readings") read as an
	// overview request across the corpus.
	return ModeSummary
}

// Listing-filter stopwords: words that carry retrieval intent but no topic.
var filterStopwords = map[string]bool{
	"show": true, "list": true, "display": true, "find": true,
	"get": true, "fetch": true, "retrieve": true, "all": true,
	"my": true, "me": true, "the": true, "a": true, "an": true,
	"of": true, "for": true, "please": true, "every": true,
}

// FilterDocuments selects the records a listing query asks for by matching
// remaining query terms against name, filename and summary. When no term
// survives stopword removal, or nothing matches, the whole corpus is the
// answer.
func (c *Classifier) FilterDocuments(query string, corpus []*entity.Document) []*entity.Document {
	q := strings.ToLower(strings.TrimSpace(query))

	var terms []string
	for _, w := range strings.Fields(q) {
		w = strings.Trim(w, ",.!?\"'")
		if w == "" || filterStopwords[w] {
			continue
		}
		terms = append(terms, w)
	}
	if len(terms) == 0 {
		return corpus
	}

	var matched []*entity.Document
	for _, doc := range corpus {
		haystack := strings.ToLower(doc.DisplayName + " " + doc.Filename + " " + doc.SearchSummary)
		for _, term := range terms {
			// Naive singular: "prescriptions" should still hit "prescription"
			singular := strings.TrimSuffix(term, "s")
			if strings.Contains(haystack, term) || (len(singular) > 2 && strings.Contains(haystack, singular)) {
				matched = append(matched, doc)
				break
			}
		}
	}
	if len(matched) == 0 {
		return corpus
	}
	return matched
}
