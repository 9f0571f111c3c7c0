package reference

import (
	"encoding/json"
	"io"
	"log"
	"testing"

	"medivault-be/internal/entity"

	"github.com/google/uuid"
)

func newTestMatcher() *Matcher {
	return NewMatcher(log.New(io.Discard, "", 0))
}

func matcherCorpus() []*entity.Document {
	return []*entity.Document{
		{Id: uuid.MustParse("11111111-1111-1111-1111-111111111111"), DisplayName: "Annual Blood Panel", Filename: "blood_panel.pdf"},
		{Id: uuid.MustParse("22222222-2222-2222-2222-222222222222"), DisplayName: "Blood Panel 2024", Filename: "blood_panel_2024.pdf"},
		{Id: uuid.MustParse("33333333-3333-3333-3333-333333333333"), DisplayName: "Lisinopril Prescription", Filename: "rx_lisinopril.pdf"},
	}
}

func TestMatchExactDisplayName(t *testing.T) {
	corpus := matcherCorpus()
	matched, report := newTestMatcher().Match([]Token{{Text: "Lisinopril Prescription"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[2] {
		t.Fatalf("expected exact display name match, got %v", matched)
	}
	if len(report.Unmatched) != 0 || report.Invalid != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestMatchExactFilename(t *testing.T) {
	corpus := matcherCorpus()
	matched, _ := newTestMatcher().Match([]Token{{Text: "rx_lisinopril.pdf"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[2] {
		t.Fatalf("expected filename match, got %v", matched)
	}
}

func TestMatchById(t *testing.T) {
	corpus := matcherCorpus()
	matched, _ := newTestMatcher().Match([]Token{{Text: "33333333-3333-3333-3333-333333333333"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[2] {
		t.Fatalf("expected id match, got %v", matched)
	}
}

func TestMatchFuzzyCaseFolded(t *testing.T) {
	corpus := matcherCorpus()
	matched, _ := newTestMatcher().Match([]Token{{Text: "lisinopril"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[2] {
		t.Fatalf("expected fuzzy match on partial name, got %v", matched)
	}
}

func TestMatchFuzzyReverseContainment(t *testing.T) {
	corpus := matcherCorpus()
	// Reference longer than the display name still matches
	matched, _ := newTestMatcher().Match([]Token{{Text: "my lisinopril prescription from march"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[2] {
		t.Fatalf("expected reverse-containment fuzzy match, got %v", matched)
	}
}

func TestMatchFuzzyTieKeepsFirstCorpusHit(t *testing.T) {
	corpus := matcherCorpus()
	matched, report := newTestMatcher().Match([]Token{{Text: "blood panel"}}, corpus)

	if len(matched) != 1 || matched[0] != corpus[0] {
		t.Fatalf("expected first corpus document on tie, got %v", matched)
	}
	if report.Ambiguous != 1 {
		t.Errorf("expected 1 ambiguous reference, got %d", report.Ambiguous)
	}
}

func TestMatchUnmatchedIsReported(t *testing.T) {
	corpus := matcherCorpus()
	matched, report := newTestMatcher().Match([]Token{{Text: "Dental Records"}}, corpus)

	if len(matched) != 0 {
		t.Fatalf("expected no match, got %v", matched)
	}
	if len(report.Unmatched) != 1 || report.Unmatched[0] != "Dental Records" {
		t.Errorf("expected unmatched entry, got %+v", report)
	}
}

func TestMatchPreservesTokenOrder(t *testing.T) {
	corpus := matcherCorpus()
	tokens := []Token{
		{Text: "Lisinopril Prescription"},
		{Text: "Annual Blood Panel"},
	}
	matched, _ := newTestMatcher().Match(tokens, corpus)

	if len(matched) != 2 || matched[0] != corpus[2] || matched[1] != corpus[0] {
		t.Fatalf("expected citation order preserved, got %v", matched)
	}
}

func TestMatchInvalidTokenCounted(t *testing.T) {
	corpus := matcherCorpus()
	matched, report := newTestMatcher().Match([]Token{{}, {Text: "Annual Blood Panel"}}, corpus)

	if len(matched) != 1 {
		t.Fatalf("expected valid token still matched, got %v", matched)
	}
	if report.Invalid != 1 {
		t.Errorf("expected 1 invalid token, got %d", report.Invalid)
	}
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantOk    bool
	}{
		{
			name:      "string tokens",
			raw:       `["Annual Blood Panel", "rx_lisinopril.pdf"]`,
			wantCount: 2,
			wantOk:    true,
		},
		{
			name:      "object tokens",
			raw:       `[{"display_name": "Annual Blood Panel"}, {"filename": "rx_lisinopril.pdf"}]`,
			wantCount: 2,
			wantOk:    true,
		},
		{
			name:      "camelCase object keys",
			raw:       `[{"displayName": "Annual Blood Panel"}]`,
			wantCount: 1,
			wantOk:    true,
		},
		{
			name:      "mixed shapes",
			raw:       `["Annual Blood Panel", {"id": "33333333-3333-3333-3333-333333333333"}]`,
			wantCount: 2,
			wantOk:    true,
		},
		{
			name:      "empty array",
			raw:       `[]`,
			wantCount: 0,
			wantOk:    true,
		},
		{
			name:      "number inside array is kept as empty token",
			raw:       `[42]`,
			wantCount: 1,
			wantOk:    true,
		},
		{
			name:   "not a sequence",
			raw:    `"Annual Blood Panel"`,
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, ok := ParseTokens(json.RawMessage(tt.raw))
			if ok != tt.wantOk {
				t.Fatalf("ParseTokens ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && len(tokens) != tt.wantCount {
				t.Errorf("got %d tokens, want %d", len(tokens), tt.wantCount)
			}
		})
	}
}

func TestParseTokensMissingField(t *testing.T) {
	tokens, ok := ParseTokens(nil)
	if !ok || tokens != nil {
		t.Errorf("missing references field should parse to zero tokens, got %v ok=%v", tokens, ok)
	}
}

func TestTokenNormalize(t *testing.T) {
	if _, ok := (Token{}).Normalize(); ok {
		t.Error("empty token should not normalize")
	}
	if v, ok := (Token{DisplayName: "Panel"}).Normalize(); !ok || v != "Panel" {
		t.Errorf("expected display name, got %q ok=%v", v, ok)
	}
	if v, ok := (Token{Text: "raw", ID: "ignored"}).Normalize(); !ok || v != "raw" {
		t.Errorf("text should win, got %q ok=%v", v, ok)
	}
}
