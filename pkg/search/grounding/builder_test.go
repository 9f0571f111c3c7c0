package grounding

import (
	"strings"
	"testing"

	"medivault-be/internal/entity"
)

func TestBuildContextEmptyCorpus(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestBuildContextSingleDocument(t *testing.T) {
	doc := &entity.Document{
		DisplayName:   "Annual Blood Panel",
		SearchSummary: "Cholesterol slightly elevated.",
	}

	want := "Document: Annual Blood Panel\nSummary: Cholesterol slightly elevated."
	if got := BuildContext([]*entity.Document{doc}); got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContextMissingSummary(t *testing.T) {
	doc := &entity.Document{DisplayName: "Chest X-Ray"}

	got := BuildContext([]*entity.Document{doc})
	if !strings.Contains(got, "Summary: No summary available") {
		t.Errorf("expected placeholder summary, got %q", got)
	}
}

func TestBuildContextFilenameFallback(t *testing.T) {
	doc := &entity.Document{Filename: "scan_001.pdf"}

	got := BuildContext([]*entity.Document{doc})
	if !strings.HasPrefix(got, "Document: scan_001.pdf") {
		t.Errorf("expected filename as label, got %q", got)
	}
}

func TestBuildContextStructuredData(t *testing.T) {
	doc := &entity.Document{
		DisplayName:   "Annual Blood Panel",
		SearchSummary: "Lipid panel results.",
		StructuredData: map[string]interface{}{
			"ldl":     "131 mg/dL",
			"glucose": 92,
			"flags":   map[string]interface{}{"fasting": true},
		},
	}

	got := BuildContext([]*entity.Document{doc})

	// Keys render sorted, one bullet per line
	wantOrder := []string{
		"Detailed Values:",
		"- flags: {\"fasting\":true}",
		"- glucose: 92",
		"- ldl: 131 mg/dL",
	}
	idx := -1
	for _, line := range wantOrder {
		next := strings.Index(got, line)
		if next == -1 {
			t.Fatalf("missing %q in context:\n%s", line, got)
		}
		if next < idx {
			t.Fatalf("line %q out of order in context:\n%s", line, got)
		}
		idx = next
	}
}

func TestBuildContextBlockOrderAndSeparator(t *testing.T) {
	docs := []*entity.Document{
		{DisplayName: "First", SearchSummary: "a"},
		{DisplayName: "Second", SearchSummary: "b"},
	}

	got := BuildContext(docs)
	blocks := strings.Split(got, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "Document: First") || !strings.HasPrefix(blocks[1], "Document: Second") {
		t.Errorf("blocks out of input order:\n%s", got)
	}
}

func TestBuildContextIsDeterministic(t *testing.T) {
	doc := &entity.Document{
		DisplayName: "Panel",
		StructuredData: map[string]interface{}{
			"a": 1, "b": 2, "c": 3, "d": 4, "e": 5,
		},
	}

	first := BuildContext([]*entity.Document{doc})
	for i := 0; i < 20; i++ {
		if got := BuildContext([]*entity.Document{doc}); got != first {
			t.Fatal("context differs between identical calls")
		}
	}
}
