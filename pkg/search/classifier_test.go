package search

import (
	"testing"

	"medivault-be/internal/entity"

	"github.com/google/uuid"
)

func testCorpus() []*entity.Document {
	return []*entity.Document{
		{Id: uuid.New(), DisplayName: "Annual Blood Panel", Filename: "blood_panel.pdf", SearchSummary: "Cholesterol and glucose results"},
		{Id: uuid.New(), DisplayName: "Lisinopril Prescription", Filename: "rx_lisinopril.pdf", SearchSummary: "Blood pressure medication"},
		{Id: uuid.New(), DisplayName: "Chest X-Ray Report", Filename: "xray_chest.pdf", SearchSummary: "Two view chest radiograph"},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		hasActiveSession bool
		want             Mode
	}{
		{
			name:  "empty query lists documents",
			query: "",
			want:  ModeDocuments,
		},
		{
			name:  "whitespace only lists documents",
			query: "   ",
			want:  ModeDocuments,
		},
		{
			name:  "listing verb",
			query: "show all prescriptions",
			want:  ModeDocuments,
		},
		{
			name:             "listing verb wins over active session",
			query:            "show all prescriptions",
			hasActiveSession: true,
			want:             ModeDocuments,
		},
		{
			name:             "active session continues as chat",
			query:            "why is my cholesterol high?",
			hasActiveSession: true,
			want:             ModeChat,
		},
		{
			name:  "conversation cue starts chat",
			query: "let's talk about my blood pressure",
			want:  ModeChat,
		},
		{
			name:  "question mark means answer",
			query: "my last glucose reading?",
			want:  ModeAnswer,
		},
		{
			name:  "interrogative opener means answer",
			query: "when was my last x-ray",
			want:  ModeAnswer,
		},
		{
			name:  "bare topic phrase means summary",
			query: "blood pressure readings over time",
			want:  ModeSummary,
		},
		{
			name:  "case insensitive",
			query: "SHOW my lab results",
			want:  ModeDocuments,
		},
	}

	c := NewClassifier()
	corpus := testCorpus()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query, corpus, tt.hasActiveSession)
			if got != tt.want {
				t.Errorf("Classify(%q, session=%v) = %v, want %v", tt.query, tt.hasActiveSession, got, tt.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier()
	corpus := testCorpus()

	first := c.Classify("blood pressure readings", corpus, false)
	for i := 0; i < 10; i++ {
		if got := c.Classify("blood pressure readings", corpus, false); got != first {
			t.Fatalf("classification changed between identical calls: %v then %v", first, got)
		}
	}
}

func TestFilterDocuments(t *testing.T) {
	c := NewClassifier()
	corpus := testCorpus()

	t.Run("term narrows the listing", func(t *testing.T) {
		got := c.FilterDocuments("show all prescriptions", corpus)
		if len(got) != 1 || got[0].DisplayName != "Lisinopril Prescription" {
			t.Fatalf("expected only the prescription, got %d documents", len(got))
		}
	})

	t.Run("stopword-only query returns whole corpus", func(t *testing.T) {
		got := c.FilterDocuments("show all my", corpus)
		if len(got) != len(corpus) {
			t.Fatalf("expected whole corpus, got %d documents", len(got))
		}
	})

	t.Run("no match falls back to whole corpus", func(t *testing.T) {
		got := c.FilterDocuments("show dental records", corpus)
		if len(got) != len(corpus) {
			t.Fatalf("expected whole corpus, got %d documents", len(got))
		}
	})

	t.Run("summary text is searchable", func(t *testing.T) {
		got := c.FilterDocuments("find cholesterol", corpus)
		if len(got) != 1 || got[0].DisplayName != "Annual Blood Panel" {
			t.Fatalf("expected the blood panel, got %d documents", len(got))
		}
	})
}
