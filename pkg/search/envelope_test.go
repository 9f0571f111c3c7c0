package search

import (
	"strings"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantAnswer string
		wantErr    bool
	}{
		{
			name:       "clean JSON",
			response:   `{"answer": "Your LDL is 131 mg/dL.", "references": ["Annual Blood Panel"]}`,
			wantAnswer: "Your LDL is 131 mg/dL.",
		},
		{
			name:       "JSON wrapped in prose",
			response:   "Sure! Here you go:\n{\"answer\": \"ok\", \"references\": []}\nHope that helps.",
			wantAnswer: "ok",
		},
		{
			name:       "JSON in code fence",
			response:   "```json\n{\"answer\": \"ok\", \"references\": []}\n```",
			wantAnswer: "ok",
		},
		{
			name:       "missing references field still parses",
			response:   `{"answer": "ok"}`,
			wantAnswer: "ok",
		},
		{
			name:     "no JSON at all",
			response: "I cannot answer that.",
			wantErr:  true,
		},
		{
			name:     "empty answer",
			response: `{"answer": "", "references": []}`,
			wantErr:  true,
		},
		{
			name:     "broken JSON",
			response: `{"answer": "ok", "references": [`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", env)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", env.Answer, tt.wantAnswer)
			}
		})
	}
}

func TestCorpusErrorUnwrap(t *testing.T) {
	inner := &CorpusError{Err: errFake}
	if !strings.Contains(inner.Error(), errFake.Error()) {
		t.Errorf("CorpusError message should carry the cause, got %q", inner.Error())
	}
	if inner.Unwrap() != errFake {
		t.Error("Unwrap should return the cause")
	}
}

var errFake = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "connection refused" }
