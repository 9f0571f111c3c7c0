// Package reference reconciles free-text document citations emitted by
// the generative model back to concrete document records.
package reference

import "encoding/json"

// Token is a model-emitted citation: either a bare string or a partial
// record shape. It is transient, produced per query, never persisted.
type Token struct {
	Text        string `json:"-"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	ID          string `json:"id"`
}

// UnmarshalJSON accepts both shapes the model produces. A token that is
// neither a string nor an object stays empty and is counted as invalid
// by the matcher rather than failing the whole envelope.
func (t *Token) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}

	var obj struct {
		DisplayName  string `json:"displayName"`
		DisplayName2 string `json:"display_name"`
		Filename     string `json:"filename"`
		FileName     string `json:"file_name"`
		ID           string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}

	t.DisplayName = obj.DisplayName
	if t.DisplayName == "" {
		t.DisplayName = obj.DisplayName2
	}
	t.Filename = obj.Filename
	if t.Filename == "" {
		t.Filename = obj.FileName
	}
	t.ID = obj.ID
	return nil
}

// Normalize collapses the token to a single canonical string before any
// matching, so nothing downstream branches on its original shape.
func (t Token) Normalize() (string, bool) {
	if t.Text != "" {
		return t.Text, true
	}
	for _, candidate := range []string{t.DisplayName, t.Filename, t.ID} {
		if candidate != "" {
			return candidate, true
		}
	}
	return "", false
}

// ParseTokens decodes the raw "references" field of a model envelope.
// A missing or non-sequence field yields zero tokens with ok=false so
// the caller can record the diagnostic without aborting.
func ParseTokens(raw json.RawMessage) ([]Token, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	var tokens []Token
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, false
	}
	return tokens, true
}
