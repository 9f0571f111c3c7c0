// FILE: internal/dto/search_dto.go
package dto

type SearchRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionId string `json:"session_id"`
}

// SearchResponse carries exactly one populated payload field, selected by
// Type. ReferencedDocuments accompanies the generated modes and lists the
// corpus records the model actually cited.
type SearchResponse struct {
	Type                string         `json:"type"`
	Documents           []*DocumentRef `json:"documents,omitempty"`
	Summary             string         `json:"summary,omitempty"`
	Answer              string         `json:"answer,omitempty"`
	Chat                string         `json:"chat,omitempty"`
	ReferencedDocuments []*DocumentRef `json:"referenced_documents,omitempty"`
	SessionId           string         `json:"session_id,omitempty"`
	Fallback            bool           `json:"fallback,omitempty"`
	FallbackReason      string         `json:"fallback_reason,omitempty"`
}
