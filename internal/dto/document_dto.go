// FILE: internal/dto/document_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	DisplayName    string                 `json:"display_name" validate:"required"`
	Filename       string                 `json:"filename" validate:"required"`
	Status         string                 `json:"status" validate:"omitempty,oneof=review complete"`
	SearchSummary  string                 `json:"search_summary"`
	StructuredData map[string]interface{} `json:"structured_data"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateDocumentRequest struct {
	Id             uuid.UUID              `json:"id" validate:"required"`
	DisplayName    string                 `json:"display_name" validate:"required"`
	Status         string                 `json:"status" validate:"omitempty,oneof=review complete"`
	SearchSummary  string                 `json:"search_summary"`
	StructuredData map[string]interface{} `json:"structured_data"`
}

type UpdateDocumentResponse struct {
	Id        uuid.UUID  `json:"id"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type DocumentResponse struct {
	Id             uuid.UUID              `json:"id"`
	DisplayName    string                 `json:"display_name"`
	Filename       string                 `json:"filename"`
	Status         string                 `json:"status"`
	SearchSummary  string                 `json:"search_summary"`
	StructuredData map[string]interface{} `json:"structured_data,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      *time.Time             `json:"updated_at"`
}

// DocumentRef is the trimmed shape used in search results: enough for a
// client to render and open the record, nothing more.
type DocumentRef struct {
	Id          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Filename    string    `json:"filename"`
	Status      string    `json:"status"`
}
