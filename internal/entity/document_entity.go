package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	DisplayName    string
	Filename       string
	Status         string
	SearchSummary  string
	StructuredData map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Name returns the user-facing label, falling back to the original
// upload name when no display name was set.
func (d *Document) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Filename
}
