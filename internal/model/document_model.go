package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID         `gorm:"type:uuid;not null;index"`
	DisplayName    string            `gorm:"type:varchar(255);not null"`
	Filename       string            `gorm:"type:varchar(255);not null"`
	Status         string            `gorm:"type:varchar(32);not null;default:'review'"`
	SearchSummary  string            `gorm:"type:text"`
	StructuredData datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt    `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
