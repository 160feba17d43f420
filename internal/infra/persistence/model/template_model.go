package model

import (
	"time"

	"github.com/google/uuid"
)

// TemplateModel mirrors the 'extraction_templates' table. Fields holds the
// field definitions as a JSON document.
type TemplateModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name         string    `gorm:"type:varchar(128);not null"`
	Description  string    `gorm:"type:text"`
	DocumentType string    `gorm:"type:varchar(32);not null"`
	Fields       string    `gorm:"type:jsonb;not null;default:'[]'"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (TemplateModel) TableName() string {
	return "extraction_templates"
}
