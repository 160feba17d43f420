package model

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionJobModel mirrors the 'extraction_jobs' table.
type ExtractionJobModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Status       string    `gorm:"type:varchar(32);not null;index"`
	Progress     float64   `gorm:"not null;default:0"`
	ErrorMessage string    `gorm:"type:text"`
	DocumentID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Rows are removed together with their job.
	ExtractedData []ExtractedDataModel `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (ExtractionJobModel) TableName() string {
	return "extraction_jobs"
}

// ExtractedDataModel mirrors the 'extracted_data' table, one row per field.
type ExtractedDataModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	JobID            uuid.UUID `gorm:"type:uuid;not null;index"`
	FieldName        string    `gorm:"type:varchar(128);not null"`
	FieldType        string    `gorm:"type:varchar(32);not null"`
	Value            string    `gorm:"type:text"`
	Confidence       float64   `gorm:"not null;default:0"`
	IsValid          bool      `gorm:"not null;default:true"`
	ValidationErrors string    `gorm:"type:text"` // JSON-encoded list.
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (ExtractedDataModel) TableName() string {
	return "extracted_data"
}
