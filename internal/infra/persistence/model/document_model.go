package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentModel mirrors the 'documents' table. The file bytes live in the
// blob store; StoragePath is the bucket key.
type DocumentModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Filename     string    `gorm:"type:varchar(255);not null"`
	StoragePath  string    `gorm:"type:varchar(512);not null"`
	FileType     string    `gorm:"type:varchar(16);not null"`
	FileSize     int64     `gorm:"not null"`
	MimeType     string    `gorm:"type:varchar(128)"`
	Status       string    `gorm:"type:varchar(32);not null;index"`
	DocumentType string    `gorm:"type:varchar(32);not null"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	ExtractionJobs []ExtractionJobModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (DocumentModel) TableName() string {
	return "documents"
}
