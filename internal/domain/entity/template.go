package entity

import (
	"time"

	"github.com/google/uuid"
)

// TemplateField describes one field a template expects to find in a document.
type TemplateField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Pattern  string `json:"pattern,omitempty"`
}

// Template is a reusable field-definition set a user attaches to a document type.
type Template struct {
	ID           uuid.UUID
	Name         string
	Description  string
	DocumentType DocumentType
	Fields       []TemplateField
	OwnerID      uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
