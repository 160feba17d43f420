package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through its upload/processing lifecycle.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusError      DocumentStatus = "error"
)

// DocumentType is a coarse classification tag chosen at upload time.
type DocumentType string

const (
	DocumentTypeInvoice  DocumentType = "invoice"
	DocumentTypeReceipt  DocumentType = "receipt"
	DocumentTypeContract DocumentType = "contract"
	DocumentTypeForm     DocumentType = "form"
	DocumentTypeOther    DocumentType = "other"
)

// ParseDocumentType maps a request string onto a known tag, defaulting to "other".
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(strings.ToLower(s)) {
	case DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypeContract, DocumentTypeForm:
		return DocumentType(strings.ToLower(s))
	default:
		return DocumentTypeOther
	}
}

// Document holds the metadata of one uploaded file. The bytes themselves live
// in the blob store under StoragePath.
type Document struct {
	ID           uuid.UUID
	Filename     string // Original filename as uploaded.
	StoragePath  string // Key inside the blob bucket.
	FileType     string // Lower-cased extension without the dot, e.g. "pdf".
	FileSize     int64
	MimeType     string
	Status       DocumentStatus
	DocumentType DocumentType
	OwnerID      uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FileTypeClass groups file types by the analyzer that handles them.
type FileTypeClass int

const (
	FileTypeUnsupported FileTypeClass = iota
	FileTypeImage
	FileTypePDF
)

// Class resolves the analyzer dispatch class for this document's file type.
func (d *Document) Class() FileTypeClass {
	switch strings.ToLower(d.FileType) {
	case "jpg", "jpeg", "png", "tiff", "bmp":
		return FileTypeImage
	case "pdf":
		return FileTypePDF
	default:
		return FileTypeUnsupported
	}
}
