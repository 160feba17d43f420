package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	"smartextract/internal/domain/entity"
)

// UploadDocumentInput carries one uploaded file and its metadata.
type UploadDocumentInput struct {
	OwnerID      uuid.UUID
	Filename     string
	FileSize     int64
	MimeType     string
	DocumentType string
	Content      io.Reader
}

// ListDocumentsInput pages through the caller's documents.
type ListDocumentsInput struct {
	OwnerID uuid.UUID
	Offset  int
	Limit   int
}

// DownloadOutput pairs the stored bytes with the document metadata. The
// caller must close Content.
type DownloadOutput struct {
	Document *entity.Document
	Content  io.ReadCloser
}

// DocumentUsecase defines the interface for document management operations.
type DocumentUsecase interface {
	Upload(ctx context.Context, input *UploadDocumentInput) (*entity.Document, error)
	List(ctx context.Context, input *ListDocumentsInput) ([]*entity.Document, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*entity.Document, error)
	Download(ctx context.Context, id, ownerID uuid.UUID) (*DownloadOutput, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
