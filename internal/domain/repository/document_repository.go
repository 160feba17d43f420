package repository

import (
	"context"
	"errors"

	"smartextract/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when a document does not exist or is not
// visible to the caller.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository defines the standard operations for document metadata persistence.
type DocumentRepository interface {
	// FindByID retrieves a document by its unique ID regardless of owner.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// FindByIDForOwner retrieves a document only if it belongs to ownerID.
	FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Document, error)

	// ListByOwner retrieves the owner's documents with offset pagination.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Document, error)

	// Create persists a new document entity.
	Create(ctx context.Context, doc *entity.Document) error

	// UpdateStatus moves a document through its lifecycle.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error

	// Delete removes a document row. The blob is removed separately.
	Delete(ctx context.Context, id uuid.UUID) error
}
