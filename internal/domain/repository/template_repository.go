package repository

import (
	"context"
	"errors"

	"smartextract/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTemplateNotFound is returned when a template does not exist or is not
// visible to the caller.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository defines persistence for document templates.
type TemplateRepository interface {
	// FindByIDForOwner retrieves a template only if it belongs to ownerID.
	FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Template, error)

	// ListByOwner retrieves the owner's templates with offset pagination.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Template, error)

	// Create persists a new template.
	Create(ctx context.Context, tpl *entity.Template) error

	// Update modifies an existing template.
	Update(ctx context.Context, tpl *entity.Template) error

	// Delete removes a template.
	Delete(ctx context.Context, id uuid.UUID) error
}
