package usecase

import (
	"context"

	"github.com/google/uuid"

	"smartextract/internal/domain/entity"
)

// TemplateInput carries the fields of a template create or update.
type TemplateInput struct {
	Name         string
	Description  string
	DocumentType string
	Fields       []entity.TemplateField
}

// ListTemplatesInput pages through the caller's templates.
type ListTemplatesInput struct {
	OwnerID uuid.UUID
	Offset  int
	Limit   int
}

// TemplateUsecase defines the interface for extraction template management.
type TemplateUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *TemplateInput) (*entity.Template, error)
	List(ctx context.Context, input *ListTemplatesInput) ([]*entity.Template, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*entity.Template, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, input *TemplateInput) (*entity.Template, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
