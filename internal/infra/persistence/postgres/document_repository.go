package postgres

import (
	"context"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// documentRepository implements the domain.DocumentRepository interface using GORM.
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository is the constructor for documentRepository.
func NewDocumentRepository(db *gorm.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

// FindByID retrieves a document by its unique ID regardless of owner.
func (repo *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var docM model.DocumentModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&docM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDocumentNotFound
		}

		return nil, errors.Wrap(err, "failed to find document by id")
	}

	return toDocumentDomain(&docM), nil
}

// FindByIDForOwner retrieves a document only if it belongs to ownerID.
// A document owned by someone else is indistinguishable from a missing one.
func (repo *documentRepository) FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Document, error) {
	var docM model.DocumentModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&docM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDocumentNotFound
		}

		return nil, errors.Wrap(err, "failed to find document for owner")
	}

	return toDocumentDomain(&docM), nil
}

// ListByOwner retrieves the owner's documents, newest first.
func (repo *documentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Document, error) {
	var docMs []model.DocumentModel
	err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&docMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}

	docs := make([]*entity.Document, 0, len(docMs))
	for i := range docMs {
		docs = append(docs, toDocumentDomain(&docMs[i]))
	}

	return docs, nil
}

// Create persists a new document entity.
func (repo *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	docM := fromDocumentDomain(doc)

	if err := repo.db.WithContext(ctx).Create(docM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("document owner does not exist")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required document information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create document")
	}

	doc.ID = docM.ID
	doc.CreatedAt = docM.CreatedAt
	doc.UpdatedAt = docM.UpdatedAt

	return nil
}

// UpdateStatus moves a document through its lifecycle.
func (repo *documentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.DocumentModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update document status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrDocumentNotFound
	}

	return nil
}

// Delete removes a document row. Extraction jobs cascade at the database level.
func (repo *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.DocumentModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete document")
	}
	if result.RowsAffected == 0 {
		return repository.ErrDocumentNotFound
	}

	return nil
}

// toDocumentDomain converts a GORM DocumentModel to a domain Document entity.
func toDocumentDomain(data *model.DocumentModel) *entity.Document {
	if data == nil {
		return nil
	}

	return &entity.Document{
		ID:           data.ID,
		Filename:     data.Filename,
		StoragePath:  data.StoragePath,
		FileType:     data.FileType,
		FileSize:     data.FileSize,
		MimeType:     data.MimeType,
		Status:       entity.DocumentStatus(data.Status),
		DocumentType: entity.DocumentType(data.DocumentType),
		OwnerID:      data.OwnerID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromDocumentDomain converts a domain Document entity to a GORM DocumentModel.
func fromDocumentDomain(data *entity.Document) *model.DocumentModel {
	if data == nil {
		return nil
	}

	return &model.DocumentModel{
		ID:           data.ID,
		Filename:     data.Filename,
		StoragePath:  data.StoragePath,
		FileType:     data.FileType,
		FileSize:     data.FileSize,
		MimeType:     data.MimeType,
		Status:       string(data.Status),
		DocumentType: string(data.DocumentType),
		OwnerID:      data.OwnerID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
