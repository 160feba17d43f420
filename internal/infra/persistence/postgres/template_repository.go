package postgres

import (
	"context"
	"encoding/json"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// templateRepository implements the domain.TemplateRepository interface using GORM.
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository is the constructor for templateRepository.
func NewTemplateRepository(db *gorm.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

// FindByIDForOwner retrieves a template only if it belongs to ownerID.
func (repo *templateRepository) FindByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Template, error) {
	var tplM model.TemplateModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&tplM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTemplateNotFound
		}

		return nil, errors.Wrap(err, "failed to find template for owner")
	}

	return toTemplateDomain(&tplM)
}

// ListByOwner retrieves the owner's templates, newest first.
func (repo *templateRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Template, error) {
	var tplMs []model.TemplateModel
	err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tplMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	tpls := make([]*entity.Template, 0, len(tplMs))
	for i := range tplMs {
		tpl, err := toTemplateDomain(&tplMs[i])
		if err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}

	return tpls, nil
}

// Create persists a new template.
func (repo *templateRepository) Create(ctx context.Context, tpl *entity.Template) error {
	tplM, err := fromTemplateDomain(tpl)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(tplM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("template owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create template")
	}

	tpl.ID = tplM.ID
	tpl.CreatedAt = tplM.CreatedAt
	tpl.UpdatedAt = tplM.UpdatedAt

	return nil
}

// Update modifies an existing template.
func (repo *templateRepository) Update(ctx context.Context, tpl *entity.Template) error {
	tplM, err := fromTemplateDomain(tpl)
	if err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&model.TemplateModel{}).
		Where("id = ?", tpl.ID).
		Updates(map[string]any{
			"name":          tplM.Name,
			"description":   tplM.Description,
			"document_type": tplM.DocumentType,
			"fields":        tplM.Fields,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update template")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTemplateNotFound
	}

	return nil
}

// Delete removes a template.
func (repo *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.TemplateModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete template")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTemplateNotFound
	}

	return nil
}

// toTemplateDomain converts a GORM TemplateModel to a domain Template entity.
func toTemplateDomain(data *model.TemplateModel) (*entity.Template, error) {
	if data == nil {
		return nil, nil
	}

	var fields []entity.TemplateField
	if data.Fields != "" {
		if err := json.Unmarshal([]byte(data.Fields), &fields); err != nil {
			return nil, errors.Wrap(err, "failed to decode template fields")
		}
	}

	return &entity.Template{
		ID:           data.ID,
		Name:         data.Name,
		Description:  data.Description,
		DocumentType: entity.DocumentType(data.DocumentType),
		Fields:       fields,
		OwnerID:      data.OwnerID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}, nil
}

// fromTemplateDomain converts a domain Template entity to a GORM TemplateModel.
func fromTemplateDomain(data *entity.Template) (*model.TemplateModel, error) {
	if data == nil {
		return nil, nil
	}

	fields := data.Fields
	if fields == nil {
		fields = []entity.TemplateField{}
	}
	buf, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode template fields")
	}

	return &model.TemplateModel{
		ID:           data.ID,
		Name:         data.Name,
		Description:  data.Description,
		DocumentType: string(data.DocumentType),
		Fields:       string(buf),
		OwnerID:      data.OwnerID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}, nil
}
