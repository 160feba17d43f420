package impl

import (
	"context"
	"log/slog"

	deliverycontext "smartextract/internal/delivery/context"
	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// templateService implements the TemplateUsecase interface.
type templateService struct {
	txManager    repository.TransactionManager
	templateRepo repository.TemplateRepository
	logger       *slog.Logger
}

// TemplateServiceParams holds dependencies for TemplateService, injected by Fx.
type TemplateServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	TemplateRepo repository.TemplateRepository
	Logger       *slog.Logger
}

// NewTemplateService is the constructor for templateService.
func NewTemplateService(params TemplateServiceParams) usecase.TemplateUsecase {
	return &templateService{
		txManager:    params.TxManager,
		templateRepo: params.TemplateRepo,
		logger:       params.Logger,
	}
}

func (srv *templateService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create stores a new template for the owner.
func (srv *templateService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.TemplateInput) (*entity.Template, error) {
	tpl := &entity.Template{
		Name:         input.Name,
		Description:  input.Description,
		DocumentType: entity.ParseDocumentType(input.DocumentType),
		Fields:       input.Fields,
		OwnerID:      ownerID,
	}

	if err := srv.templateRepo.Create(ctx, tpl); err != nil {
		srv.log(ctx).Warn("Template creation failed", slog.Any("ownerID", ownerID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create template")
	}

	srv.log(ctx).Info("Template created", slog.Any("templateID", tpl.ID), slog.Any("ownerID", ownerID))

	return tpl, nil
}

// List pages through the owner's templates.
func (srv *templateService) List(ctx context.Context, input *usecase.ListTemplatesInput) ([]*entity.Template, error) {
	tpls, err := srv.templateRepo.ListByOwner(ctx, input.OwnerID, input.Offset, normalizeLimit(input.Limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	return tpls, nil
}

// Get loads one template, scoped to the owner.
func (srv *templateService) Get(ctx context.Context, id, ownerID uuid.UUID) (*entity.Template, error) {
	tpl, err := srv.templateRepo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("template not found")
		}

		return nil, errors.Wrap(err, "failed to load template")
	}

	return tpl, nil
}

// Update replaces the template's fields after an ownership check, atomically.
func (srv *templateService) Update(ctx context.Context, id, ownerID uuid.UUID, input *usecase.TemplateInput) (*entity.Template, error) {
	var updated *entity.Template

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		templateRepo := repoFactory.TemplateRepo()

		tpl, err := templateRepo.FindByIDForOwner(ctx, id, ownerID)
		if err != nil {
			if errors.Is(err, repository.ErrTemplateNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("template not found")
			}

			return errors.Wrap(err, "failed to load template for update")
		}

		tpl.Name = input.Name
		tpl.Description = input.Description
		tpl.DocumentType = entity.ParseDocumentType(input.DocumentType)
		tpl.Fields = input.Fields

		if err := templateRepo.Update(ctx, tpl); err != nil {
			return errors.Wrap(err, "failed to update template")
		}

		updated = tpl

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Template update failed", slog.Any("templateID", id), slog.Any("error", err))

		return nil, err
	}

	return updated, nil
}

// Delete removes the owner's template.
func (srv *templateService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		templateRepo := repoFactory.TemplateRepo()

		if _, err := templateRepo.FindByIDForOwner(ctx, id, ownerID); err != nil {
			if errors.Is(err, repository.ErrTemplateNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("template not found")
			}

			return errors.Wrap(err, "failed to load template for deletion")
		}

		return templateRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Template deleted", slog.Any("templateID", id), slog.Any("ownerID", ownerID))

	return nil
}
