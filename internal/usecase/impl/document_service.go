package impl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"smartextract/config"
	deliverycontext "smartextract/internal/delivery/context"
	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/domain/service"
	"smartextract/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// defaultAllowedExtensions covers the analyzable types plus common office
// formats that are stored but processed as unsupported.
var defaultAllowedExtensions = []string{"pdf", "jpg", "jpeg", "png", "tiff", "bmp"}

// documentService implements the DocumentUsecase interface.
type documentService struct {
	txManager         repository.TransactionManager
	documentRepo      repository.DocumentRepository
	files             service.FileStore
	allowedExtensions []string
	logger            *slog.Logger
}

// DocumentServiceParams holds dependencies for DocumentService, injected by Fx.
type DocumentServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	DocumentRepo repository.DocumentRepository
	Files        service.FileStore
	Config       *config.Config
	Logger       *slog.Logger
}

// NewDocumentService is the constructor for documentService.
func NewDocumentService(params DocumentServiceParams) usecase.DocumentUsecase {
	allowed := defaultAllowedExtensions
	if params.Config.Upload != nil && len(params.Config.Upload.AllowedExtensions) > 0 {
		allowed = make([]string, 0, len(params.Config.Upload.AllowedExtensions))
		for _, ext := range params.Config.Upload.AllowedExtensions {
			allowed = append(allowed, strings.ToLower(strings.TrimPrefix(ext, ".")))
		}
	}

	return &documentService{
		txManager:         params.TxManager,
		documentRepo:      params.DocumentRepo,
		files:             params.Files,
		allowedExtensions: allowed,
		logger:            params.Logger,
	}
}

func (srv *documentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Upload stores the file bytes in the blob store, then records the metadata
// row. A failed row insert cleans up the orphaned blob.
func (srv *documentService) Upload(ctx context.Context, input *usecase.UploadDocumentInput) (*entity.Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Filename), "."))
	if ext == "" || !slices.Contains(srv.allowedExtensions, ext) {
		srv.log(ctx).Warn("Upload rejected, extension not allowed",
			slog.String("filename", input.Filename),
			slog.String("extension", ext),
		)

		return nil, domainerrors.ErrUnsupportedFileType.WrapMessage(fmt.Sprintf("file extension %q is not allowed", ext))
	}

	storagePath := fmt.Sprintf("documents/%s/%s.%s", input.OwnerID, uuid.New(), ext)

	if err := srv.files.Save(ctx, storagePath, input.MimeType, input.Content); err != nil {
		srv.log(ctx).Error("Failed to store upload", slog.String("key", storagePath), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store uploaded file")
	}

	doc := &entity.Document{
		Filename:     input.Filename,
		StoragePath:  storagePath,
		FileType:     ext,
		FileSize:     input.FileSize,
		MimeType:     input.MimeType,
		Status:       entity.DocumentStatusUploaded,
		DocumentType: entity.ParseDocumentType(input.DocumentType),
		OwnerID:      input.OwnerID,
	}

	if err := srv.documentRepo.Create(ctx, doc); err != nil {
		// Don't leave an orphaned blob behind.
		if delErr := srv.files.Delete(ctx, storagePath); delErr != nil {
			srv.log(ctx).Warn("Failed to clean up orphaned blob", slog.String("key", storagePath), slog.Any("error", delErr))
		}

		return nil, errors.Wrap(err, "failed to record uploaded document")
	}

	srv.log(ctx).Info("Document uploaded",
		slog.Any("documentID", doc.ID),
		slog.Any("ownerID", doc.OwnerID),
		slog.String("fileType", doc.FileType),
		slog.Int64("fileSize", doc.FileSize),
	)

	return doc, nil
}

// List pages through the owner's documents.
func (srv *documentService) List(ctx context.Context, input *usecase.ListDocumentsInput) ([]*entity.Document, error) {
	docs, err := srv.documentRepo.ListByOwner(ctx, input.OwnerID, input.Offset, normalizeLimit(input.Limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}

	return docs, nil
}

// Get loads one document, scoped to the owner.
func (srv *documentService) Get(ctx context.Context, id, ownerID uuid.UUID) (*entity.Document, error) {
	doc, err := srv.documentRepo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("document not found")
		}

		return nil, errors.Wrap(err, "failed to load document")
	}

	return doc, nil
}

// Download opens the stored bytes of the owner's document.
func (srv *documentService) Download(ctx context.Context, id, ownerID uuid.UUID) (*usecase.DownloadOutput, error) {
	doc, err := srv.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	content, err := srv.files.Open(ctx, doc.StoragePath)
	if err != nil {
		srv.log(ctx).Error("Failed to open stored document", slog.String("key", doc.StoragePath), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to open stored document")
	}

	return &usecase.DownloadOutput{Document: doc, Content: content}, nil
}

// Delete removes the metadata row, then the blob. Extraction jobs and their
// data cascade with the row.
func (srv *documentService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	var storagePath string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		documentRepo := repoFactory.DocumentRepo()

		doc, err := documentRepo.FindByIDForOwner(ctx, id, ownerID)
		if err != nil {
			if errors.Is(err, repository.ErrDocumentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("document not found")
			}

			return errors.Wrap(err, "failed to load document for deletion")
		}
		storagePath = doc.StoragePath

		return documentRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	// Blob removal is best-effort after the row is gone.
	if err := srv.files.Delete(ctx, storagePath); err != nil {
		srv.log(ctx).Warn("Failed to delete stored blob", slog.String("key", storagePath), slog.Any("error", err))
	}

	srv.log(ctx).Info("Document deleted", slog.Any("documentID", id), slog.Any("ownerID", ownerID))

	return nil
}
