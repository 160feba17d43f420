package handler

import (
	"log/slog"
	"net/http"

	"smartextract/internal/delivery/http/middleware"
	"smartextract/internal/delivery/http/response"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DocumentHandler holds dependencies for document management handlers.
type DocumentHandler struct {
	uc     usecase.DocumentUsecase
	logger *slog.Logger
}

// NewDocumentHandler is the constructor for DocumentHandler, injected by Fx.
func NewDocumentHandler(uc usecase.DocumentUsecase, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{uc: uc, logger: logger}
}

// Upload accepts a multipart upload under the "file" form field, with an
// optional "document_type" tag.
func (h *DocumentHandler) Upload(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Multipart field \"file\" is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	doc, err := h.uc.Upload(c.Request().Context(), &usecase.UploadDocumentInput{
		OwnerID:      userID,
		Filename:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		DocumentType: c.FormValue("document_type"),
		Content:      src,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toDocumentResponse(doc), "Document uploaded successfully")
}

// List pages through the caller's documents.
func (h *DocumentHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	docs, err := h.uc.List(c.Request().Context(), &usecase.ListDocumentsInput{
		OwnerID: userID,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toDocumentResponses(docs), "Documents retrieved successfully")
}

// Get returns one of the caller's documents.
func (h *DocumentHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	docID, err := pathID(c)
	if err != nil {
		return err
	}

	doc, err := h.uc.Get(c.Request().Context(), docID, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toDocumentResponse(doc), "Document retrieved successfully")
}

// Download streams the stored bytes back to the caller.
func (h *DocumentHandler) Download(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	docID, err := pathID(c)
	if err != nil {
		return err
	}

	out, err := h.uc.Download(c.Request().Context(), docID, userID)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Content.Close()

	contentType := out.Document.MimeType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+out.Document.Filename+`"`)

	return c.Stream(http.StatusOK, contentType, out.Content)
}

// Delete removes the caller's document, its jobs and its stored bytes.
func (h *DocumentHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	docID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), docID, userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Document deleted successfully")
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WrapMessage("path parameter is not a valid id")
	}

	return id, nil
}
