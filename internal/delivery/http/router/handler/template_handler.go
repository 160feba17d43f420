package handler

import (
	"log/slog"
	"net/http"

	"smartextract/internal/delivery/http/middleware"
	"smartextract/internal/delivery/http/response"
	"smartextract/internal/domain/entity"
	"smartextract/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TemplateHandler holds dependencies for extraction template handlers.
type TemplateHandler struct {
	uc     usecase.TemplateUsecase
	logger *slog.Logger
}

// NewTemplateHandler is the constructor for TemplateHandler, injected by Fx.
func NewTemplateHandler(uc usecase.TemplateUsecase, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{uc: uc, logger: logger}
}

type templateRequest struct {
	Name         string                 `json:"name" validate:"required,max=256"`
	Description  string                 `json:"description" validate:"max=1024"`
	DocumentType string                 `json:"document_type"`
	Fields       []entity.TemplateField `json:"fields" validate:"dive"`
}

func (r *templateRequest) toInput() *usecase.TemplateInput {
	return &usecase.TemplateInput{
		Name:         r.Name,
		Description:  r.Description,
		DocumentType: r.DocumentType,
		Fields:       r.Fields,
	}
}

// Create stores a new template for the caller.
func (h *TemplateHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid template input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tpl, err := h.uc.Create(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toTemplateResponse(tpl), "Template created successfully")
}

// List pages through the caller's templates.
func (h *TemplateHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	tpls, err := h.uc.List(c.Request().Context(), &usecase.ListTemplatesInput{
		OwnerID: userID,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTemplateResponses(tpls), "Templates retrieved successfully")
}

// Get returns one of the caller's templates.
func (h *TemplateHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	tplID, err := pathID(c)
	if err != nil {
		return err
	}

	tpl, err := h.uc.Get(c.Request().Context(), tplID, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTemplateResponse(tpl), "Template retrieved successfully")
}

// Update replaces the template's definition.
func (h *TemplateHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	tplID, err := pathID(c)
	if err != nil {
		return err
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid template input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tpl, err := h.uc.Update(c.Request().Context(), tplID, userID, req.toInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTemplateResponse(tpl), "Template updated successfully")
}

// Delete removes the caller's template.
func (h *TemplateHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	tplID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), tplID, userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Template deleted successfully")
}
