package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "smartextract/internal/delivery/context"
	"smartextract/internal/delivery/http/middleware"
	"smartextract/internal/delivery/http/response"
	"smartextract/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ExtractionHandler holds dependencies for the extraction pipeline handlers.
type ExtractionHandler struct {
	uc     usecase.ExtractionUsecase
	logger *slog.Logger
}

// NewExtractionHandler is the constructor for ExtractionHandler, injected by Fx.
func NewExtractionHandler(uc usecase.ExtractionUsecase, logger *slog.Logger) *ExtractionHandler {
	return &ExtractionHandler{uc: uc, logger: logger}
}

type submitExtractionRequest struct {
	DocumentID uuid.UUID `json:"document_id" validate:"required"`
}

// Submit starts an asynchronous extraction run. The response returns as soon
// as the PENDING job is recorded; processing happens on the worker pool.
func (h *ExtractionHandler) Submit(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req submitExtractionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid extraction input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.uc.Submit(c.Request().Context(), &usecase.SubmitExtractionInput{
		DocumentID: req.DocumentID,
		UserID:     userID,
		RequestID:  deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toJobResponse(job), "Extraction job queued")
}

// List pages through the caller's extraction jobs.
func (h *ExtractionHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	jobs, err := h.uc.ListJobs(c.Request().Context(), &usecase.ListJobsInput{
		UserID: userID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toJobResponses(jobs), "Extraction jobs retrieved successfully")
}

// Get returns the job's current status. Clients poll this endpoint while the
// job runs.
func (h *ExtractionHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	jobID, err := pathID(c)
	if err != nil {
		return err
	}

	job, err := h.uc.GetJob(c.Request().Context(), jobID, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toJobResponse(job), "Extraction job retrieved successfully")
}

type extractionResultsResponse struct {
	Job  *JobResponse             `json:"job"`
	Data []*ExtractedDataResponse `json:"data"`
}

// Results returns the extracted rows of a finished job. Pending, processing
// and failed jobs answer 400 until/unless results exist.
func (h *ExtractionHandler) Results(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	jobID, err := pathID(c)
	if err != nil {
		return err
	}

	results, err := h.uc.GetResults(c.Request().Context(), jobID, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, extractionResultsResponse{
		Job:  toJobResponse(results.Job),
		Data: toExtractedDataResponses(results.Data),
	}, "Extraction results retrieved successfully")
}
