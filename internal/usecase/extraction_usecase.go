package usecase

import (
	"context"

	"github.com/google/uuid"

	"smartextract/internal/domain/entity"
)

// SubmitExtractionInput starts an asynchronous extraction run for one of the
// caller's documents.
type SubmitExtractionInput struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	RequestID  string
}

// ListJobsInput pages through the caller's extraction jobs.
type ListJobsInput struct {
	UserID uuid.UUID
	Offset int
	Limit  int
}

// ExtractionResults pairs a finished job with its extracted rows.
type ExtractionResults struct {
	Job  *entity.ExtractionJob
	Data []*entity.ExtractedData
}

// ExtractionUsecase defines the interface for the asynchronous extraction
// pipeline: submit a job, poll its status, fetch the results.
type ExtractionUsecase interface {
	// Submit records a PENDING job and enqueues it for background processing.
	Submit(ctx context.Context, input *SubmitExtractionInput) (*entity.ExtractionJob, error)

	// GetJob returns the job's current status, scoped to the owning user.
	GetJob(ctx context.Context, jobID, userID uuid.UUID) (*entity.ExtractionJob, error)

	// ListJobs pages through the user's jobs.
	ListJobs(ctx context.Context, input *ListJobsInput) ([]*entity.ExtractionJob, error)

	// GetResults returns the extracted rows of a job that has results.
	GetResults(ctx context.Context, jobID, userID uuid.UUID) (*ExtractionResults, error)
}
