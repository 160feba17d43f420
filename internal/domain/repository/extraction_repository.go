package repository

import (
	"context"
	"errors"

	"smartextract/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when an extraction job does not exist or is not
// visible to the caller.
var ErrJobNotFound = errors.New("extraction job not found")

// ExtractionRepository defines persistence for extraction jobs and their
// extracted rows.
type ExtractionRepository interface {
	// FindJobByID retrieves a job by its unique ID regardless of owner.
	FindJobByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error)

	// FindJobByIDForUser retrieves a job only if it belongs to userID.
	FindJobByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.ExtractionJob, error)

	// ListJobsByUser retrieves the user's jobs with offset pagination.
	ListJobsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.ExtractionJob, error)

	// CreateJob persists a new job. Callers create jobs in PENDING.
	CreateJob(ctx context.Context, job *entity.ExtractionJob) error

	// UpdateJob persists status/progress/error changes of an existing job.
	UpdateJob(ctx context.Context, job *entity.ExtractionJob) error

	// CreateData persists extracted rows for a job in one batch.
	CreateData(ctx context.Context, rows []*entity.ExtractedData) error

	// FindDataByJob retrieves all extracted rows of a job.
	FindDataByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ExtractedData, error)
}
