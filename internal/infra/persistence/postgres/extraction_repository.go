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

// extractionRepository implements the domain.ExtractionRepository interface using GORM.
type extractionRepository struct {
	db *gorm.DB
}

// NewExtractionRepository is the constructor for extractionRepository.
func NewExtractionRepository(db *gorm.DB) repository.ExtractionRepository {
	return &extractionRepository{db: db}
}

// FindJobByID retrieves a job by its unique ID regardless of owner.
func (repo *extractionRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	var jobM model.ExtractionJobModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&jobM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrJobNotFound
		}

		return nil, errors.Wrap(err, "failed to find job by id")
	}

	return toJobDomain(&jobM), nil
}

// FindJobByIDForUser retrieves a job only if it belongs to userID.
func (repo *extractionRepository) FindJobByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.ExtractionJob, error) {
	var jobM model.ExtractionJobModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&jobM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrJobNotFound
		}

		return nil, errors.Wrap(err, "failed to find job for user")
	}

	return toJobDomain(&jobM), nil
}

// ListJobsByUser retrieves the user's jobs, newest first.
func (repo *extractionRepository) ListJobsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.ExtractionJob, error) {
	var jobMs []model.ExtractionJobModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&jobMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}

	jobs := make([]*entity.ExtractionJob, 0, len(jobMs))
	for i := range jobMs {
		jobs = append(jobs, toJobDomain(&jobMs[i]))
	}

	return jobs, nil
}

// CreateJob persists a new job.
func (repo *extractionRepository) CreateJob(ctx context.Context, job *entity.ExtractionJob) error {
	jobM := fromJobDomain(job)

	if err := repo.db.WithContext(ctx).Create(jobM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("job references a missing document or user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create extraction job")
	}

	job.ID = jobM.ID
	job.CreatedAt = jobM.CreatedAt
	job.UpdatedAt = jobM.UpdatedAt

	return nil
}

// UpdateJob persists status/progress/error changes of an existing job.
func (repo *extractionRepository) UpdateJob(ctx context.Context, job *entity.ExtractionJob) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ExtractionJobModel{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"status":        string(job.Status),
			"progress":      job.Progress,
			"error_message": job.ErrorMessage,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update extraction job")
	}
	if result.RowsAffected == 0 {
		return repository.ErrJobNotFound
	}

	return nil
}

// CreateData persists extracted rows for a job in one batch.
func (repo *extractionRepository) CreateData(ctx context.Context, rows []*entity.ExtractedData) error {
	if len(rows) == 0 {
		return nil
	}

	rowMs := make([]*model.ExtractedDataModel, 0, len(rows))
	for _, row := range rows {
		rowMs = append(rowMs, fromDataDomain(row))
	}

	if err := repo.db.WithContext(ctx).Create(&rowMs).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to store extracted data")
	}

	for i, rowM := range rowMs {
		rows[i].ID = rowM.ID
		rows[i].CreatedAt = rowM.CreatedAt
		rows[i].UpdatedAt = rowM.UpdatedAt
	}

	return nil
}

// FindDataByJob retrieves all extracted rows of a job.
func (repo *extractionRepository) FindDataByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ExtractedData, error) {
	var rowMs []model.ExtractedDataModel
	err := repo.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&rowMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load extracted data")
	}

	rows := make([]*entity.ExtractedData, 0, len(rowMs))
	for i := range rowMs {
		rows = append(rows, toDataDomain(&rowMs[i]))
	}

	return rows, nil
}

// toJobDomain converts a GORM ExtractionJobModel to a domain entity.
func toJobDomain(data *model.ExtractionJobModel) *entity.ExtractionJob {
	if data == nil {
		return nil
	}

	return &entity.ExtractionJob{
		ID:           data.ID,
		Status:       entity.JobStatus(data.Status),
		Progress:     data.Progress,
		ErrorMessage: data.ErrorMessage,
		DocumentID:   data.DocumentID,
		UserID:       data.UserID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromJobDomain converts a domain entity to a GORM ExtractionJobModel.
func fromJobDomain(data *entity.ExtractionJob) *model.ExtractionJobModel {
	if data == nil {
		return nil
	}

	return &model.ExtractionJobModel{
		ID:           data.ID,
		Status:       string(data.Status),
		Progress:     data.Progress,
		ErrorMessage: data.ErrorMessage,
		DocumentID:   data.DocumentID,
		UserID:       data.UserID,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// toDataDomain converts a GORM ExtractedDataModel to a domain entity.
// Validation errors are stored as a JSON array; a corrupt value degrades to
// a single opaque entry instead of failing the read.
func toDataDomain(data *model.ExtractedDataModel) *entity.ExtractedData {
	if data == nil {
		return nil
	}

	var validationErrors []string
	if data.ValidationErrors != "" {
		if err := json.Unmarshal([]byte(data.ValidationErrors), &validationErrors); err != nil {
			validationErrors = []string{data.ValidationErrors}
		}
	}

	return &entity.ExtractedData{
		ID:               data.ID,
		JobID:            data.JobID,
		FieldName:        data.FieldName,
		FieldType:        data.FieldType,
		Value:            data.Value,
		Confidence:       data.Confidence,
		IsValid:          data.IsValid,
		ValidationErrors: validationErrors,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

// fromDataDomain converts a domain entity to a GORM ExtractedDataModel.
func fromDataDomain(data *entity.ExtractedData) *model.ExtractedDataModel {
	if data == nil {
		return nil
	}

	var validationErrors string
	if len(data.ValidationErrors) > 0 {
		if buf, err := json.Marshal(data.ValidationErrors); err == nil {
			validationErrors = string(buf)
		}
	}

	return &model.ExtractedDataModel{
		ID:               data.ID,
		JobID:            data.JobID,
		FieldName:        data.FieldName,
		FieldType:        data.FieldType,
		Value:            data.Value,
		Confidence:       data.Confidence,
		IsValid:          data.IsValid,
		ValidationErrors: validationErrors,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}
