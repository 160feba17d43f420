package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

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

const (
	progressQueued     = 0.0
	progressProcessing = 10.0
	progressDone       = 100.0
)

// extractionService implements the ExtractionUsecase interface. Submit is the
// synchronous half; runJob executes later on the worker pool and drives the
// PENDING -> PROCESSING -> {COMPLETED, PARTIAL, FAILED} state machine.
type extractionService struct {
	txManager      repository.TransactionManager
	extractionRepo repository.ExtractionRepository
	documentRepo   repository.DocumentRepository
	analyzers      service.AnalyzerResolver
	queue          service.TaskQueue
	publisher      service.EventPublisher
	logger         *slog.Logger
}

// ExtractionServiceParams holds dependencies for ExtractionService, injected by Fx.
type ExtractionServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	ExtractionRepo repository.ExtractionRepository
	DocumentRepo   repository.DocumentRepository
	Analyzers      service.AnalyzerResolver
	Queue          service.TaskQueue
	Publisher      service.EventPublisher
	Logger         *slog.Logger
}

// NewExtractionService is the constructor for extractionService.
func NewExtractionService(params ExtractionServiceParams) usecase.ExtractionUsecase {
	return &extractionService{
		txManager:      params.TxManager,
		extractionRepo: params.ExtractionRepo,
		documentRepo:   params.DocumentRepo,
		analyzers:      params.Analyzers,
		queue:          params.Queue,
		publisher:      params.Publisher,
		logger:         params.Logger,
	}
}

func (srv *extractionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit records a PENDING job for one of the caller's documents and hands it
// to the worker pool. The job row is only visible once the transaction
// commits, so the task re-reads it when it starts.
func (srv *extractionService) Submit(ctx context.Context, input *usecase.SubmitExtractionInput) (*entity.ExtractionJob, error) {
	var job *entity.ExtractionJob

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		documentRepo := repoFactory.DocumentRepo()
		extractionRepo := repoFactory.ExtractionRepo()

		doc, err := documentRepo.FindByIDForOwner(ctx, input.DocumentID, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrDocumentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("document not found")
			}

			return errors.Wrap(err, "failed to load document for extraction")
		}

		job = &entity.ExtractionJob{
			Status:     entity.JobStatusPending,
			Progress:   progressQueued,
			DocumentID: doc.ID,
			UserID:     input.UserID,
		}

		return extractionRepo.CreateJob(ctx, job)
	})
	if err != nil {
		srv.log(ctx).Warn("Extraction submit failed",
			slog.Any("documentID", input.DocumentID),
			slog.Any("userID", input.UserID),
			slog.Any("error", err),
		)

		return nil, err
	}

	jobID := job.ID
	requestID := input.RequestID
	taskName := "extract:" + jobID.String()

	if err := srv.queue.Submit(taskName, func(taskCtx context.Context) {
		srv.runJob(taskCtx, jobID, requestID)
	}); err != nil {
		// The queue refused the job; fail the row so the client sees a
		// terminal state instead of a job stuck in PENDING forever.
		srv.failJob(ctx, job, "extraction queue is at capacity", requestID)

		return nil, err
	}

	srv.log(ctx).Info("Extraction job queued",
		slog.Any("jobID", job.ID),
		slog.Any("documentID", job.DocumentID),
	)
	srv.publishEvent(ctx, job, requestID)

	return job, nil
}

// GetJob returns the job's current status, scoped to the owning user.
func (srv *extractionService) GetJob(ctx context.Context, jobID, userID uuid.UUID) (*entity.ExtractionJob, error) {
	job, err := srv.extractionRepo.FindJobByIDForUser(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("extraction job not found")
		}

		return nil, errors.Wrap(err, "failed to load extraction job")
	}

	return job, nil
}

// ListJobs pages through the user's jobs.
func (srv *extractionService) ListJobs(ctx context.Context, input *usecase.ListJobsInput) ([]*entity.ExtractionJob, error) {
	jobs, err := srv.extractionRepo.ListJobsByUser(ctx, input.UserID, input.Offset, normalizeLimit(input.Limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list extraction jobs")
	}

	return jobs, nil
}

// GetResults returns the extracted rows once the job has results. Jobs that
// are still pending or processing, and failed jobs, report not-ready.
func (srv *extractionService) GetResults(ctx context.Context, jobID, userID uuid.UUID) (*usecase.ExtractionResults, error) {
	job, err := srv.GetJob(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	if !job.Status.HasResults() {
		return nil, domainerrors.ErrJobNotReady.WrapMessage(fmt.Sprintf("job is %s", job.Status))
	}

	data, err := srv.extractionRepo.FindDataByJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load extracted data")
	}

	return &usecase.ExtractionResults{Job: job, Data: data}, nil
}

// runJob executes one extraction on a pool worker. Every exit path leaves the
// job in a terminal state.
func (srv *extractionService) runJob(taskCtx context.Context, jobID uuid.UUID, requestID string) {
	// State transitions must land even when the task deadline has expired,
	// so bookkeeping runs on a context that survives cancellation.
	ctx := context.WithoutCancel(taskCtx)

	job, err := srv.extractionRepo.FindJobByID(ctx, jobID)
	if err != nil {
		srv.logger.Error("Extraction task lost its job row", slog.Any("jobID", jobID), slog.Any("error", err))

		return
	}

	doc, err := srv.documentRepo.FindByID(ctx, job.DocumentID)
	if err != nil {
		srv.failJob(ctx, job, "document disappeared before processing", requestID)

		return
	}

	// PENDING -> PROCESSING
	job.Status = entity.JobStatusProcessing
	job.Progress = progressProcessing
	if err := srv.extractionRepo.UpdateJob(ctx, job); err != nil {
		srv.logger.Error("Failed to mark job processing", slog.Any("jobID", jobID), slog.Any("error", err))

		return
	}
	srv.publishEvent(ctx, job, requestID)
	_ = srv.documentRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusProcessing)

	analyzer, ok := srv.analyzers.Resolve(doc)
	if !ok {
		srv.failJobWithDocument(ctx, job, doc, fmt.Sprintf("Unsupported file type: %s", doc.FileType), requestID)

		return
	}

	fields, err := analyzer.Analyze(taskCtx, doc)
	if err != nil {
		if taskCtx.Err() != nil {
			srv.failJobWithDocument(ctx, job, doc, "processing deadline exceeded", requestID)

			return
		}
		// The analyzer's message is kept verbatim so callers can see what broke.
		srv.failJobWithDocument(ctx, job, doc, err.Error(), requestID)

		return
	}

	srv.finishJob(ctx, job, doc, fields, requestID)
}

// finishJob persists the extracted rows and picks the terminal state:
// COMPLETED when every field succeeded, PARTIAL on a mix, FAILED when
// nothing succeeded.
func (srv *extractionService) finishJob(ctx context.Context, job *entity.ExtractionJob, doc *entity.Document, fields []service.ExtractedField, requestID string) {
	failed := 0
	rows := make([]*entity.ExtractedData, 0, len(fields))
	for _, field := range fields {
		row := &entity.ExtractedData{
			JobID:      job.ID,
			FieldName:  field.Name,
			FieldType:  field.Type,
			Value:      field.Value,
			Confidence: field.Confidence,
			IsValid:    field.Err == "",
		}
		if field.Err != "" {
			failed++
			row.ValidationErrors = []string{field.Err}
		}
		rows = append(rows, row)
	}

	if len(fields) > 0 && failed == len(fields) {
		srv.failJobWithDocument(ctx, job, doc, "all fields failed to extract", requestID)

		return
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		extractionRepo := repoFactory.ExtractionRepo()

		if err := extractionRepo.CreateData(ctx, rows); err != nil {
			return err
		}

		if failed > 0 {
			job.Status = entity.JobStatusPartial
		} else {
			job.Status = entity.JobStatusCompleted
		}
		job.Progress = progressDone
		job.ErrorMessage = ""

		return extractionRepo.UpdateJob(ctx, job)
	})
	if err != nil {
		srv.failJobWithDocument(ctx, job, doc, "failed to store extraction results", requestID)

		return
	}

	_ = srv.documentRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusProcessed)

	srv.logger.Info("Extraction job finished",
		slog.Any("jobID", job.ID),
		slog.String("status", string(job.Status)),
		slog.Int("fields", len(rows)),
		slog.Int("failedFields", failed),
	)
	srv.publishEvent(ctx, job, requestID)
}

// failJob marks the job FAILED with the given message.
func (srv *extractionService) failJob(ctx context.Context, job *entity.ExtractionJob, message, requestID string) {
	job.Status = entity.JobStatusFailed
	job.ErrorMessage = message

	if err := srv.extractionRepo.UpdateJob(ctx, job); err != nil {
		srv.logger.Error("Failed to mark job failed", slog.Any("jobID", job.ID), slog.Any("error", err))

		return
	}

	srv.logger.Warn("Extraction job failed",
		slog.Any("jobID", job.ID),
		slog.String("reason", message),
	)
	srv.publishEvent(ctx, job, requestID)
}

// failJobWithDocument additionally moves the document into its error state.
func (srv *extractionService) failJobWithDocument(ctx context.Context, job *entity.ExtractionJob, doc *entity.Document, message, requestID string) {
	srv.failJob(ctx, job, message, requestID)
	_ = srv.documentRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusError)
}

// publishEvent reports a lifecycle transition. Best-effort: failures are
// logged, never propagated.
func (srv *extractionService) publishEvent(ctx context.Context, job *entity.ExtractionJob, requestID string) {
	event := &service.JobEvent{
		JobID:      job.ID.String(),
		DocumentID: job.DocumentID.String(),
		UserID:     job.UserID.String(),
		Status:     string(job.Status),
		Error:      job.ErrorMessage,
		OccurredAt: time.Now().UTC(),
		RequestID:  requestID,
	}

	if err := srv.publisher.PublishJobEvent(ctx, event); err != nil {
		srv.logger.Warn("Failed to publish job event",
			slog.Any("jobID", job.ID),
			slog.String("status", string(job.Status)),
			slog.Any("error", err),
		)
	}
}
