package impl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/service"
	"smartextract/internal/usecase"
)

func TestExtractionService_Submit_MissingDocument(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})

	_, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: uuid.New(),
		UserID:     uuid.New(),
	})

	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, h.queue.submitted, "nothing should reach the queue for a missing document")
	assert.Empty(t, h.extractions.jobs, "no job row should be created")
}

func TestExtractionService_Submit_ForeignDocumentIsInvisible(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})
	doc := h.addDocument(uuid.New(), "png")

	_, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     uuid.New(), // not the owner
	})

	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, h.extractions.jobs)
}

func TestExtractionService_RunToCompleted(t *testing.T) {
	analyzer := &fakeAnalyzer{fields: []service.ExtractedField{
		{Name: "width", Type: "number", Value: "640", Confidence: 1.0},
		{Name: "height", Type: "number", Value: "480", Confidence: 1.0},
	}}

	h := newExtractionHarness(analyzer)
	owner := uuid.New()
	doc := h.addDocument(owner, "png")

	job, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.NoError(t, err)

	stored, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, stored.Status)
	assert.InDelta(t, 100.0, stored.Progress, 0.01)
	assert.Empty(t, stored.ErrorMessage)
	assert.Equal(t, entity.DocumentStatusProcessed, h.documents.status(doc.ID))

	results, err := h.svc.GetResults(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Len(t, results.Data, 2)
	for _, row := range results.Data {
		assert.True(t, row.IsValid)
		assert.Empty(t, row.ValidationErrors)
	}

	// Reading results is a pure query: a second read returns the same rows.
	again, err := h.svc.GetResults(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.ElementsMatch(t, results.Data, again.Data)
}

func TestExtractionService_RunToPartial(t *testing.T) {
	analyzer := &fakeAnalyzer{fields: []service.ExtractedField{
		{Name: "format", Type: "text", Value: "tiff", Confidence: 1.0},
		{Name: "width", Type: "number", Err: "image decode failed: unknown format"},
		{Name: "height", Type: "number", Err: "image decode failed: unknown format"},
	}}

	h := newExtractionHarness(analyzer)
	owner := uuid.New()
	doc := h.addDocument(owner, "tiff")

	job, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.NoError(t, err)

	stored, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPartial, stored.Status)

	// PARTIAL jobs expose their rows, including the failed fields.
	results, err := h.svc.GetResults(context.Background(), job.ID, owner)
	require.NoError(t, err)
	require.Len(t, results.Data, 3)

	valid, invalid := 0, 0
	for _, row := range results.Data {
		if row.IsValid {
			valid++
		} else {
			invalid++
			assert.NotEmpty(t, row.ValidationErrors)
		}
	}
	assert.Equal(t, 1, valid)
	assert.Equal(t, 2, invalid)
}

func TestExtractionService_AllFieldsFailedIsFailed(t *testing.T) {
	analyzer := &fakeAnalyzer{fields: []service.ExtractedField{
		{Name: "width", Type: "number", Err: "decode failed"},
		{Name: "height", Type: "number", Err: "decode failed"},
	}}

	h := newExtractionHarness(analyzer)
	owner := uuid.New()
	doc := h.addDocument(owner, "bmp")

	job, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.NoError(t, err)

	stored, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
	assert.Equal(t, "all fields failed to extract", stored.ErrorMessage)
	assert.Equal(t, entity.DocumentStatusError, h.documents.status(doc.ID))

	// Failed jobs persist no rows and expose no results.
	rows, err := h.extractions.FindDataByJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = h.svc.GetResults(context.Background(), job.ID, owner)
	require.ErrorIs(t, err, domainerrors.ErrJobNotReady)
}

func TestExtractionService_UnsupportedFileTypeFailsJob(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})
	owner := uuid.New()
	doc := h.addDocument(owner, "xyz")

	job, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.NoError(t, err)

	stored, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
	assert.Equal(t, "Unsupported file type: xyz", stored.ErrorMessage)
	assert.Equal(t, entity.DocumentStatusError, h.documents.status(doc.ID))
}

func TestExtractionService_AnalyzerErrorFailsJob(t *testing.T) {
	analyzer := &fakeAnalyzer{err: domainerrors.ErrInternalError.WrapMessage("pdf structure is corrupt")}

	h := newExtractionHarness(analyzer)
	owner := uuid.New()
	doc := h.addDocument(owner, "pdf")

	job, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.NoError(t, err)

	stored, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "pdf structure is corrupt")
}

func TestExtractionService_FullQueueFailsJobTerminally(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})
	h.queue.full = true
	owner := uuid.New()
	doc := h.addDocument(owner, "png")

	_, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
	})
	require.ErrorIs(t, err, domainerrors.ErrQueueFull)

	// The job row exists but must not be stuck PENDING.
	jobs, err := h.svc.ListJobs(context.Background(), &usecase.ListJobsInput{UserID: owner})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "extraction queue is at capacity", jobs[0].ErrorMessage)
}

func TestExtractionService_GetResultsBeforeTerminalState(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})
	owner := uuid.New()

	job := &entity.ExtractionJob{
		Status:     entity.JobStatusPending,
		DocumentID: uuid.New(),
		UserID:     owner,
	}
	require.NoError(t, h.extractions.CreateJob(context.Background(), job))

	_, err := h.svc.GetResults(context.Background(), job.ID, owner)
	require.ErrorIs(t, err, domainerrors.ErrJobNotReady)
	assert.Contains(t, err.Error(), "pending")
}

func TestExtractionService_GetJobScopedToUser(t *testing.T) {
	h := newExtractionHarness(&fakeAnalyzer{})
	owner := uuid.New()

	job := &entity.ExtractionJob{
		Status:     entity.JobStatusCompleted,
		DocumentID: uuid.New(),
		UserID:     owner,
	}
	require.NoError(t, h.extractions.CreateJob(context.Background(), job))

	_, err := h.svc.GetJob(context.Background(), job.ID, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := h.svc.GetJob(context.Background(), job.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestExtractionService_PublishesLifecycleEvents(t *testing.T) {
	analyzer := &fakeAnalyzer{fields: []service.ExtractedField{
		{Name: "page_count", Type: "number", Value: "3", Confidence: 1.0},
	}}

	h := newExtractionHarness(analyzer)
	owner := uuid.New()
	doc := h.addDocument(owner, "pdf")

	_, err := h.svc.Submit(context.Background(), &usecase.SubmitExtractionInput{
		DocumentID: doc.ID,
		UserID:     owner,
		RequestID:  "req-123",
	})
	require.NoError(t, err)

	// The inline queue runs the job before Submit returns, so the order is
	// processing, completed, then the post-enqueue pending notification.
	statuses := h.publisher.statuses()
	assert.ElementsMatch(t, []string{"pending", "processing", "completed"}, statuses)

	for _, event := range h.publisher.events {
		assert.Equal(t, "req-123", event.RequestID)
		assert.Equal(t, doc.ID.String(), event.DocumentID)
	}
}
