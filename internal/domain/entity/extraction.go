package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the extraction job state machine:
//
//	PENDING -> PROCESSING -> COMPLETED | FAILED | PARTIAL
//
// COMPLETED, FAILED and PARTIAL are terminal. Only the worker that owns a job
// may move it between states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusPartial    JobStatus = "partial"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusPartial:
		return true
	default:
		return false
	}
}

// HasResults reports whether extracted rows may be read for a job in this state.
// PARTIAL jobs expose the fields that did extract.
func (s JobStatus) HasResults() bool {
	return s == JobStatusCompleted || s == JobStatusPartial
}

// ValidJobStatus rejects unknown status strings at the persistence boundary.
func ValidJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusPartial:
		return true
	default:
		return false
	}
}

// ExtractionJob is one unit of asynchronous extraction work, tied to one
// document and the user who requested it.
type ExtractionJob struct {
	ID           uuid.UUID
	Status       JobStatus
	Progress     float64 // 0 to 100
	ErrorMessage string  // Populated only on FAILED / PARTIAL.
	DocumentID   uuid.UUID
	UserID       uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExtractedData is one extracted field of one job. Rows are deleted together
// with their job.
type ExtractedData struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	FieldName        string
	FieldType        string // text, number, date, ...
	Value            string
	Confidence       float64 // 0.0 to 1.0
	IsValid          bool
	ValidationErrors []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
