package service

import (
	"context"
	"time"
)

// JobEvent reports one extraction job lifecycle transition to interested
// consumers (dashboards, billing, downstream pipelines).
type JobEvent struct {
	JobID      string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
}

// EventPublisher publishes job lifecycle events. Publishing is best-effort:
// the job controller logs failures but never fails a job because of them.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event *JobEvent) error
	Close() error
}
