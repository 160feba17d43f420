package service

import "context"

// Task is a unit of background work. The context carries the pool's
// per-task deadline.
type Task func(ctx context.Context)

// TaskQueue decouples job submission from execution. Submit returns once the
// task is enqueued; execution happens on the pool's workers. A full queue is
// reported as an error so callers fail fast instead of blocking the request.
type TaskQueue interface {
	Submit(name string, task Task) error
}
