// Package jobs runs background extraction work on a bounded worker pool.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"smartextract/config"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/lifecycle"
	"smartextract/internal/domain/service"

	"go.uber.org/fx"
)

const (
	defaultWorkers           = 4
	defaultQueueSize         = 256
	defaultMaxProcessingTime = 5 * time.Minute
)

type queuedTask struct {
	name string
	run  service.Task
}

// pool is a fixed-size worker pool with a bounded queue. Submit never blocks:
// a full queue is an error the caller can surface as 503.
type pool struct {
	logger  *slog.Logger
	tasks   chan queuedTask
	workers int
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// Params holds dependencies for the worker pool.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewPool creates the worker pool and ties its lifetime to the fx lifecycle.
func NewPool(params Params) service.TaskQueue {
	workers := defaultWorkers
	queueSize := defaultQueueSize
	timeout := defaultMaxProcessingTime
	if ext := params.Cfg.Extraction; ext != nil {
		if ext.Workers > 0 {
			workers = ext.Workers
		}
		if ext.QueueSize > 0 {
			queueSize = ext.QueueSize
		}
		if ext.MaxProcessingTime > 0 {
			timeout = ext.MaxProcessingTime
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &pool{
		logger:  params.Logger,
		tasks:   make(chan queuedTask, queueSize),
		workers: workers,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.start()

			return nil
		},
		OnStop: p.stop,
	})

	return p
}

// Submit enqueues a task for background execution.
func (p *pool) Submit(name string, task service.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domainerrors.ErrQueueFull.WrapMessage("worker pool is shut down")
	}

	select {
	case p.tasks <- queuedTask{name: name, run: task}:
		return nil
	default:
		return domainerrors.ErrQueueFull.WrapMessage("task queue is at capacity")
	}
}

func (p *pool) start() {
	p.logger.Info("Starting extraction worker pool",
		slog.Int("workers", p.workers),
		slog.Int("queueSize", cap(p.tasks)),
	)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		p.runOne(id, task)
	}
}

// runOne executes a task under the per-task deadline and recovers panics so a
// bad document cannot take a worker down.
func (p *pool) runOne(id int, task queuedTask) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panicked",
				slog.Int("worker", id),
				slog.String("task", task.name),
				slog.Any("panic", r),
			)
		}
	}()

	start := time.Now()
	task.run(ctx)
	p.logger.Debug("Task finished",
		slog.Int("worker", id),
		slog.String("task", task.name),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// stop drains the queue: no new submissions are accepted, queued tasks still
// run, and shutdown waits for in-flight work up to the lifecycle timeout.
func (p *pool) stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.logger.Info("Shutting down extraction worker pool")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
		p.logger.Warn("Worker pool shutdown timed out, abandoning in-flight tasks")
	}

	p.cancel()

	return nil
}
