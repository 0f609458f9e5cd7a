package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull  = errors.New("worker queue is full")
	ErrPoolClosed = errors.New("worker pool is shut down")
)

// Job is one unit of background work. ctx is cancelled on Shutdown.
type Job func(ctx context.Context)

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.run(ctx, job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

func (w *Worker) run(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			w.Logger.Error("worker job panicked", "worker_id", w.ID, "panic", rec)
		}
	}()
	job(ctx)
}

type Config struct {
	Name         string
	MaxWorkers   int
	JobQueueSize int
}

// Pool runs jobs on a fixed set of workers fed by a bounded queue.
type Pool struct {
	name   string
	logger *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewPool(config Config, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	p := &Pool{
		name:       config.Name,
		logger:     logger,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			NewWorker(i, p.workerPool, p.logger).Start(p.ctx, &p.wg)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("worker pool started",
			"pool", p.name,
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					return
				}
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Submit queues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobQueue <- job:
		return nil
	default:
		p.logger.Warn("worker queue full, dropping job", "pool", p.name)
		return ErrQueueFull
	}
}

// Shutdown stops the workers and waits for running jobs. Queued jobs are dropped.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.logger.Info("shutting down worker pool", "pool", p.name)
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool shutdown complete", "pool", p.name)
}
