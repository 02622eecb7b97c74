package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/martinsuchenak/devcalc/internal/log"
)

// ErrPoolStopped is returned when submitting to a stopped pool
var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerPool runs jobs on a fixed number of goroutines
type WorkerPool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	mu         sync.RWMutex
	started    bool
	stopped    bool
	done       chan struct{}  // closed by Stop to release blocked submitters
	submitters sync.WaitGroup // Submit calls between the stopped check and the send
}

// Job represents a unit of work
type Job struct {
	ID      string
	Handler func(context.Context) error
	Result  chan error // optional, receives the handler's error
}

// NewWorkerPool creates a new worker pool. queueSize bounds the number of
// jobs waiting for a worker.
func NewWorkerPool(maxWorkers, queueSize int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, queueSize),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the worker pool
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info("Worker pool started", "workers", p.maxWorkers, "queue", cap(p.jobs))
}

// Stop stops accepting jobs, waits for queued jobs to finish and then
// cancels the context handed to job handlers
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.done)
	p.mu.Unlock()

	// No new submitter can pass the stopped check, so once these return
	// nothing sends on jobs again
	p.submitters.Wait()
	close(p.jobs)

	p.wg.Wait()
	p.cancel()
}

// Submit queues a job, blocking while the queue is full. A blocked Submit
// returns ErrPoolStopped once Stop is called.
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrPoolStopped
	}
	p.submitters.Add(1)
	p.mu.RUnlock()
	defer p.submitters.Done()

	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker is the worker goroutine
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		log.Trace("Worker executing job", "worker_id", id, "job_id", job.ID)

		err := p.run(job)
		if job.Result != nil {
			job.Result <- err
		}
	}
}

func (p *WorkerPool) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Worker job panicked", "job_id", job.ID, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return job.Handler(p.ctx)
}
