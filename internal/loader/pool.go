package loader

import (
	"context"
	"sync"
)

// Job is an asset decode request. Decode runs on a worker goroutine;
// Done runs on whichever goroutine calls Drain.
type Job struct {
	Path   string
	Decode func(ctx context.Context) (any, error)
	Done   func(value any, err error)
}

// Result contains the outcome of a decode job
type Result struct {
	Job   Job
	Value any
	Err   error
}

// Pool manages goroutines that decode assets off the main thread
type Pool struct {
	jobQueue chan Job
	results  chan Result
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewPool creates a new loader pool
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		jobQueue: make(chan Job, queueSize),
		results:  make(chan Result, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for range workers {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// Submit queues a job.
// Returns true if job was submitted successfully, false if queue is full or the pool is shut down
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitBlocking queues a job, waiting for room. It returns false if the pool shuts down first.
func (p *Pool) SubmitBlocking(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			value, err := job.Decode(p.ctx)
			select {
			case p.results <- Result{Job: job, Value: value, Err: err}:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Drain invokes Done for every finished job without blocking and returns how many ran.
func (p *Pool) Drain() int {
	n := 0
	for {
		select {
		case r := <-p.results:
			if r.Job.Done != nil {
				r.Job.Done(r.Value, r.Err)
			}
			n++
		default:
			return n
		}
	}
}

// Wait blocks until one result is available, runs its Done, and returns false on shutdown or ctx cancellation.
func (p *Pool) Wait(ctx context.Context) bool {
	select {
	case r := <-p.results:
		if r.Job.Done != nil {
			r.Job.Done(r.Value, r.Err)
		}
		return true
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

// Shutdown stops the workers. Jobs still queued are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// QueueLength returns the current number of jobs waiting for a worker
func (p *Pool) QueueLength() int {
	return len(p.jobQueue)
}
