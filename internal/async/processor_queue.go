package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	retries int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithRetries bounds how often a retryable failure is attempted again.
func WithRetries(n int) Option {
	return func(q *ProcessorQueue) {
		if n >= 0 {
			q.retries = n
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 30 * time.Second,
		retries: 3,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.run(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int) {
	defer q.wg.Done()
	for job := range q.ch {
		attempts, err := q.apply(job)
		if err != nil {
			q.logger.Error("xp award failed", "worker_id", workerID, "employee_id", job.EmployeeID,
				"amount", job.Amount, "attempts", attempts, "queued_for", time.Since(job.SubmittedAt), "error", err)
			continue
		}
		q.logger.Info("xp award applied", "worker_id", workerID, "employee_id", job.EmployeeID,
			"amount", job.Amount, "reason", job.Reason, "attempts", attempts)
	}
}

// apply runs the processor, retrying only errors marked retryable. Each
// attempt gets its own timeout.
func (q *ProcessorQueue) apply(job Job) (int, error) {
	attempts := 0
	op := func() error {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		defer cancel()
		err := q.proc.Process(ctx, job)
		if err != nil && !common.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	err := backoff.Retry(op, backoff.WithMaxRetries(b, uint64(q.retries)))
	return attempts, err
}

// Enqueue hands job to the workers. When the buffer is full it blocks until a
// slot frees up or ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "employee_id", job.EmployeeID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued xp award", "employee_id", job.EmployeeID, "amount", job.Amount)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "employee_id", job.EmployeeID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
