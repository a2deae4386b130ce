package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueDrainsOnShutdown(t *testing.T) {
	var total atomic.Int64
	q := NewProcessorQueue(ProcessorFunc(func(_ context.Context, job Job) error {
		total.Add(int64(job.Amount))
		return nil
	}), testLogger(), WithWorkers(3), WithQueueSize(4))

	for i := 0; i < 50; i++ {
		if err := q.Enqueue(context.Background(), Job{EmployeeID: uuid.New(), Amount: 2}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if got := total.Load(); got != 100 {
		t.Errorf("processed total = %d, want 100", got)
	}
	if err := q.Enqueue(context.Background(), Job{Amount: 1}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue after Shutdown: got %v, want ErrQueueClosed", err)
	}
	q.Shutdown(ctx)
}

func TestQueueEnqueueRespectsContextWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewProcessorQueue(ProcessorFunc(func(context.Context, Job) error {
		<-release
		return nil
	}), testLogger(), WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one in the buffer
	_ = q.Enqueue(context.Background(), Job{Amount: 1})
	_ = q.Enqueue(context.Background(), Job{Amount: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(ctx, Job{Amount: 1})
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Enqueue on full queue: got %v, want deadline exceeded", err)
	}

	close(release)
	q.Shutdown(context.Background())
}

func TestQueueTimesOutSlowJobs(t *testing.T) {
	var sawDeadline atomic.Bool
	q := NewProcessorQueue(ProcessorFunc(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}), testLogger(), WithWorkers(1), WithProcessTimeout(10*time.Millisecond))

	_ = q.Enqueue(context.Background(), Job{Amount: 1})
	q.Shutdown(context.Background())
	if !sawDeadline.Load() {
		t.Error("processor context never hit its deadline")
	}
}

func TestQueueRetriesRetryableFailures(t *testing.T) {
	var calls, permanent atomic.Int64
	q := NewProcessorQueue(ProcessorFunc(func(_ context.Context, job Job) error {
		if job.Reason == "permanent" {
			permanent.Add(1)
			return errors.New("boom")
		}
		if calls.Add(1) < 3 {
			return common.RetryableError("busy", errors.New("database is locked"))
		}
		return nil
	}), testLogger(), WithWorkers(1), WithRetries(5))

	_ = q.Enqueue(context.Background(), Job{Amount: 1, Reason: "flaky"})
	_ = q.Enqueue(context.Background(), Job{Amount: 1, Reason: "permanent"})
	q.Shutdown(context.Background())

	if got := calls.Load(); got != 3 {
		t.Errorf("flaky job attempts = %d, want 3", got)
	}
	if got := permanent.Load(); got != 1 {
		t.Errorf("permanent failure attempts = %d, want 1", got)
	}
}
