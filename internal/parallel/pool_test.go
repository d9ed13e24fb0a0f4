package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsEverySubmittedTask(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	var n atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		if err := pool.Submit(context.Background(), func() {
			defer wg.Done()
			n.Add(1)
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if got := n.Load(); got != 50 {
		t.Errorf("ran %d tasks, want 50", got)
	}
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Shutdown()
	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d", pool.Workers())
	}
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewWorkerPool(workers)
	defer pool.Shutdown()

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func() error {
				cur := running.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency %d exceeds %d workers", got, workers)
	}
}

func TestWorkerPool_DoReturnsTaskError(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	want := errors.New("boom")
	if err := pool.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestWorkerPool_DoRecoversPanics(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	err := pool.Do(context.Background(), func() error { panic("overflow") })
	if !errors.Is(err, ErrTaskPanicked) {
		t.Fatalf("Do() = %v, want ErrTaskPanicked", err)
	}
	// the worker survives
	if err := pool.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Do() after panic = %v", err)
	}
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Shutdown()
	pool.Shutdown()

	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolShutdown) {
		t.Errorf("Submit() = %v, want ErrPoolShutdown", err)
	}
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	block := make(chan struct{})
	defer close(block)
	// one running task plus a full buffer
	for i := 0; i < 3; i++ {
		if err := pool.Submit(context.Background(), func() { <-block }); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := pool.Submit(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() = %v, want deadline exceeded", err)
	}
}
