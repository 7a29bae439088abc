package batcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBatcher_FlushOnSize(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var flushed atomic.Int32
	var batches [][]int
	var mu sync.Mutex

	b := New(zap.NewNop(), func(_ context.Context, items []int) error {
		mu.Lock()
		defer mu.Unlock()
		flushed.Add(int32(len(items)))
		cp := make([]int, len(items))
		copy(cp, items)
		batches = append(batches, cp)
		return nil
	}, Config{FlushSize: 3, FlushInterval: time.Second, RPS: 1000})

	b.Start(ctx)
	defer b.Stop()

	for i := 0; i < 5; i++ {
		if err := b.Add(ctx, i); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	time.Sleep(100 * time.Millisecond)

	if flushed.Load() != 3 {
		t.Fatalf("expected first flush of 3 items, got %d", flushed.Load())
	}
	mu.Lock()
	if len(batches) != 1 || len(batches[0]) != 3 {
		t.Fatalf("unexpected batches: %+v", batches)
	}
	mu.Unlock()
}

func TestBatcher_FlushOnInterval(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var flushed atomic.Int32

	b := New(zap.NewNop(), func(_ context.Context, items []int) error {
		flushed.Add(int32(len(items)))
		return nil
	}, Config{FlushSize: 5, FlushInterval: 50 * time.Millisecond})

	b.Start(ctx)
	defer b.Stop()

	if err := b.Add(ctx, 1); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	if flushed.Load() != 1 {
		t.Fatalf("expected flush after interval, got %d", flushed.Load())
	}
}

func TestBatcher_StopFlushesQueuedItems(t *testing.T) {
	t.Parallel()

	var flushed atomic.Int32
	b := New(zap.NewNop(), func(ctx context.Context, items []int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		flushed.Add(int32(len(items)))
		return nil
	}, Config{FlushSize: 100, FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	for i := 0; i < 7; i++ {
		if err := b.Add(ctx, i); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	cancel()
	b.Stop()

	if flushed.Load() != 7 {
		t.Fatalf("expected all 7 items flushed on shutdown, got %d", flushed.Load())
	}
}

func TestBatcher_AddAfterStop(t *testing.T) {
	t.Parallel()

	b := New(zap.NewNop(), func(context.Context, []int) error {
		return nil
	}, Config{FlushSize: 2, FlushInterval: time.Second})

	b.Start(context.Background())
	b.Stop()
	b.Stop()

	if err := b.Add(context.Background(), 1); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped on stopped batcher, got %v", err)
	}
}

func TestBatcher_FlushErrorLoggedButContinues(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	b := New(zap.NewNop(), func(_ context.Context, items []int) error {
		if calls.Add(1) == 1 {
			return errors.New("flush failed")
		}
		return nil
	}, Config{FlushSize: 1, FlushInterval: time.Second, RPS: 1000})

	b.Start(ctx)
	defer b.Stop()

	if err := b.Add(ctx, 1); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := b.Add(ctx, 2); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if calls.Load() != 2 {
		t.Fatalf("expected two flush attempts, got %d", calls.Load())
	}
}
