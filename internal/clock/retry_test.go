package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	errBusy := errors.New("busy")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		ctx       func(t *testing.T) context.Context
		wantErr   error
		wantCalls int
	}{
		{
			name:      "succeeds first try",
			attempts:  3,
			wantCalls: 1,
		},
		{
			name:      "succeeds after failures",
			attempts:  3,
			failures:  2,
			wantCalls: 3,
		},
		{
			name:      "gives up",
			attempts:  2,
			failures:  5,
			wantErr:   errBusy,
			wantCalls: 2,
		},
		{
			name:      "zero attempts still calls once",
			attempts:  0,
			failures:  5,
			wantErr:   errBusy,
			wantCalls: 1,
		},
		{
			name:     "stops when context canceled",
			attempts: 10,
			failures: 10,
			ctx: func(t *testing.T) context.Context {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
				t.Cleanup(cancel)
				return ctx
			},
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx(t)
			}

			calls := 0
			err := Retry(ctx, tt.attempts, time.Millisecond, 20*time.Millisecond, func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errBusy
				}
				return nil
			})

			if tt.wantErr == nil && err != nil {
				t.Fatalf("Retry() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Retry() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantCalls > 0 && calls != tt.wantCalls {
				t.Fatalf("Retry() calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(5*time.Millisecond, cancel)

	start := time.Now()
	err := sleep(ctx, 200*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("sleep() error = %v, want %v", err, context.Canceled)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("sleep() returned too late: %v", elapsed)
	}
}
