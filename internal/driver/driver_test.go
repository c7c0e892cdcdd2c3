package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	p := New(2)
	var running, peak int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}
	}
	if err := p.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak > 2 {
		t.Errorf("observed %d jobs running at once, want at most 2", peak)
	}
}

func TestRun_PropagatesFirstError(t *testing.T) {
	p := New(4)
	wantErr := errors.New("boom")
	jobs := []Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return wantErr },
		func(ctx context.Context) error { return nil },
	}
	err := p.Run(context.Background(), jobs)
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestRun_RecoversPanicAsError(t *testing.T) {
	p := New(1)
	jobs := []Job{
		func(ctx context.Context) error { panic("unexpected toolchain failure") },
	}
	err := p.Run(context.Background(), jobs)
	if err == nil {
		t.Fatal("expected Run() to convert the panic into an error")
	}
}

func TestRunCollecting_DoesNotAbortSiblingsOnFailure(t *testing.T) {
	p := New(3)
	wantErr := errors.New("design rejected")
	jobs := []Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { panic("boom") },
		func(ctx context.Context) error { return wantErr },
	}
	results := p.RunCollecting(context.Background(), jobs)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0] != nil {
		t.Errorf("job 0: got error %v, want nil", results[0])
	}
	if results[1] == nil {
		t.Errorf("job 1: expected its panic to surface as an error")
	}
	if !errors.Is(results[2], wantErr) {
		t.Errorf("job 2: got %v, want wrapping %v", results[2], wantErr)
	}
}

func TestNew_NonPositiveConcurrencyDefaultsToOne(t *testing.T) {
	if got := New(0).Concurrency(); got != 1 {
		t.Errorf("New(0).Concurrency() = %d, want 1", got)
	}
	if got := New(-3).Concurrency(); got != 1 {
		t.Errorf("New(-3).Concurrency() = %d, want 1", got)
	}
}
