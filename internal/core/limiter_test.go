package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 || status.MaxConcurrent != 2 {
		t.Errorf("full Status = %+v, want {2 0 2}", status)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyImports) {
		t.Fatalf("Acquire on full limiter = %v, want ErrTooManyImports", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait", elapsed)
	}
}

func TestImportLimiter_ContextCancellation(t *testing.T) {
	limiter := NewImportLimiter(1, time.Minute)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestImportLimiter_TryAcquire(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter should succeed")
	}
	if limiter.TryAcquire() {
		t.Fatal("TryAcquire on full limiter should fail")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestImportLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewImportLimiter(1, 5*time.Second)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter Acquire failed: %v", err)
		}
		limiter.Release()
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not unblocked by Release")
	}
}

func TestImportLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewImportLimiter(3, 5*time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		peak    int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			limiter.Release()
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all released = %d, want 0", got)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain on idle limiter = %v", err)
	}

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain = %v, want nil", err)
	}
}

func TestImportLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain = %v, want context.DeadlineExceeded", err)
	}
}

func TestImportLimiter_DefaultValues(t *testing.T) {
	limiter := NewImportLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentImports {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentImports)
	}
	if limiter.maxWait != DefaultMaxWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWait)
	}
}
