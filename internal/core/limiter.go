package core

// limiter.go bounds how many imports run at once. Each import holds one
// database transaction and its whole batch in memory, so the slot count is
// the knob for both connection and memory pressure.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up within the
// limiter's wait time. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

const (
	// DefaultMaxConcurrentImports is used when the configured limit is not positive.
	DefaultMaxConcurrentImports = 5

	// DefaultMaxWait is used when the configured wait is not positive.
	DefaultMaxWait = 30 * time.Second
)

// ImportLimiter is a counting semaphore over import slots.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed while active == 0
}

// NewImportLimiter allows maxConcurrent imports at a time. Callers wait at
// most maxWait for a slot.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	idle := make(chan struct{})
	close(idle)

	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot, waiting up to the limiter's max wait. It returns
// ErrTooManyImports on timeout or ctx's error if ctx ends first. Every nil
// return must be paired with one Release.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyImports
	}
}

// TryAcquire takes a slot only if one is free.
func (l *ImportLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.track(-1)
	<-l.slots
}

func (l *ImportLimiter) track(delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == 0 && delta > 0 {
		l.idle = make(chan struct{})
	}
	l.active += delta
	if l.active == 0 {
		close(l.idle)
	}
}

// ActiveCount returns the number of imports holding a slot.
func (l *ImportLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// WaitForDrain blocks until no import holds a slot or ctx ends.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a snapshot of an ImportLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current slot usage.
func (l *ImportLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
