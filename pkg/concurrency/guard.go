package concurrency

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a guarded operation is already running.
var ErrBusy = errors.New("operation already in progress")

// Guard admits at most one running task at a time and rejects the rest
// instead of queueing them.
type Guard struct {
	mu     sync.Mutex
	isBusy bool
}

func NewGuard() *Guard {
	return &Guard{}
}

// Busy reports whether a task currently holds the guard.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isBusy
}

func (g *Guard) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.isBusy {
		return false
	}
	g.isBusy = true
	return true
}

func (g *Guard) release() {
	g.mu.Lock()
	g.isBusy = false
	g.mu.Unlock()
}

// Execute runs task unless another task holds the guard, in which case it
// returns ErrBusy.
func (g *Guard) Execute(task func() error) error {
	if !g.acquire() {
		return ErrBusy
	}
	defer g.release()
	return task()
}

// ExecuteWithContext is Execute for tasks that observe cancellation. A
// context that is already done is reported before the guard is taken.
func (g *Guard) ExecuteWithContext(ctx context.Context, task func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.acquire() {
		return ErrBusy
	}
	defer g.release()
	return task(ctx)
}
