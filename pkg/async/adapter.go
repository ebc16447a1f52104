// Package async provides the cooperative, single-threaded scheduling model
// the app runs on.
//
// A host installs an Adapter that can spawn local tasks, put a task to sleep
// and report monotonic time. LocalExecutor is the adapter shipped with the
// runtime: every task runs on its own goroutine, but only while it holds the
// executor's logical thread, so tasks never run in parallel with each other
// or with event dispatch.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/rescp17/tunePlayer/pkg/concurrency"
)

// TaskID identifies a spawned task. It carries no meaning beyond equality.
type TaskID uint64

// Task is a unit of cooperative work. ctx is done when the executor drops
// the task.
type Task func(ctx context.Context)

// Adapter is the async runtime a host lends to the app.
type Adapter interface {
	// SpawnLocal schedules task on the owning logical thread.
	SpawnLocal(task Task) TaskID
	// Sleep suspends the calling task for at least d.
	Sleep(ctx context.Context, d time.Duration) error
	// Now reports monotonic time since the adapter's epoch.
	Now() time.Duration
}

// ThreadOwner is implemented by adapters that move the logical thread
// between goroutines. The app checks affinity against this thread instead of
// the goroutine that built it.
type ThreadOwner interface {
	Thread() *concurrency.Thread
}

var (
	// ErrNoAdapter is the panic value of NoopAdapter.
	ErrNoAdapter = errors.New("no async runtime adapter installed")
	// ErrDropped is returned from Sleep and Await when the executor shut
	// down while the task was suspended.
	ErrDropped = errors.New("task dropped by executor shutdown")
	// ErrNotInTask is the panic value for suspending outside a spawned task.
	ErrNotInTask = errors.New("suspending call made outside a spawned task")
)

// NoopAdapter is the adapter an app gets when the host installed none. Every
// method panics so the misconfiguration shows up on first use.
type NoopAdapter struct{}

func (NoopAdapter) SpawnLocal(Task) TaskID {
	panic(ErrNoAdapter)
}

func (NoopAdapter) Sleep(context.Context, time.Duration) error {
	panic(ErrNoAdapter)
}

func (NoopAdapter) Now() time.Duration {
	panic(ErrNoAdapter)
}
