package concurrency

import (
	"fmt"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// AffinityError is the panic value raised when runtime-owned state is touched
// from a goroutine that does not currently own the logical thread.
type AffinityError struct {
	Op     string
	Owner  int64
	Caller int64
}

func (e *AffinityError) Error() string {
	return fmt.Sprintf("%s called from thread %d, but the app is owned by thread %d", e.Op, e.Caller, e.Owner)
}

// Thread marks a single logical thread of execution.
//
// Go does not expose OS threads, so the logical thread is identified by the
// goroutine that currently holds it. A cooperative executor passes ownership
// between goroutines with Handoff while only one of them runs at a time.
type Thread struct {
	owner atomic.Int64
}

// NewThread returns a Thread owned by the calling goroutine.
func NewThread() *Thread {
	t := &Thread{}
	t.Bind()
	return t
}

// CurrentID returns the id of the calling goroutine.
func CurrentID() int64 {
	return goid.Get()
}

// Bind makes the calling goroutine the owner.
func (t *Thread) Bind() {
	t.owner.Store(goid.Get())
}

// Handoff passes ownership to the goroutine with the given id.
func (t *Thread) Handoff(id int64) {
	t.owner.Store(id)
}

// Owner returns the id of the owning goroutine.
func (t *Thread) Owner() int64 {
	return t.owner.Load()
}

// IsCurrent reports whether the calling goroutine owns the thread.
func (t *Thread) IsCurrent() bool {
	return t.owner.Load() == goid.Get()
}

// Assert panics with an *AffinityError if the caller does not own the thread.
func (t *Thread) Assert(op string) {
	caller := goid.Get()
	owner := t.owner.Load()
	if owner != caller {
		panic(&AffinityError{Op: op, Owner: owner, Caller: caller})
	}
}
