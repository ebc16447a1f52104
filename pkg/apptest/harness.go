package apptest

import (
	"time"

	"github.com/rescp17/tunePlayer/pkg/async"
)

// Harness owns a LocalExecutor running on FakeTimers. It must be created on
// the goroutine that will build and drive the app, normally the test itself.
type Harness struct {
	timers *FakeTimers
	exec   *async.LocalExecutor
}

func NewHarness(opts ...async.Option) *Harness {
	timers := NewFakeTimers()
	return &Harness{
		timers: timers,
		exec:   async.NewLocalExecutor(timers, opts...),
	}
}

// Executor is the adapter to install with WithAsyncRuntime.
func (h *Harness) Executor() *async.LocalExecutor {
	return h.exec
}

func (h *Harness) Timers() *FakeTimers {
	return h.timers
}

func (h *Harness) Now() time.Duration {
	return h.timers.Now()
}

// Flush runs queued work until nothing is ready.
func (h *Harness) Flush() int {
	return h.exec.RunUntilIdle()
}

// Advance moves virtual time forward by d. It stops at every intermediate
// wake time and flushes, so a task that sleeps in a loop sees each of its
// deadlines rather than one coalesced wake-up.
func (h *Harness) Advance(d time.Duration) int {
	target := h.timers.Now() + time.Duration(toMillis(d))*time.Millisecond
	n := h.Flush()
	for {
		next, ok := h.timers.NextWake()
		if !ok || next > target {
			break
		}
		h.timers.Advance(next - h.timers.Now())
		n += h.Flush()
	}
	h.timers.Advance(target - h.timers.Now())
	return n + h.Flush()
}

// Close shuts the executor down, unwinding parked tasks.
func (h *Harness) Close() {
	h.exec.Close()
}
