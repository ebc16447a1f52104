// Package apptest is the virtual-time harness for driving an app in tests:
// a fake clock, a harness that owns a LocalExecutor on that clock, and
// recording doubles for the to-host capabilities the runtime expects.
package apptest

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type waiter struct {
	wake    int64
	seq     uint64
	fn      func()
	stopped bool
}

// FakeTimers is a virtual clock with millisecond resolution. Time moves only
// when Advance is called.
type FakeTimers struct {
	nowMs atomic.Int64

	mu      sync.Mutex
	seq     uint64
	waiters []*waiter
}

func NewFakeTimers() *FakeTimers {
	return &FakeTimers{}
}

func toMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Millisecond - 1) / time.Millisecond)
}

// Now returns the sum of all Advance durations.
func (f *FakeTimers) Now() time.Duration {
	return time.Duration(f.nowMs.Load()) * time.Millisecond
}

// AfterFunc registers fn to run once the clock reaches now+d.
func (f *FakeTimers) AfterFunc(d time.Duration, fn func()) func() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	w := &waiter{wake: f.nowMs.Load() + toMillis(d), seq: f.seq, fn: fn}
	f.waiters = append(f.waiters, w)
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if w.stopped {
			return false
		}
		w.stopped = true
		f.waiters = slices.DeleteFunc(f.waiters, func(x *waiter) bool { return x == w })
		return true
	}
}

// Advance moves the clock forward by d and fires every waiter that is due,
// earliest wake time first and registration order among equals.
func (f *FakeTimers) Advance(d time.Duration) {
	now := f.nowMs.Add(toMillis(d))

	f.mu.Lock()
	var due, rest []*waiter
	for _, w := range f.waiters {
		if w.wake <= now {
			w.stopped = true
			due = append(due, w)
		} else {
			rest = append(rest, w)
		}
	}
	f.waiters = rest
	f.mu.Unlock()

	slices.SortFunc(due, func(a, b *waiter) int {
		if c := cmp.Compare(a.wake, b.wake); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, w := range due {
		w.fn()
	}
}

// NextWake returns the earliest pending wake time.
func (f *FakeTimers) NextWake() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.waiters) == 0 {
		return 0, false
	}
	earliest := f.waiters[0].wake
	for _, w := range f.waiters[1:] {
		earliest = min(earliest, w.wake)
	}
	return time.Duration(earliest) * time.Millisecond, true
}

// Pending returns the number of registered waiters that have not fired.
func (f *FakeTimers) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}
