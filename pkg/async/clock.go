package async

import "time"

// Clock is the timer abstraction behind an executor. Tests swap in a
// virtual clock; hosts use SystemClock.
type Clock interface {
	Now() time.Duration
	// AfterFunc calls f once at least d has elapsed. f may run on any
	// goroutine. stop reports whether it prevented the call.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock measures monotonic wall time from its construction.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

func (c *SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}
