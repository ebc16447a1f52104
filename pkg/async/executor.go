package async

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rescp17/tunePlayer/pkg/concurrency"
)

type taskKey struct{}

// task is a spawned Task together with the channels used to pass the
// logical thread to and from its goroutine.
type task struct {
	id     TaskID
	fn     Task
	exec   *LocalExecutor
	ctx    context.Context
	cancel context.CancelFunc

	// Guarded by exec.mu.
	started    bool
	finished   bool
	suspended  bool
	epoch      uint64
	wakeQueued uint64

	// Written by the driver before handing the thread over.
	dropped bool
	// Written by the task goroutine before handing the thread back.
	panicVal any

	resume chan struct{}
	yield  chan struct{}
}

func taskFrom(ctx context.Context) *task {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(taskKey{}).(*task)
	return t
}

// job is one entry of the run queue: a submitted function, the first run of
// a task, or the resumption of a suspended task at a given epoch.
type job struct {
	fn    func()
	task  *task
	epoch uint64
}

// Option configures a LocalExecutor.
type Option func(*LocalExecutor)

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *LocalExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// LocalExecutor is a single-threaded cooperative executor.
//
// Submit and SpawnLocal may be called from any goroutine. Queued work runs in
// FIFO order on whichever goroutine drives the executor with Run or
// RunUntilIdle; spawned tasks run on their own goroutines but only while the
// driver has handed them the logical thread, and give it back when they
// finish or suspend in Sleep or Await.
type LocalExecutor struct {
	clock  Clock
	thread *concurrency.Thread
	logger *slog.Logger

	mu     sync.Mutex
	queue  []job
	tasks  map[TaskID]*task
	nextID TaskID
	closed bool

	signal chan struct{}
}

// NewLocalExecutor returns an executor whose logical thread is owned by the
// calling goroutine. A nil clock means SystemClock.
func NewLocalExecutor(clock Clock, opts ...Option) *LocalExecutor {
	if clock == nil {
		clock = NewSystemClock()
	}
	e := &LocalExecutor{
		clock:  clock,
		thread: concurrency.NewThread(),
		logger: slog.Default(),
		tasks:  make(map[TaskID]*task),
		signal: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thread returns the executor's logical thread.
func (e *LocalExecutor) Thread() *concurrency.Thread {
	return e.thread
}

func (e *LocalExecutor) Now() time.Duration {
	return e.clock.Now()
}

func (e *LocalExecutor) notify() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *LocalExecutor) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Submit queues fn to run on the logical thread. It is the marshaling entry
// for host goroutines. It reports false once the executor is closed.
func (e *LocalExecutor) Submit(fn func()) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue, job{fn: fn})
	e.mu.Unlock()
	e.notify()
	return true
}

// SpawnLocal queues a new task. Tasks spawned after Close are dropped.
func (e *LocalExecutor) SpawnLocal(fn Task) TaskID {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	if e.closed {
		e.mu.Unlock()
		e.logger.Debug("Dropping task spawned after executor close", "task_id", id)
		return id
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		id:     id,
		fn:     fn,
		exec:   e,
		cancel: cancel,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	t.ctx = context.WithValue(ctx, taskKey{}, t)
	e.queue = append(e.queue, job{task: t})
	e.mu.Unlock()
	e.notify()
	return id
}

// Queued returns the number of jobs waiting in the run queue.
func (e *LocalExecutor) Queued() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Suspended returns the number of tasks parked in Sleep or Await.
func (e *LocalExecutor) Suspended() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.tasks {
		if t.suspended {
			n++
		}
	}
	return n
}

// Pending returns the number of submitted jobs and unfinished tasks,
// whether queued, running or suspended. A queued wake of a started task is
// not counted twice.
func (e *LocalExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.tasks)
	for _, j := range e.queue {
		if j.task == nil || !j.task.started {
			n++
		}
	}
	return n
}

func (e *LocalExecutor) pop() (job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return job{}, false
	}
	j := e.queue[0]
	e.queue[0] = job{}
	e.queue = e.queue[1:]
	return j, true
}

// RunUntilIdle runs queued work on the calling goroutine until the queue is
// empty and returns how many jobs ran. Tasks still sleeping stay parked. The
// caller must own the logical thread.
func (e *LocalExecutor) RunUntilIdle() int {
	e.thread.Assert("LocalExecutor.RunUntilIdle")
	n := 0
	for {
		j, ok := e.pop()
		if !ok {
			return n
		}
		if e.runJob(j) {
			n++
		}
	}
}

// Run makes the calling goroutine the owner of the logical thread and
// drives the executor until ctx is done.
func (e *LocalExecutor) Run(ctx context.Context) error {
	e.thread.Bind()
	for {
		e.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.signal:
		}
	}
}

func (e *LocalExecutor) runJob(j job) bool {
	if j.task == nil {
		j.fn()
		return true
	}

	t := j.task
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	first := !t.started
	if first {
		t.started = true
		e.tasks[t.id] = t
	} else {
		if !t.suspended || t.epoch != j.epoch {
			// stale wake from a timer or context that lost the race
			e.mu.Unlock()
			return false
		}
		t.suspended = false
	}
	e.mu.Unlock()

	if first {
		go t.run()
	}
	e.switchTo(t)
	return true
}

// switchTo hands the logical thread to t and blocks until t gives it back.
func (e *LocalExecutor) switchTo(t *task) {
	owner := e.thread.Owner()
	t.resume <- struct{}{}
	<-t.yield
	e.thread.Handoff(owner)

	e.mu.Lock()
	if t.finished {
		delete(e.tasks, t.id)
	}
	e.mu.Unlock()

	if t.panicVal != nil {
		p := t.panicVal
		t.panicVal = nil
		panic(p)
	}
}

func (t *task) run() {
	e := t.exec
	<-t.resume
	e.thread.Bind()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Task panicked", "task_id", t.id, "panic", r)
			t.panicVal = r
		}
		t.cancel()
		e.mu.Lock()
		t.finished = true
		e.mu.Unlock()
		t.yield <- struct{}{}
	}()
	t.fn(t.ctx)
}

// beginSuspend marks t as parked and returns the epoch a wake must carry.
func (e *LocalExecutor) beginSuspend(t *task) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t.epoch++
	t.suspended = true
	return t.epoch
}

// wake queues the resumption of t if it is still parked at epoch. It may be
// called from any goroutine, and any number of times per suspension.
func (e *LocalExecutor) wake(t *task, epoch uint64) {
	e.mu.Lock()
	if e.closed || !t.suspended || t.epoch != epoch || t.wakeQueued == epoch {
		e.mu.Unlock()
		return
	}
	t.wakeQueued = epoch
	e.queue = append(e.queue, job{task: t, epoch: epoch})
	e.mu.Unlock()
	e.notify()
}

// park gives the logical thread back to the driver and waits to be resumed.
func (t *task) park() {
	t.yield <- struct{}{}
	<-t.resume
	t.exec.thread.Bind()
}

// Sleep suspends the calling task until d has elapsed on the executor's
// clock or ctx is done. It panics with ErrNotInTask when ctx does not belong
// to a task of this executor. A non-positive d yields to the rest of the
// queue.
func (e *LocalExecutor) Sleep(ctx context.Context, d time.Duration) error {
	t := taskFrom(ctx)
	if t == nil || t.exec != e {
		panic(ErrNotInTask)
	}
	if e.isClosed() {
		return ErrDropped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	epoch := e.beginSuspend(t)
	stopTimer := func() bool { return false }
	if d <= 0 {
		e.wake(t, epoch)
	} else {
		stopTimer = e.clock.AfterFunc(d, func() { e.wake(t, epoch) })
	}
	stopWatch := context.AfterFunc(ctx, func() { e.wake(t, epoch) })

	t.park()
	stopTimer()
	stopWatch()

	if t.dropped {
		return ErrDropped
	}
	return ctx.Err()
}

// Await runs fn while the calling task has released the logical thread, so
// blocking work (a channel round trip, file I/O) does not stall the app.
// fn must not touch app state. Outside a task Await simply calls fn.
func Await[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	t := taskFrom(ctx)
	if t == nil {
		return fn(ctx)
	}
	e := t.exec
	if e.isClosed() {
		return zero, ErrDropped
	}

	epoch := e.beginSuspend(t)
	t.yield <- struct{}{}
	v, panicVal, err := callRecovering(ctx, fn)
	e.wake(t, epoch)
	<-t.resume
	e.thread.Bind()

	// Re-panic on the thread; switchTo carries it to the driver.
	if panicVal != nil {
		panic(panicVal)
	}
	if t.dropped {
		return zero, ErrDropped
	}
	return v, err
}

func callRecovering[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (v T, panicVal any, err error) {
	defer func() {
		panicVal = recover()
	}()
	v, err = fn(ctx)
	return v, nil, err
}

// Close drops every queued job and unwinds parked tasks: each is resumed
// once, in spawn order, with its context cancelled so Sleep and Await return
// ErrDropped. Tasks must not assume they run to completion across Close.
func (e *LocalExecutor) Close() {
	e.thread.Assert("LocalExecutor.Close")

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	queued := e.queue
	e.queue = nil
	var parked []*task
	for _, t := range e.tasks {
		if t.suspended {
			t.suspended = false
			parked = append(parked, t)
		}
	}
	e.mu.Unlock()

	for _, j := range queued {
		if j.task != nil && !j.task.started {
			j.task.cancel()
		}
	}

	slices.SortFunc(parked, func(a, b *task) int {
		return cmp.Compare(a.id, b.id)
	})
	for _, t := range parked {
		t.dropped = true
		t.cancel()
		e.switchTo(t)
	}

	e.logger.Debug("Executor closed", "dropped_jobs", len(queued), "unwound_tasks", len(parked))
}
