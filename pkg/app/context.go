package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// Context is handed to every OnEvent call and to tasks spawned from one.
// It reaches models, peer view-models and capabilities through the
// package-level accessors (Model, ModelMut, VM, ToHost).
type Context[E any] struct {
	app *App[E]
}

func (cx *Context[E]) core() *runtime {
	return cx.app.rt
}

func (cx *Context[E]) ModelStore() *models.Store {
	return cx.app.ModelStore()
}

func (cx *Context[E]) ToHosts() *tohost.Registry {
	return cx.app.ToHosts()
}

// Emit queues e for dispatch after the current event and its snapshot. It
// never dispatches inline.
func (cx *Context[E]) Emit(e E) {
	cx.app.rt.thread.Assert("Context.Emit")
	cx.app.enqueue(e)
}

// Spawn runs fn as a cooperative task on the app's thread. fn receives a
// fresh Context and a ctx that is done when the task is dropped at teardown.
func (cx *Context[E]) Spawn(fn func(ctx context.Context, cx *Context[E])) async.TaskID {
	a := cx.app
	return a.rt.spawn(func(ctx context.Context) {
		fn(ctx, &Context[E]{app: a})
	})
}

// Now reports the adapter's monotonic time.
func (cx *Context[E]) Now() time.Duration {
	return cx.app.rt.adapter.Now()
}

// Sleep suspends the calling task for d. ctx must be the one passed to the
// task by Spawn. Borrows must be released before calling it.
func (cx *Context[E]) Sleep(ctx context.Context, d time.Duration) error {
	return cx.app.rt.adapter.Sleep(ctx, d)
}

// Logger returns the app's logger.
func (cx *Context[E]) Logger() *slog.Logger {
	return cx.app.rt.logger
}
