// Package app is the in-process application runtime: an MVVM coordinator
// that owns typed models, routes events to registered view-models, runs
// cooperative async work on one logical thread and lends the host's
// capabilities to handlers.
//
// A host builds an App once, then feeds it events with Emit. Each Emit fans
// the event out to every view-model in registration order, then runs the
// projector so the host receives one view-state snapshot per event. Events
// emitted from inside a handler are queued on the async adapter and
// dispatched after the current one, never recursively.
//
// Every App operation must happen on the App's logical thread; calls from
// other goroutines panic. Hosts marshal onto the thread through their async
// adapter, for example async.LocalExecutor.Submit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/concurrency"
	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/orderedmap"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// runtime is the event-type independent part of an App.
type runtime struct {
	thread    *concurrency.Thread
	store     *models.Store
	hosts     *tohost.Registry
	vms       *orderedmap.Map[reflect.Type, any]
	adapter   async.Adapter
	projector Projector
	logger    *slog.Logger
	metrics   *Metrics
	state     DispatchState
}

func (r *runtime) spawn(task async.Task) async.TaskID {
	r.metrics.taskSpawned()
	return r.adapter.SpawnLocal(task)
}

type vmEntry[E any] struct {
	name string
	vm   ViewModel[E]
}

// App is the runtime container for one event type E.
type App[E any] struct {
	rt  *runtime
	vms []vmEntry[E]
}

func (a *App[E]) core() *runtime {
	return a.rt
}

// ModelStore returns the model store after checking thread affinity.
func (a *App[E]) ModelStore() *models.Store {
	a.rt.thread.Assert("App model access")
	return a.rt.store
}

// ToHosts returns the capability registry after checking thread affinity.
func (a *App[E]) ToHosts() *tohost.Registry {
	a.rt.thread.Assert("App to-host access")
	return a.rt.hosts
}

// Thread returns the logical thread the App is pinned to.
func (a *App[E]) Thread() *concurrency.Thread {
	return a.rt.thread
}

// State reports where the dispatcher is in the current event.
func (a *App[E]) State() DispatchState {
	a.rt.thread.Assert("App.State")
	return a.rt.state
}

// Emit dispatches e to every view-model in registration order and then
// projects a snapshot. View-model errors do not stop the fan-out; each is
// sent to the ErrorSink and Emit returns them joined.
//
// Called while an event is already being dispatched, Emit queues e on the
// async adapter and returns nil.
func (a *App[E]) Emit(e E) error {
	rt := a.rt
	rt.thread.Assert("App.Emit")

	if rt.state != StateIdle {
		a.enqueue(e)
		return nil
	}

	start := time.Now()
	rt.state = StateDispatching
	defer func() { rt.state = StateIdle }()

	rt.logger.Debug("Dispatching event", "event", fmt.Sprintf("%T", e), "view_models", len(a.vms))

	cx := &Context[E]{app: a}
	var errs []error
	for _, entry := range a.vms {
		if err := entry.vm.OnEvent(cx, e); err != nil {
			err = fmt.Errorf("view-model %s: %w", entry.name, err)
			rt.metrics.viewModelError(entry.name)
			a.reportError(err)
			errs = append(errs, err)
		}
	}

	rt.state = StateProjecting
	if rt.projector != nil {
		rt.projector.Project(a)
	}
	rt.metrics.observeDispatch(start, rt.projector != nil)

	return errors.Join(errs...)
}

func (a *App[E]) enqueue(e E) {
	a.rt.spawn(func(ctx context.Context) {
		// errors were already delivered to the sink by the nested Emit
		_ = a.Emit(e)
	})
}

func (a *App[E]) reportError(err error) {
	if sink, ok := tohost.Lookup[ErrorSink](a.rt.hosts); ok {
		sink.HandleError(err)
		return
	}
	a.rt.logger.Error("View-model failed", "error", err)
}

// Close tears the app down. If the async adapter can be closed it is, which
// drops every pending task. The app must not be used afterwards.
func (a *App[E]) Close() {
	a.rt.thread.Assert("App.Close")
	if c, ok := a.rt.adapter.(interface{ Close() }); ok {
		c.Close()
	}
	a.rt.logger.Debug("App closed")
}
