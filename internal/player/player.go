// Package player wires the demo music player onto the app runtime: its
// models, view-models, capabilities and view-state projection.
package player

import (
	"log/slog"
	"time"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/tohost"
	"github.com/rescp17/tunePlayer/pkg/viewstate"
)

// App is the player's runtime.
type App = app.App[appevents.AppEvent]

// Options are the host pieces the player app needs.
type Options struct {
	Adapter      async.Adapter
	Sink         viewstate.Sink[RootViewModelState]
	Errors       app.ErrorSink
	Control      PlayerControl
	Toast        Toast
	Backend      Backend
	TickInterval time.Duration
	Logger       *slog.Logger
	Metrics      *app.Metrics
}

// Build assembles the player app. Errors may be nil, in which case
// view-model errors are only logged.
func Build(opts Options) *App {
	return app.NewBuilder[appevents.AppEvent]().
		WithModels(func(mb *app.ModelsBuilder) {
			app.InsertModel[Counter](mb)
			app.InsertModel[Playback](mb)
			app.InsertModel[Library](mb)
		}).
		WithToHosts(func(hb *tohost.Builder) {
			tohost.Add(hb, opts.Sink)
			tohost.Add(hb, opts.Control)
			tohost.Add(hb, opts.Toast)
			tohost.Add(hb, opts.Backend)
			if opts.Errors != nil {
				tohost.Add(hb, opts.Errors)
			}
		}).
		WithViewModels(func(vb *app.ViewModelsBuilder[appevents.AppEvent]) {
			vb.Add(CounterVM{})
			vb.Add(LibraryVM{})
			vb.Add(NewPlayerVM(opts.TickInterval))
		}).
		WithAsyncRuntime(opts.Adapter).
		WithProjector(NewPipeline()).
		WithLogger(opts.Logger).
		WithMetrics(opts.Metrics).
		Build()
}
