package player

import (
	"context"
	"errors"
	"fmt"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/library"
)

// LibraryVM owns the Library model. Scans run in a task that releases the
// app's thread while the backend works.
type LibraryVM struct{}

func (LibraryVM) OnEvent(cx *Context, e appevents.AppEvent) error {
	switch e := e.(type) {
	case appevents.LoadLibrary:
		lib := app.ModelMut[Library](cx)
		defer lib.Release()
		l := lib.Get()
		if l.Loading {
			ToastOf(cx).Show("A library scan is already running")
			return nil
		}
		l.Dir = e.Dir
		l.Loading = true
		l.Err = ""
		scan(cx, e.Dir)

	case appevents.LibraryLoaded:
		lib := app.ModelMut[Library](cx)
		defer lib.Release()
		l := lib.Get()
		l.Loading = false
		if e.Err != nil {
			l.Err = e.Err.Error()
			return fmt.Errorf("load library %s: %w", e.Dir, e.Err)
		}
		l.Count = len(e.Tracks)
		ToastOf(cx).Show(fmt.Sprintf("Loaded %d tracks from %s", len(e.Tracks), e.Dir))
	}
	return nil
}

func scan(cx *Context, dir string) {
	backend := BackendOf(cx)
	cx.Spawn(func(ctx context.Context, cx *Context) {
		tracks, err := async.Await(ctx, func(ctx context.Context) ([]library.Track, error) {
			return backend.ScanLibrary(ctx, dir)
		})
		if errors.Is(err, async.ErrDropped) {
			return
		}
		cx.Emit(appevents.LibraryLoaded{Dir: dir, Tracks: tracks, Err: err})
	})
}
