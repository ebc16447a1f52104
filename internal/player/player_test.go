package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/apptest"
	"github.com/rescp17/tunePlayer/pkg/library"
	"github.com/rescp17/tunePlayer/pkg/models"
)

type fakeControl struct {
	mu      sync.Mutex
	played  []string
	pauses  int
	resumes int
	failOn  string
}

func (f *fakeControl) Play(track library.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if track.Title == f.failOn {
		return errors.New("device unavailable")
	}
	f.played = append(f.played, track.Title)
	return nil
}

func (f *fakeControl) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeControl) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
}

type fakeBackend struct {
	tracks []library.Track
	err    error
}

func (f *fakeBackend) ScanLibrary(ctx context.Context, dir string) ([]library.Track, error) {
	return f.tracks, f.err
}

type fixture struct {
	h       *apptest.Harness
	app     *App
	sink    *apptest.RecordingSink[RootViewModelState]
	errs    *apptest.RecordingErrors
	toast   *apptest.RecordingToast
	control *fakeControl
	backend *fakeBackend
}

func threeTracks() []library.Track {
	return []library.Track{
		{ID: "1", Title: "Intro"},
		{ID: "2", Title: "Verse"},
		{ID: "3", Title: "Outro"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		h:       apptest.NewHarness(),
		sink:    apptest.NewRecordingSink[RootViewModelState](),
		errs:    apptest.NewRecordingErrors(),
		toast:   apptest.NewRecordingToast(),
		control: &fakeControl{},
		backend: &fakeBackend{tracks: threeTracks()},
	}
	f.app = Build(Options{
		Adapter:      f.h.Executor(),
		Sink:         f.sink,
		Errors:       f.errs,
		Control:      f.control,
		Toast:        f.toast,
		Backend:      f.backend,
		TickInterval: time.Second,
	})
	t.Cleanup(f.h.Close)
	return f
}

func (f *fixture) emit(t *testing.T, e appevents.AppEvent) {
	t.Helper()
	require.NoError(t, f.app.Emit(e))
}

// flushUntil drives the executor until cond holds. Await runs backend
// calls off the app thread, so their completion is not tied to one Flush.
func (f *fixture) flushUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		f.h.Flush()
		time.Sleep(time.Millisecond)
	}
}

func (f *fixture) loadLibrary(t *testing.T) {
	t.Helper()
	f.emit(t, appevents.LoadLibrary{Dir: "/music"})
	f.flushUntil(t, func() bool {
		last, ok := f.sink.Last()
		return ok && last.Library != nil && !last.Library.Loading
	})
}

func (f *fixture) last(t *testing.T) RootViewModelState {
	t.Helper()
	last, ok := f.sink.Last()
	require.True(t, ok)
	return last
}

func TestCounter(t *testing.T) {
	tests := []struct {
		name   string
		events []appevents.AppEvent
		want   int
	}{
		{name: "increase once", events: []appevents.AppEvent{appevents.Increase{}}, want: 1},
		{name: "increase twice", events: []appevents.AppEvent{appevents.Increase{}, appevents.Increase{}}, want: 2},
		{name: "increase then decrease", events: []appevents.AppEvent{appevents.Increase{}, appevents.Decrease{}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, e := range tt.events {
				f.emit(t, e)
			}
			assert.Equal(t, tt.want, models.Get[Counter](f.app).N)
			assert.Equal(t, len(tt.events), f.sink.Len())
			assert.Equal(t, &VCounter{N: tt.want}, f.last(t).Counter)
		})
	}
}

func TestSnapshotAfterIncrease(t *testing.T) {
	f := newFixture(t)
	f.emit(t, appevents.Increase{})

	require.Equal(t, 1, f.sink.Len())
	root := f.last(t)
	assert.Equal(t, &VCounter{N: 1}, root.Counter)
	assert.Nil(t, root.Library, "library section stays empty until a scan starts")
	require.NotNil(t, root.Player)
	assert.Empty(t, root.Player.Titles)
}

func TestLoadLibrary(t *testing.T) {
	f := newFixture(t)

	f.emit(t, appevents.LoadLibrary{Dir: "/music"})
	root := f.last(t)
	require.NotNil(t, root.Library)
	assert.True(t, root.Library.Loading)

	f.flushUntil(t, func() bool { return !f.last(t).Library.Loading })
	root = f.last(t)
	assert.Equal(t, 3, root.Library.Count)
	assert.Equal(t, []string{"Intro", "Verse", "Outro"}, root.Player.Titles)
	assert.Equal(t, "Intro", root.Player.Title)
	assert.Equal(t, []string{"Loaded 3 tracks from /music"}, f.toast.Messages())
}

func TestLoadLibrary_BackendError(t *testing.T) {
	f := newFixture(t)
	f.backend.err = errors.New("permission denied")

	f.loadLibrary(t)
	root := f.last(t)
	assert.Equal(t, "permission denied", root.Library.Err)
	assert.Empty(t, root.Player.Titles)

	require.Len(t, f.errs.Errors(), 1)
	assert.Contains(t, f.errs.Errors()[0].Error(), "load library /music")
}

func TestLoadLibrary_RejectsSecondScanWhileLoading(t *testing.T) {
	f := newFixture(t)
	f.emit(t, appevents.LoadLibrary{Dir: "/music"})
	f.emit(t, appevents.LoadLibrary{Dir: "/other"})

	assert.Equal(t, []string{"A library scan is already running"}, f.toast.Messages())
	assert.Equal(t, "/music", models.Get[Library](f.app).Dir)
}

func TestPlayback_Transport(t *testing.T) {
	f := newFixture(t)
	f.loadLibrary(t)

	f.emit(t, appevents.PlayTrack{Index: 1})
	assert.True(t, f.last(t).Player.Playing)
	assert.Equal(t, "Verse", f.last(t).Player.Title)

	f.emit(t, appevents.NextTrack{})
	assert.Equal(t, "Outro", f.last(t).Player.Title)
	f.emit(t, appevents.NextTrack{})
	assert.Equal(t, "Intro", f.last(t).Player.Title, "next wraps around")
	f.emit(t, appevents.PrevTrack{})
	assert.Equal(t, "Outro", f.last(t).Player.Title, "prev wraps around")

	f.emit(t, appevents.TogglePlay{})
	assert.False(t, f.last(t).Player.Playing)
	assert.Equal(t, []string{"Verse", "Outro", "Intro", "Outro"}, f.control.played)
	assert.Equal(t, 1, f.control.pauses)
}

func TestPlayback_Errors(t *testing.T) {
	f := newFixture(t)

	err := f.app.Emit(appevents.TogglePlay{})
	assert.ErrorIs(t, err, ErrNoTracks)

	f.loadLibrary(t)
	err = f.app.Emit(appevents.PlayTrack{Index: 7})
	assert.ErrorIs(t, err, ErrTrackOutOfRange)

	f.control.failOn = "Verse"
	err = f.app.Emit(appevents.PlayTrack{Index: 1})
	assert.ErrorContains(t, err, "device unavailable")
	assert.False(t, f.last(t).Player.Playing)

	assert.Len(t, f.errs.Errors(), 3)
}

func TestPlayback_TicksWhilePlaying(t *testing.T) {
	f := newFixture(t)
	f.loadLibrary(t)

	f.emit(t, appevents.PlayTrack{Index: 0})
	f.h.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, f.last(t).Player.Elapsed)

	f.emit(t, appevents.TogglePlay{})
	f.h.Advance(5 * time.Second)
	assert.Equal(t, 3*time.Second, f.last(t).Player.Elapsed, "paused playback does not tick")

	f.emit(t, appevents.TogglePlay{})
	assert.Equal(t, 1, f.control.resumes)
	f.h.Advance(2 * time.Second)
	assert.Equal(t, 5*time.Second, f.last(t).Player.Elapsed)
}

func TestSleepTimer(t *testing.T) {
	f := newFixture(t)
	f.loadLibrary(t)
	f.emit(t, appevents.PlayTrack{Index: 0})

	f.emit(t, appevents.StartSleepTimer{After: 10 * time.Second})
	root := f.last(t)
	assert.True(t, root.Player.SleepArmed)
	assert.Equal(t, 10*time.Second, root.Player.SleepLeft)

	f.h.Advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, f.last(t).Player.SleepLeft)

	f.h.Advance(6 * time.Second)
	root = f.last(t)
	assert.False(t, root.Player.Playing)
	assert.False(t, root.Player.SleepArmed)
	assert.Contains(t, f.toast.Messages(), "Sleep timer: playback paused")
}

func TestSleepTimer_ReplacedTimerIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.loadLibrary(t)
	f.emit(t, appevents.PlayTrack{Index: 0})

	f.emit(t, appevents.StartSleepTimer{After: 5 * time.Second})
	f.emit(t, appevents.StartSleepTimer{After: 20 * time.Second})
	f.h.Advance(10 * time.Second)
	assert.True(t, f.last(t).Player.Playing, "first timer was replaced")

	f.emit(t, appevents.StartSleepTimer{})
	f.h.Advance(20 * time.Second)
	assert.True(t, f.last(t).Player.Playing, "cancelled timer does nothing")
	assert.False(t, f.last(t).Player.SleepArmed)
}

func TestViewModelsAreRegisteredByType(t *testing.T) {
	f := newFixture(t)
	assert.NotNil(t, app.VM[*PlayerVM](f.app))
	assert.Equal(t, CounterVM{}, app.VM[CounterVM](f.app))
	assert.Equal(t, LibraryVM{}, app.VM[LibraryVM](f.app))
}

func TestMergeFrom(t *testing.T) {
	a := RootViewModelState{Counter: &VCounter{N: 1}}
	b := RootViewModelState{Counter: &VCounter{N: 2}, Library: &VLibrary{Dir: "/x"}}
	c := RootViewModelState{Player: &VPlayer{Title: "t"}}

	merge := func(x, y RootViewModelState) RootViewModelState {
		x.MergeFrom(&y)
		return x
	}

	assert.Equal(t, merge(merge(a, b), c), merge(a, merge(b, c)))
	assert.Equal(t, a, merge(a, RootViewModelState{}))
	assert.Equal(t, 2, merge(a, b).Counter.N)
}
