package appevents

import (
	"time"

	"github.com/rescp17/tunePlayer/pkg/library"
)

// AppEvent is a marker interface for events dispatched to the player's
// view-models. The unexported method means only types embedding Event
// satisfy it.
type AppEvent interface {
	isAppEvent()
}

// Event is embedded in every event type to satisfy AppEvent.
type Event struct{}

func (Event) isAppEvent() {}

// --- Counter ---

type Increase struct{ Event }

type Decrease struct{ Event }

// --- Library ---

// LoadLibrary asks for dir to be scanned for tracks.
type LoadLibrary struct {
	Event
	Dir string
}

// LibraryLoaded carries the result of a scan started by LoadLibrary.
type LibraryLoaded struct {
	Event
	Dir    string
	Tracks []library.Track
	Err    error
}

// --- Playback ---

type PlayTrack struct {
	Event
	Index int
}

type TogglePlay struct{ Event }

type NextTrack struct{ Event }

type PrevTrack struct{ Event }

// Tick moves the current track position forward by Elapsed.
type Tick struct {
	Event
	Elapsed time.Duration
}

// StartSleepTimer pauses playback once After has passed. A zero After
// cancels a running timer.
type StartSleepTimer struct {
	Event
	After time.Duration
}

// SleepTimerFired is emitted by the timer task. Token identifies the timer
// so a cancelled or replaced timer has no effect.
type SleepTimerFired struct {
	Event
	Token int
}

var (
	_ AppEvent = Increase{}
	_ AppEvent = Decrease{}
	_ AppEvent = LoadLibrary{}
	_ AppEvent = LibraryLoaded{}
	_ AppEvent = PlayTrack{}
	_ AppEvent = TogglePlay{}
	_ AppEvent = NextTrack{}
	_ AppEvent = PrevTrack{}
	_ AppEvent = Tick{}
	_ AppEvent = StartSleepTimer{}
	_ AppEvent = SleepTimerFired{}
)
