package player

import (
	"time"

	"github.com/rescp17/tunePlayer/pkg/library"
)

// Counter is the demo counter.
type Counter struct {
	N int
}

// Playback is the queue and transport state. Index is meaningful only
// while Tracks is non-empty.
type Playback struct {
	Tracks  []library.Track
	Index   int
	Playing bool
	Elapsed time.Duration

	// SleepAt is the adapter time the sleep timer fires at; zero when no
	// timer is armed. SleepLeft is refreshed on every player event.
	SleepAt    time.Duration
	SleepLeft  time.Duration
	sleepToken int
	ticking    bool
}

// Current returns the selected track.
func (p *Playback) Current() (library.Track, bool) {
	if len(p.Tracks) == 0 {
		return library.Track{}, false
	}
	return p.Tracks[p.Index], true
}

// Library tracks the last scan.
type Library struct {
	Dir     string
	Loading bool
	Err     string
	Count   int
}
