package player

import (
	"time"

	"github.com/rescp17/tunePlayer/pkg/viewstate"
)

// RootViewModelState is the snapshot pushed to the UI after every event.
// A nil section means no projector filled it in.
type RootViewModelState struct {
	Counter *VCounter
	Player  *VPlayer
	Library *VLibrary
}

type VCounter struct {
	N int
}

type VPlayer struct {
	Titles     []string
	Index      int
	Title      string
	Playing    bool
	Elapsed    time.Duration
	SleepArmed bool
	SleepLeft  time.Duration
}

type VLibrary struct {
	Dir     string
	Loading bool
	Err     string
	Count   int
}

// MergeFrom overlays the non-nil sections of other onto s.
func (s *RootViewModelState) MergeFrom(other *RootViewModelState) {
	if other.Counter != nil {
		s.Counter = other.Counter
	}
	if other.Player != nil {
		s.Player = other.Player
	}
	if other.Library != nil {
		s.Library = other.Library
	}
}

// NewPipeline returns the projector for the player app.
func NewPipeline() *viewstate.Pipeline[RootViewModelState] {
	p := viewstate.NewPipeline(func(dst, src *RootViewModelState) { dst.MergeFrom(src) })
	viewstate.Register(p, projectCounter)
	viewstate.Register(p, projectPlayer)
	viewstate.Register(p, projectLibrary)
	return p
}

func projectCounter(c *Counter, root *RootViewModelState) {
	root.Counter = &VCounter{N: c.N}
}

func projectPlayer(p *Playback, root *RootViewModelState) {
	v := &VPlayer{
		Titles:     make([]string, len(p.Tracks)),
		Index:      p.Index,
		Playing:    p.Playing,
		Elapsed:    p.Elapsed,
		SleepArmed: p.SleepAt > 0,
		SleepLeft:  p.SleepLeft,
	}
	for i, t := range p.Tracks {
		v.Titles[i] = t.Title
	}
	if t, ok := p.Current(); ok {
		v.Title = t.Title
	}
	root.Player = v
}

func projectLibrary(l *Library, root *RootViewModelState) {
	if l.Dir == "" {
		return
	}
	root.Library = &VLibrary{Dir: l.Dir, Loading: l.Loading, Err: l.Err, Count: l.Count}
}
