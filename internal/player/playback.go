package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/internal/util"
	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/library"
	"github.com/rescp17/tunePlayer/pkg/models"
)

var (
	ErrNoTracks        = errors.New("no tracks loaded")
	ErrTrackOutOfRange = errors.New("track index out of range")
)

// Context is the handler context of the player app.
type Context = app.Context[appevents.AppEvent]

// PlayerVM owns the Playback model: track selection, play/pause, progress
// ticks and the sleep timer.
type PlayerVM struct {
	tick time.Duration
}

// NewPlayerVM returns a PlayerVM that reports progress every tick.
func NewPlayerVM(tick time.Duration) *PlayerVM {
	if tick <= 0 {
		tick = time.Second
	}
	return &PlayerVM{tick: tick}
}

func (vm *PlayerVM) OnEvent(cx *Context, e appevents.AppEvent) error {
	pb := app.ModelMut[Playback](cx)
	defer pb.Release()
	p := pb.Get()

	var err error
	switch e := e.(type) {
	case appevents.LibraryLoaded:
		if e.Err == nil {
			vm.load(cx, p, e.Tracks)
		}
	case appevents.PlayTrack:
		err = vm.play(cx, p, e.Index)
	case appevents.TogglePlay:
		err = vm.toggle(cx, p)
	case appevents.NextTrack:
		err = vm.step(cx, p, 1)
	case appevents.PrevTrack:
		err = vm.step(cx, p, -1)
	case appevents.Tick:
		if p.Playing {
			p.Elapsed += e.Elapsed
		}
	case appevents.StartSleepTimer:
		vm.armSleep(cx, p, e.After)
	case appevents.SleepTimerFired:
		vm.fireSleep(cx, p, e.Token)
	}

	p.SleepLeft = 0
	if p.SleepAt > 0 {
		p.SleepLeft = max(p.SleepAt-cx.Now(), 0)
	}
	return err
}

func (vm *PlayerVM) load(cx *Context, p *Playback, tracks []library.Track) {
	if p.Playing {
		PlayerControlOf(cx).Pause()
	}
	p.Tracks = tracks
	p.Index = 0
	p.Playing = false
	p.Elapsed = 0
}

func (vm *PlayerVM) play(cx *Context, p *Playback, index int) error {
	if len(p.Tracks) == 0 {
		return ErrNoTracks
	}
	if index < 0 || index >= len(p.Tracks) {
		return fmt.Errorf("%w: %d of %d", ErrTrackOutOfRange, index, len(p.Tracks))
	}
	track := p.Tracks[index]
	if err := PlayerControlOf(cx).Play(track); err != nil {
		p.Playing = false
		return fmt.Errorf("play %s: %w", track.Title, err)
	}
	p.Index = index
	p.Playing = true
	p.Elapsed = 0
	vm.startTicker(cx, p)
	return nil
}

func (vm *PlayerVM) toggle(cx *Context, p *Playback) error {
	if len(p.Tracks) == 0 {
		return ErrNoTracks
	}
	if p.Playing {
		PlayerControlOf(cx).Pause()
		p.Playing = false
		return nil
	}
	if p.Elapsed == 0 {
		return vm.play(cx, p, p.Index)
	}
	PlayerControlOf(cx).Resume()
	p.Playing = true
	vm.startTicker(cx, p)
	return nil
}

func (vm *PlayerVM) step(cx *Context, p *Playback, delta int) error {
	n := len(p.Tracks)
	if n == 0 {
		return ErrNoTracks
	}
	return vm.play(cx, p, ((p.Index+delta)%n+n)%n)
}

// startTicker spawns the progress task unless one is running. The task
// exits on the first tick that finds playback stopped.
func (vm *PlayerVM) startTicker(cx *Context, p *Playback) {
	if p.ticking {
		return
	}
	p.ticking = true
	tick := vm.tick
	cx.Spawn(func(ctx context.Context, cx *Context) {
		for {
			if err := cx.Sleep(ctx, tick); err != nil {
				return
			}
			stop := false
			models.Update(cx, func(p *Playback) {
				if !p.Playing {
					p.ticking = false
					stop = true
				}
			})
			if stop {
				return
			}
			cx.Emit(appevents.Tick{Elapsed: tick})
		}
	})
}

func (vm *PlayerVM) armSleep(cx *Context, p *Playback, after time.Duration) {
	p.sleepToken++
	if after <= 0 {
		p.SleepAt = 0
		ToastOf(cx).Show("Sleep timer cancelled")
		return
	}
	p.SleepAt = cx.Now() + after
	token := p.sleepToken
	cx.Spawn(func(ctx context.Context, cx *Context) {
		if err := cx.Sleep(ctx, after); err != nil {
			return
		}
		cx.Emit(appevents.SleepTimerFired{Token: token})
	})
	ToastOf(cx).Show(fmt.Sprintf("Sleep timer set for %s", util.FormatDuration(after)))
}

func (vm *PlayerVM) fireSleep(cx *Context, p *Playback, token int) {
	if token != p.sleepToken || p.SleepAt == 0 {
		return
	}
	p.SleepAt = 0
	if p.Playing {
		PlayerControlOf(cx).Pause()
		p.Playing = false
		ToastOf(cx).Show("Sleep timer: playback paused")
	}
}
