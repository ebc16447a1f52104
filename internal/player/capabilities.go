package player

import (
	"context"

	"github.com/rescp17/tunePlayer/pkg/library"
)

//go:generate go run ../../cmd/tohostgen -t PlayerControl,Toast,Backend -o tohost_gen.go

// PlayerControl drives the audio output.
type PlayerControl interface {
	Play(track library.Track) error
	Pause()
	Resume()
}

// Toast shows short messages to the user.
type Toast interface {
	Show(message string)
}

// Backend is the front-end side of the backend message channel.
type Backend interface {
	ScanLibrary(ctx context.Context, dir string) ([]library.Track, error)
}
