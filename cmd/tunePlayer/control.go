package main

import (
	"log/slog"

	"github.com/rescp17/tunePlayer/pkg/library"
)

// logControl is the player's output device. It records what would be
// played; decoding and audio output live outside this program.
type logControl struct {
	logger *slog.Logger
}

func (c *logControl) Play(t library.Track) error {
	c.logger.Info("Play", "track_id", t.ID, "title", t.Title, "path", t.Path)
	return nil
}

func (c *logControl) Pause() {
	c.logger.Info("Pause")
}

func (c *logControl) Resume() {
	c.logger.Info("Resume")
}
