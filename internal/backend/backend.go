// Package backend is the service side of the player's message channel:
// library scanning and a couple of diagnostic calls.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rescp17/tunePlayer/internal/util"
	"github.com/rescp17/tunePlayer/pkg/channel"
	"github.com/rescp17/tunePlayer/pkg/concurrency"
	"github.com/rescp17/tunePlayer/pkg/library"
)

// AddArgs is the argument of AddNumbers.
type AddArgs struct {
	A uint32 `json:"a" msgpack:"a"`
	B uint32 `json:"b" msgpack:"b"`
}

// PingReply is the answer to Ping.
type PingReply struct {
	Message string        `json:"message" msgpack:"message"`
	Uptime  time.Duration `json:"uptime" msgpack:"uptime"`
}

var (
	ScanLibrary = channel.NewMessage[string, []library.Track](1, "scan_library")
	Ping        = channel.NewMessage[string, PingReply](2, "ping")
	AddNumbers  = channel.NewMessage[AddArgs, uint32](7, "add_numbers")
)

// Service is the shared context every handler receives.
type Service struct {
	scanGuard *concurrency.Guard
	started   time.Time
	logger    *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		scanGuard: concurrency.NewGuard(),
		started:   time.Now(),
		logger:    logger,
	}
}

// Scan lists the tracks under dir. Only one scan runs at a time; a second
// one fails with concurrency.ErrBusy.
func (s *Service) Scan(ctx context.Context, dir string) ([]library.Track, error) {
	if err := util.RequireDir(dir); err != nil {
		return nil, err
	}
	var tracks []library.Track
	err := s.scanGuard.ExecuteWithContext(ctx, func(ctx context.Context) error {
		start := time.Now()
		found, err := library.Scan(ctx, dir)
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}
		tracks = found
		s.logger.Info("Library scanned", "dir", dir, "tracks", len(found), "duration", time.Since(start))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []library.Track{}
	}
	return tracks, nil
}

// Register installs the backend's handlers on b.
func Register(b *channel.Builder[*Service]) {
	channel.Handle(b, ScanLibrary, func(ctx context.Context, s *Service, dir string) ([]library.Track, error) {
		return s.Scan(ctx, dir)
	})
	channel.Handle(b, Ping, func(ctx context.Context, s *Service, msg string) (PingReply, error) {
		return PingReply{Message: msg, Uptime: time.Since(s.started)}, nil
	})
	channel.Handle(b, AddNumbers, func(ctx context.Context, s *Service, arg AddArgs) (uint32, error) {
		return arg.A + arg.B, nil
	})
}

// NewChannel builds the backend channel around svc.
func NewChannel(codec channel.Codec, svc *Service, metrics *channel.Metrics) *channel.Channel[*Service] {
	b := channel.NewBuilder[*Service](codec).
		WithLogger(svc.logger).
		WithMetrics(metrics)
	Register(b)
	return b.Build(svc)
}

// Client is the front-end facade over the channel.
type Client struct {
	ch *channel.Channel[*Service]
}

func NewClient(ch *channel.Channel[*Service]) *Client {
	return &Client{ch: ch}
}

func (c *Client) ScanLibrary(ctx context.Context, dir string) ([]library.Track, error) {
	return channel.Send(ctx, c.ch, ScanLibrary, dir)
}

func (c *Client) Ping(ctx context.Context, msg string) (PingReply, error) {
	return channel.Send(ctx, c.ch, Ping, msg)
}

func (c *Client) Add(ctx context.Context, a, b uint32) (uint32, error) {
	return channel.Send(ctx, c.ch, AddNumbers, AddArgs{A: a, B: b})
}
