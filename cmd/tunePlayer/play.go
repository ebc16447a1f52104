package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/internal/backend"
	"github.com/rescp17/tunePlayer/internal/config"
	"github.com/rescp17/tunePlayer/internal/player"
	"github.com/rescp17/tunePlayer/internal/util"
	"github.com/rescp17/tunePlayer/pkg/app"
	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/channel"
	"github.com/rescp17/tunePlayer/pkg/ui"
)

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play [dir]",
		Short: "Open the player on a music directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.LibraryDir = args[0]
			}
			if err := util.RequireDir(cfg.LibraryDir); err != nil {
				return err
			}
			logs, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer closeLog(logs)

			return runPlayer(cmd.Context(), cfg)
		},
	}
}

func runPlayer(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	codec, err := channel.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}
	client := backend.NewClient(backend.NewChannel(codec, backend.NewService(logger), channel.NewMetrics(reg)))

	// The executor's thread belongs to this goroutine until Run rebinds it,
	// so the app is built here before anything else can touch it.
	exec := async.NewLocalExecutor(async.NewSystemClock(), async.WithLogger(logger))
	host := ui.NewHost()
	a := player.Build(player.Options{
		Adapter:      exec,
		Sink:         host,
		Errors:       host,
		Control:      &logControl{logger: logger},
		Toast:        host,
		Backend:      client,
		TickInterval: cfg.TickInterval,
		Logger:       logger,
		Metrics:      app.NewMetrics(reg),
	})

	submit := func(e appevents.AppEvent) {
		if !exec.Submit(func() { _ = a.Emit(e) }) {
			logger.Debug("Executor closed, dropping event", "event", fmt.Sprintf("%T", e))
		}
	}
	submit(appevents.LoadLibrary{Dir: cfg.LibraryDir})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := exec.Run(ctx)
		a.Close()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	p := tea.NewProgram(ui.NewModel(submit, cfg.SleepTimer), tea.WithContext(ctx))
	host.Attach(ctx, p)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
