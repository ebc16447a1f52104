package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/rescp17/tunePlayer/internal/config"
)

type rootFlags struct {
	configPath string
	codec      string
}

func main() {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "tunePlayer",
		Short: "A terminal music player built on a single-threaded app runtime",
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&flags.codec, "codec", "", "Channel codec: json or msgpack (overrides config)")

	cmd.AddCommand(newPlayCmd(flags))
	cmd.AddCommand(newScanCmd(flags))
	cmd.AddCommand(newConfigCmd())

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and applies command-line overrides.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.codec != "" {
		cfg.Codec = f.codec
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --codec: %w", err)
		}
	}
	return cfg, nil
}

// setupLogging points the default slog logger at the configured log file.
// The returned closer must be called on exit.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var out io.WriteCloser = nopCloser{os.Stderr}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func closeLog(c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	})
	return cmd
}
