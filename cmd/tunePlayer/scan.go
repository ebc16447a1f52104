package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rescp17/tunePlayer/internal/backend"
	"github.com/rescp17/tunePlayer/internal/util"
	"github.com/rescp17/tunePlayer/pkg/channel"
)

var scanWidths = []int{4, 40, 10, 16}

func newScanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "List the tracks in a directory through the backend channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logs, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer closeLog(logs)

			codec, err := channel.CodecByName(cfg.Codec)
			if err != nil {
				return err
			}
			client := backend.NewClient(backend.NewChannel(codec, backend.NewService(slog.Default()), nil))
			tracks, err := client.ScanLibrary(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, util.Row([]string{"#", "Title", "Size", "Type"}, scanWidths))
			for i, t := range tracks {
				fmt.Fprintln(out, util.Row([]string{
					fmt.Sprint(i + 1), t.Title, util.FormatSize(t.Size), t.Mime,
				}, scanWidths))
			}
			fmt.Fprintf(out, "%d tracks\n", len(tracks))
			return nil
		},
	}
}
