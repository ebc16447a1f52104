// Command tohostgen writes XxxOf accessors for host capability interfaces.
//
// Typical use, next to the interfaces:
//
//	//go:generate go run github.com/rescp17/tunePlayer/cmd/tohostgen -t PlayerControl,Toast -o tohost_gen.go
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func main() {
	var opts Options
	var output string

	cmd := &cobra.Command{
		Use:   "tohostgen",
		Short: "Generate accessors for to-host capability interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := Generate(opts)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			return os.WriteFile(filepath.Join(opts.Dir, output), src, 0o644)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Types, "types", "t", nil, "Comma-separated capability interface names")
	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", ".", "Package directory to scan")
	cmd.Flags().StringVarP(&opts.Package, "pkg", "p", "", "Package name of the generated file (defaults to the scanned package)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name inside dir; empty or - writes to stdout")
	_ = cmd.MarkFlagRequired("types")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}
