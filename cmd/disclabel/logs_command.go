package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"disclabel/internal/logging"
	"disclabel/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var grep []string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the watcher log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			filter := logs.Filter(grep)
			out := cmd.OutOrStdout()

			page, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			for _, line := range page.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(page.Lines) == 0 {
					fmt.Fprintf(out, "No log entries in %s\n", path)
				}
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return logs.Follow(runCtx, path, page.Offset, time.Second, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().StringArrayVar(&grep, "grep", nil, "Only show lines containing this text (repeatable)")
	return cmd
}
