package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"disclabel/internal/config"
	"disclabel/internal/daemon"
	"disclabel/internal/disc"
	"disclabel/internal/discidcache"
	"disclabel/internal/label"
	"disclabel/internal/notifications"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var noPrint bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the optical drives and label every inserted CD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if m := strings.ToLower(strings.TrimSpace(mode)); m != "" {
				cfg.Output.Mode = m
			}
			if noPrint {
				cfg.Label.Print = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resolver, _, err := ctx.buildResolver(runCtx, resolverOptions{interactive: true})
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)

			var labels daemon.LabelProducer
			if cfg.Output.WritesLabels() {
				service, err := label.NewService(cfg, label.WithLogger(logger))
				if err != nil {
					return err
				}
				labels = service
			}
			sink, err := daemon.NewSink(cfg, labels, notifier, daemon.WithSinkLogger(logger))
			if err != nil {
				return err
			}

			var cache *discidcache.Cache
			if cfg.Cache.Enabled {
				cache = discidcache.NewCache(cfg.Cache.Path, logger)
			}

			d, err := daemon.New(cfg, daemon.MonitorDeps{
				Reader:   disc.NewReader(),
				Resolver: resolver,
				Sink:     sink,
				Cache:    cache,
				Notifier: notifier,
			}, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching for discs (mode %s). Press Ctrl+C to stop.\n", cfg.Output.Mode)
			return d.Run(runCtx)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", fmt.Sprintf("Output mode (%s, %s, %s)", config.OutputModeLabel, config.OutputModeCSV, config.OutputModeBoth))
	cmd.Flags().BoolVar(&noPrint, "no-print", false, "Render labels without sending them to the printer")
	return cmd
}
