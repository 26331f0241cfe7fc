package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"disclabel/internal/catalog"
	"disclabel/internal/config"
	"disclabel/internal/label"
	"disclabel/internal/services"
)

const (
	labelSizeLarge = "large"
	labelSizeSmall = "small"
)

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var size string
	var outDir string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Render labels for every disc in the CSV catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			size = strings.ToLower(strings.TrimSpace(size))
			if size != labelSizeLarge && size != labelSizeSmall {
				return services.Wrap(services.ErrValidation, "labels", "size",
					fmt.Sprintf("size must be %s or %s, got %q", labelSizeLarge, labelSizeSmall, size), nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			source, err := resolveFlagPath(csvPath, cfg.Paths.CSVPath)
			if err != nil {
				return err
			}
			target, err := resolveFlagPath(outDir, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			rows, err := catalog.ReadAll(source)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No catalog rows in %s\n", source)
				return nil
			}

			service, err := label.NewService(cfg, label.WithLogger(logger), label.WithPrinting(false))
			if err != nil {
				return err
			}

			var paths []string
			if size == labelSizeLarge {
				tracks, err := newMusicBrainz(cfg, retryRunner(cfg, logger))
				if err != nil {
					return err
				}
				paths, err = service.WriteLargeBatch(cmd.Context(), rows, target, tracks)
				if err != nil {
					return err
				}
			} else {
				paths, err = service.WriteSheetBatch(rows, target)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintf(out, "Saved %s\n", path)
			}
			fmt.Fprintf(out, "Wrote %d label file(s) for %d catalog row(s)\n", len(paths), len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV catalog to read (defaults to paths.csv_path)")
	cmd.Flags().StringVar(&size, "size", labelSizeLarge, "Label size: large (one 4x6 label per disc) or small (sheets of 8)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to paths.output_dir)")
	return cmd
}

func resolveFlagPath(flagValue, fallback string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		return fallback, nil
	}
	expanded, err := config.ExpandPath(strings.TrimSpace(flagValue))
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", flagValue, err)
	}
	return expanded, nil
}
