package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"disclabel/internal/disc"
	"disclabel/internal/identification"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
)

const driveReadyTimeout = 30 * time.Second

type lookupOutput struct {
	Device        string          `json:"device,omitempty"`
	Fingerprint   string          `json:"fingerprint,omitempty"`
	SubmissionURL string          `json:"submission_url,omitempty"`
	Record        metadata.Record `json:"record"`
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var mbid string

	cmd := &cobra.Command{
		Use:   "lookup [device]",
		Short: "Identify the disc in a drive (or a release id) and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := services.WithEventID(cmd.Context(), uuid.NewString())
			resolver, _, err := ctx.buildResolver(runCtx, resolverOptions{interactive: !jsonOut})
			if err != nil {
				return err
			}

			var result lookupOutput
			if strings.TrimSpace(mbid) != "" {
				record, err := resolver.ResolveRelease(runCtx, mbid)
				if err != nil {
					return err
				}
				result.Record = record
			} else {
				device := ""
				if len(args) == 1 {
					device = disc.NormalizeDevice(args[0])
				} else {
					drives, err := disc.Drives(runCtx, cfg.Drives.Devices)
					if err != nil {
						return err
					}
					if len(drives) == 0 {
						return services.Wrap(services.ErrNoDisc, "lookup", "drives", "no optical drives found", nil)
					}
					device = drives[0]
				}
				result, err = lookupDisc(runCtx, resolver, disc.NewReader(), device)
				if err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}
			printLookup(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON (disables prompts)")
	cmd.Flags().StringVar(&mbid, "mbid", "", "Resolve a MusicBrainz release id or URL instead of reading a disc")
	return cmd
}

func lookupDisc(ctx context.Context, resolver *identification.Resolver, reader disc.Reader, device string) (lookupOutput, error) {
	status, err := disc.WaitForReady(ctx, device, driveReadyTimeout)
	if err != nil {
		return lookupOutput{}, services.Wrap(services.ErrNoDisc, "lookup", "wait", device, err)
	}
	if status != disc.DriveStatusDiscOK {
		return lookupOutput{}, services.Wrap(services.ErrNoDisc, "lookup", "wait", fmt.Sprintf("%s reports %s", device, status), nil)
	}
	current, err := reader.ReadDisc(ctx, device)
	if err != nil {
		return lookupOutput{}, err
	}
	record, err := resolver.ResolveDisc(ctx, current.Fingerprint, identification.DriveContext{
		Device:  device,
		Tracks:  current.Tracks,
		Ejector: disc.NewEjector(),
	})
	if err != nil {
		return lookupOutput{}, err
	}
	return lookupOutput{
		Device:        device,
		Fingerprint:   current.Fingerprint,
		SubmissionURL: current.SubmissionURL(),
		Record:        record,
	}, nil
}

func printLookup(out io.Writer, result lookupOutput) {
	if result.Device != "" {
		fmt.Fprintf(out, "Drive:       %s\n", result.Device)
		fmt.Fprintf(out, "Disc ID:     %s\n", result.Fingerprint)
	}
	record := result.Record
	if !record.Resolved() {
		fmt.Fprintln(out, "Result:      unresolved")
		if result.SubmissionURL != "" {
			fmt.Fprintf(out, "Submit:      %s\n", result.SubmissionURL)
		}
		return
	}
	fmt.Fprintf(out, "Artist:      %s\n", record.Primary)
	fmt.Fprintf(out, "Album:       %s\n", record.Secondary)
	fmt.Fprintf(out, "Year:        %s\n", valueOrDash(record.Year))
	fmt.Fprintf(out, "Genre:       %s\n", valueOrDash(record.Genre))
	fmt.Fprintf(out, "MBID:        %s\n", valueOrDash(record.ExternalID))
	fmt.Fprintf(out, "Source:      %s\n", record.Source)
	for i, title := range record.Tracks {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, title)
	}
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
