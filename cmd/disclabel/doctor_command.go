package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"disclabel/internal/daemon"
	"disclabel/internal/disc"
	"disclabel/internal/preflight"
	"disclabel/internal/textutil"
)

const doctorTimeout = 30 * time.Second

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var skipNetwork bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories, credentials, services, and drives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			chain, err := ctx.credentialChain(false)
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
			defer cancel()

			out := cmd.OutOrStdout()
			failures := 0

			depRows := [][]string{}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "ok"
				if !status.Available {
					state = textutil.Ternary(status.Optional, "missing (optional)", "missing")
				}
				if !status.Satisfied() {
					failures++
				}
				depRows = append(depRows, []string{status.Name, state, status.Description})
			}
			fmt.Fprintln(out, "Binaries")
			fmt.Fprintln(out, textutil.RenderTable([]string{"Binary", "Status", "Purpose"}, depRows, nil))

			var results []preflight.Result
			if skipNetwork {
				results = []preflight.Result{
					preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
					preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				}
			} else {
				results = preflight.RunAll(checkCtx, cfg, chain)
			}

			probes, err := preflight.ProbeDrives(checkCtx, func(ctx context.Context) ([]string, error) {
				return disc.Drives(ctx, cfg.Drives.Devices)
			}, nil)
			if err != nil {
				results = append(results, preflight.Result{Name: "Drives", Detail: err.Error()})
			} else if len(probes) == 0 {
				results = append(results, preflight.Result{Name: "Drives", Detail: "no optical drives found"})
			}
			for _, probe := range probes {
				results = append(results, probe.Result())
			}

			held, err := daemon.LockHeld(cfg.LockPath())
			switch {
			case err != nil:
				results = append(results, preflight.Result{Name: "Watcher", Detail: err.Error()})
			case held:
				results = append(results, preflight.Result{Name: "Watcher", Passed: true, Detail: "running"})
			default:
				results = append(results, preflight.Result{Name: "Watcher", Passed: true, Detail: "not running"})
			}

			checkRows := make([][]string, 0, len(results))
			for _, r := range results {
				if !r.Passed {
					failures++
				}
				checkRows = append(checkRows, []string{r.Name, textutil.Ternary(r.Passed, "ok", "FAIL"), r.Detail})
			}
			fmt.Fprintln(out, "Checks")
			fmt.Fprintln(out, textutil.RenderTable([]string{"Check", "Status", "Detail"}, checkRows, nil))

			if failures > 0 {
				return fmt.Errorf("doctor found %d problem(s)", failures)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipNetwork, "offline", false, "Skip service reachability checks")
	return cmd
}
