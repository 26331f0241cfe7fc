package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"disclabel/internal/discidcache"
	"disclabel/internal/textutil"
)

const cacheDisabledMessage = "Disc id cache is disabled (set enabled = true under [cache] in config.toml)"

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the disc id cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached discs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			entries := cache.List()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
				return nil
			}
			now := time.Now()
			rows := make([][]string, 0, len(entries))
			for i, entry := range entries {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					entry.Record.Primary,
					entry.Record.Secondary,
					valueOrDash(entry.Record.Year),
					string(entry.Record.Source),
					entry.Age(now),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), textutil.RenderTable(
				[]string{"#", "Artist", "Album", "Year", "Source", "Cached"},
				rows,
				[]textutil.Align{textutil.AlignRight},
			))
			return nil
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove one entry by its number in `cache list`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("entry number must be an integer, got %q", args[0])
			}
			cache, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			entry, err := cache.RemoveAt(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s - %s (%s)\n", entry.Record.Primary, entry.Record.Secondary, entry.Fingerprint)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached disc",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCache(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached disc(s)\n", count)
			return nil
		},
	}
}

func openCache(ctx *commandContext) (*discidcache.Cache, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, cacheDisabledMessage, nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, "", err
	}
	return discidcache.NewCache(cfg.Cache.Path, logger), "", nil
}
