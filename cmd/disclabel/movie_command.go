package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"disclabel/internal/identification"
	"disclabel/internal/label"
	"disclabel/internal/notifications"
	"disclabel/internal/services"
)

const movieTitlePrompt = "Enter movie title (Press Ctrl-C to quit): "

func newMovieCommand(ctx *commandContext) *cobra.Command {
	var title string
	var noPrint bool

	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Look up movies on TMDB and print case labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			resolver, _, err := ctx.buildResolver(cmd.Context(), resolverOptions{interactive: true, movies: true})
			if err != nil {
				return err
			}
			labels, err := label.NewService(cfg,
				label.WithLogger(logger),
				label.WithPrinting(cfg.Label.Print && !noPrint),
			)
			if err != nil {
				return err
			}
			session := &movieSession{
				resolver: resolver,
				labels:   labels,
				notifier: notifications.NewService(cfg),
				console:  ctx.terminal(),
				out:      cmd.OutOrStdout(),
			}
			if strings.TrimSpace(title) != "" {
				return session.query(cmd.Context(), title)
			}
			return session.loop(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Look up a single title instead of prompting in a loop")
	cmd.Flags().BoolVar(&noPrint, "no-print", false, "Render labels without sending them to the printer")
	return cmd
}

type movieSession struct {
	resolver *identification.Resolver
	labels   *label.Service
	notifier notifications.Service
	console  *terminalConsole
	out      io.Writer
}

// loop prompts for titles until input ends or ctx is cancelled. Per-title
// failures are reported and the prompt repeats.
func (s *movieSession) loop(ctx context.Context) error {
	for {
		title, err := s.console.ReadLine(ctx, movieTitlePrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			fmt.Fprintln(s.out, "No title entered.")
			continue
		}
		if err := s.query(ctx, title); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !errors.Is(err, services.ErrDeclined) {
				fmt.Fprintln(s.out, err)
			}
		}
	}
}

func (s *movieSession) query(ctx context.Context, title string) error {
	ctx = services.WithEventID(ctx, uuid.NewString())
	record, err := s.resolver.ResolveMovieQuery(ctx, title)
	if err != nil {
		return err
	}
	if !record.Resolved() {
		return nil
	}
	if err := s.notifier.Publish(ctx, notifications.EventMovieIdentified, notifications.Payload{
		"title": record.Primary,
		"year":  record.Year,
	}); err != nil {
		fmt.Fprintf(s.out, "Notification failed: %v\n", err)
	}

	result, err := s.labels.Produce(ctx, record)
	if err != nil {
		if result.Path != "" {
			fmt.Fprintf(s.out, "Label generated: %s\n", result.Path)
		}
		return err
	}
	fmt.Fprintf(s.out, "Label generated: %s\n", result.Path)
	if result.Printed {
		fmt.Fprintln(s.out, "Label printed.")
	} else {
		fmt.Fprintln(s.out, "Printing disabled; label kept.")
	}
	return nil
}
