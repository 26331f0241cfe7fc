package main

import (
	"context"
	"errors"
	"log/slog"

	"disclabel/internal/config"
	"disclabel/internal/credentials"
	"disclabel/internal/identification"
	"disclabel/internal/identification/discogs"
	"disclabel/internal/identification/musicbrainz"
	"disclabel/internal/identification/tmdb"
	"disclabel/internal/logging"
	"disclabel/internal/retry"
	"disclabel/internal/services"
)

func retryRunner(cfg *config.Config, logger *slog.Logger) *retry.Runner {
	return retry.New(retry.Policy{
		MaxRetries:     cfg.Retry.MaxRetries,
		BaseDelay:      cfg.Retry.BaseDelay(),
		Jitter:         cfg.Retry.Jitter(),
		AttemptTimeout: cfg.Retry.AttemptTimeout(),
	}, retry.WithLogger(logger))
}

func newMusicBrainz(cfg *config.Config, runner *retry.Runner) (*musicbrainz.Client, error) {
	return musicbrainz.New(cfg.MusicBrainz.BaseURL,
		musicbrainz.WithRetryRunner(runner),
		musicbrainz.WithUserAgent(cfg.MusicBrainz.UserAgent()),
		musicbrainz.WithRateLimit(cfg.MusicBrainz.RateLimit()),
	)
}

type resolverOptions struct {
	interactive bool
	movies      bool
}

// buildResolver wires the adapters into a resolver. A missing Discogs token
// disables the secondary search instead of failing; a missing TMDB key is an
// error only when the movie flow is requested.
func (c *commandContext) buildResolver(ctx context.Context, opts resolverOptions) (*identification.Resolver, *musicbrainz.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	chain, err := c.credentialChain(opts.interactive)
	if err != nil {
		return nil, nil, err
	}
	runner := retryRunner(cfg, logger)

	mb, err := newMusicBrainz(cfg, runner)
	if err != nil {
		return nil, nil, err
	}

	var genres identification.GenreSource
	token, err := chain.Lookup(ctx, credentials.DiscogsToken.Name)
	switch {
	case err == nil:
		client, err := discogs.New(token, cfg.Discogs.BaseURL, discogs.WithRetryRunner(runner))
		if err != nil {
			return nil, nil, err
		}
		genres = client
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrDeclined):
		logging.WarnWithContext(logger, "discogs disabled", "discogs_disabled",
			logging.String(logging.FieldImpact, "no secondary search or genre backfill"),
			logging.String(logging.FieldErrorHint, "run `disclabel credentials set discogs_token`"),
			logging.Error(err),
		)
	default:
		return nil, nil, err
	}

	resolverOpts := []identification.Option{
		identification.WithLogger(logger),
		identification.WithSettleDelay(cfg.Drives.SettleDelay()),
		identification.WithMovieOptions(cfg.TMDB.Region, cfg.TMDB.CastLimit, cfg.TMDB.ResultLimit),
		identification.WithClipboard(systemClipboard{}),
	}
	if opts.interactive {
		resolverOpts = append(resolverOpts, identification.WithConsole(c.terminal()))
	}
	if opts.movies {
		apiKey, err := chain.Lookup(ctx, credentials.TMDBAPIKey.Name)
		if err != nil {
			return nil, nil, err
		}
		movies, err := tmdb.New(apiKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, tmdb.WithRetryRunner(runner))
		if err != nil {
			return nil, nil, err
		}
		resolverOpts = append(resolverOpts, identification.WithMovieSource(movies))
	}

	return identification.NewResolver(mb, genres, resolverOpts...), mb, nil
}
