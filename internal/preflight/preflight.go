package preflight

import (
	"context"
	"errors"
	"path/filepath"

	"disclabel/internal/config"
	"disclabel/internal/credentials"
	"disclabel/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg. Credentials are resolved
// through provider without prompting; a nil provider uses the config values only.
func RunAll(ctx context.Context, cfg *config.Config, provider credentials.Provider) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Output.WritesLabels() {
		results = append(results, CheckDirectoryAccess("Label directory", cfg.Paths.OutputDir))
	}
	if cfg.Output.WritesCSV() {
		results = append(results, CheckDirectoryAccess("CSV directory", filepath.Dir(cfg.Paths.CSVPath)))
	}

	results = append(results, CheckMusicBrainz(ctx, cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent()))

	token, res := resolveCredential(ctx, provider, credentials.DiscogsToken, cfg.Discogs.Token, "Discogs")
	if res != nil {
		results = append(results, *res)
	} else {
		results = append(results, CheckDiscogs(ctx, cfg.Discogs.BaseURL, token))
	}

	apiKey, res := resolveCredential(ctx, provider, credentials.TMDBAPIKey, cfg.TMDB.APIKey, "TMDB")
	if res != nil {
		results = append(results, *res)
	} else {
		results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, apiKey))
	}

	return results
}

func resolveCredential(ctx context.Context, provider credentials.Provider, cred credentials.Credential, configured, name string) (string, *Result) {
	if configured != "" {
		return configured, nil
	}
	if provider == nil {
		return "", &Result{Name: name, Detail: "missing " + cred.Label}
	}
	value, err := provider.Lookup(ctx, cred.Name)
	if err != nil {
		if errors.Is(err, services.ErrConfiguration) {
			return "", &Result{Name: name, Detail: "missing " + cred.Label + " (set " + cred.EnvVar + ")"}
		}
		return "", &Result{Name: name, Detail: err.Error()}
	}
	return value, nil
}
