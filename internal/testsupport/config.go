package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"disclabel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Discogs.Token = "test"
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.OutputDir = filepath.Join(base, "labels")
	cfgVal.Paths.CSVPath = filepath.Join(base, "data", "discs.csv")
	cfgVal.Paths.CredentialsPath = filepath.Join(base, "config", "credentials.toml")
	cfgVal.Cache.Path = filepath.Join(base, "cache", "discid_cache.json")
	cfgVal.Retry.BaseDelayMS = 1
	cfgVal.Retry.JitterMS = 0
	cfgVal.Drives.SettleDelayMS = 1
	cfgVal.Drives.PollIntervalMS = 5
	cfgVal.Drives.ErrorBackoffMS = 1
	cfgVal.MusicBrainz.RateLimitMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithDiscogsToken sets the Discogs token on the test config.
func WithDiscogsToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discogs.Token = token
	}
}

// WithDrives overrides the configured drive list.
func WithDrives(devices ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drives.Devices = devices
	}
}

// WithOutputMode sets the watcher output mode.
func WithOutputMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Mode = mode
	}
}

// WithServiceURLs points all metadata adapters at a single test server.
func WithServiceURLs(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.BaseURL = baseURL
		b.cfg.Discogs.BaseURL = baseURL
		b.cfg.TMDB.BaseURL = baseURL
	}
}

// WithCache enables the disc id cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, eject and lp are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"eject", "lp"}
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
	}
}

// StubBinaries writes succeeding stub executables into dir and prepends dir
// to PATH for the duration of the test.
func StubBinaries(t testing.TB, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		StubScript(t, dir, name, "exit 0")
	}
	prependPath(t, dir)
}

// StubScript writes a shell script named name into dir with the given body.
// The script appends its arguments to <dir>/<name>.args before running body.
func StubScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	argsFile := filepath.Join(dir, name+".args")
	script := "#!/bin/sh\necho \"$@\" >> \"" + argsFile + "\"\n" + body + "\n"
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return argsFile
}

// PrependPath puts dir in front of PATH for the duration of the test.
func PrependPath(t testing.TB, dir string) {
	t.Helper()
	prependPath(t, dir)
}

func prependPath(t testing.TB, dir string) {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
