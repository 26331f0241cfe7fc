package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const appDirName = "disclabel"

// Paths contains file and directory locations.
type Paths struct {
	LogDir          string `toml:"log_dir"`
	StateDir        string `toml:"state_dir"`
	OutputDir       string `toml:"output_dir"`
	CSVPath         string `toml:"csv_path"`
	CredentialsPath string `toml:"credentials_path"`
}

// MusicBrainz contains configuration for the disc metadata service.
type MusicBrainz struct {
	BaseURL     string `toml:"base_url"`
	AppName     string `toml:"app_name"`
	AppVersion  string `toml:"app_version"`
	Contact     string `toml:"contact"`
	RateLimitMS int    `toml:"rate_limit_ms"`
}

// Discogs contains configuration for the marketplace database used for genres.
type Discogs struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey      string `toml:"api_key"`
	BaseURL     string `toml:"base_url"`
	Language    string `toml:"language"`
	Region      string `toml:"region"`
	CastLimit   int    `toml:"cast_limit"`
	ResultLimit int    `toml:"result_limit"`
}

// Retry contains the backoff policy shared by every metadata adapter.
type Retry struct {
	MaxRetries            int `toml:"max_retries"`
	BaseDelayMS           int `toml:"base_delay_ms"`
	JitterMS              int `toml:"jitter_ms"`
	AttemptTimeoutSeconds int `toml:"attempt_timeout_seconds"`
}

// Drives contains optical drive polling settings.
type Drives struct {
	Devices        []string `toml:"devices"`
	PollIntervalMS int      `toml:"poll_interval_ms"`
	SettleDelayMS  int      `toml:"settle_delay_ms"`
	ErrorBackoffMS int      `toml:"error_backoff_ms"`
	Netlink        bool     `toml:"netlink"`
}

// Output selects what the watcher does with a resolved disc.
type Output struct {
	Mode       string `toml:"mode"`
	EjectAfter bool   `toml:"eject_after"`
}

// Label contains label rendering and printing settings.
type Label struct {
	Printer      string `toml:"printer"`
	Print        bool   `toml:"print"`
	KeepFiles    bool   `toml:"keep_files"`
	FontPath     string `toml:"font_path"`
	BoldFontPath string `toml:"bold_font_path"`
}

// Cache contains configuration for the disc fingerprint cache.
type Cache struct {
	Enabled bool   `toml:"enabled"` // Default: false
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Identified     bool   `toml:"identified"`
	Unresolved     bool   `toml:"unresolved"`
	LabelPrinted   bool   `toml:"label_printed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for disclabel.
//
// Configuration sections by subsystem:
//   - Paths: logs, state, label output, CSV catalog, credentials
//   - MusicBrainz / Discogs / TMDB: metadata services
//   - Retry: transient-fault backoff policy
//   - Drives: polling cadence, settle delay, netlink wake-ups
//   - Output / Label: watcher sink and printer settings
//   - Cache: fingerprint cache
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	MusicBrainz   MusicBrainz   `toml:"musicbrainz"`
	Discogs       Discogs       `toml:"discogs"`
	TMDB          TMDB          `toml:"tmdb"`
	Retry         Retry         `toml:"retry"`
	Drives        Drives        `toml:"drives"`
	Output        Output        `toml:"output"`
	Label         Label         `toml:"label"`
	Cache         Cache         `toml:"cache"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join(xdg.ConfigHome, appDirName, "config.toml"))
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(appDirName + ".toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the watcher writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.StateDir, c.Paths.OutputDir, filepath.Dir(c.Paths.CSVPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file for the watcher.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, appDirName+".lock")
}

// UserAgent returns the identifying User-Agent MusicBrainz requires.
func (m MusicBrainz) UserAgent() string {
	name := strings.TrimSpace(m.AppName)
	if name == "" {
		name = appDirName
	}
	ua := name
	if v := strings.TrimSpace(m.AppVersion); v != "" {
		ua += "/" + v
	}
	if contact := strings.TrimSpace(m.Contact); contact != "" {
		ua += " ( " + contact + " )"
	}
	return ua
}

// RateLimit returns the minimum spacing between MusicBrainz requests.
func (m MusicBrainz) RateLimit() time.Duration {
	return time.Duration(m.RateLimitMS) * time.Millisecond
}

// BaseDelay returns the first backoff delay.
func (r Retry) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// Jitter returns the exclusive upper bound of the random delay added per retry.
func (r Retry) Jitter() time.Duration {
	return time.Duration(r.JitterMS) * time.Millisecond
}

// AttemptTimeout returns the per-attempt deadline.
func (r Retry) AttemptTimeout() time.Duration {
	return time.Duration(r.AttemptTimeoutSeconds) * time.Second
}

// PollInterval returns the delay between drive polling ticks.
func (d Drives) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMS) * time.Millisecond
}

// SettleDelay returns how long to wait after a new fingerprint appears.
func (d Drives) SettleDelay() time.Duration {
	return time.Duration(d.SettleDelayMS) * time.Millisecond
}

// ErrorBackoff returns the pause after a recovered loop failure.
func (d Drives) ErrorBackoff() time.Duration {
	return time.Duration(d.ErrorBackoffMS) * time.Millisecond
}

// WritesLabels reports whether the watcher renders labels.
func (o Output) WritesLabels() bool {
	return o.Mode == OutputModeLabel || o.Mode == OutputModeBoth
}

// WritesCSV reports whether the watcher appends to the CSV catalog.
func (o Output) WritesCSV() bool {
	return o.Mode == OutputModeCSV || o.Mode == OutputModeBoth
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
