package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	c.normalizeDrives()
	c.Output.Mode = strings.ToLower(strings.TrimSpace(c.Output.Mode))
	if c.Output.Mode == "" {
		c.Output.Mode = OutputModeLabel
	}
	c.Label.Printer = strings.TrimSpace(c.Label.Printer)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.csv_path", &c.Paths.CSVPath},
		{"paths.credentials_path", &c.Paths.CredentialsPath},
		{"cache.path", &c.Cache.Path},
		{"label.font_path", &c.Label.FontPath},
		{"label.bold_font_path", &c.Label.BoldFontPath},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeServices() {
	defaults := Default()

	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaults.MusicBrainz.BaseURL
	}
	c.MusicBrainz.Contact = strings.TrimSpace(c.MusicBrainz.Contact)

	c.Discogs.BaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.BaseURL), "/")
	if c.Discogs.BaseURL == "" {
		c.Discogs.BaseURL = defaults.Discogs.BaseURL
	}
	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	if c.Discogs.Token == "" {
		if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok {
			c.Discogs.Token = strings.TrimSpace(value)
		}
	}

	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaults.TMDB.BaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaults.TMDB.Language
	}
	c.TMDB.Region = strings.ToUpper(strings.TrimSpace(c.TMDB.Region))
	if c.TMDB.Region == "" {
		c.TMDB.Region = defaults.TMDB.Region
	}
}

func (c *Config) normalizeDrives() {
	devices := make([]string, 0, len(c.Drives.Devices))
	seen := make(map[string]struct{}, len(c.Drives.Devices))
	for _, device := range c.Drives.Devices {
		device = strings.TrimSpace(device)
		if device == "" {
			continue
		}
		if _, ok := seen[device]; ok {
			continue
		}
		seen[device] = struct{}{}
		devices = append(devices, device)
	}
	c.Drives.Devices = devices
}
