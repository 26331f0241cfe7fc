package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Credentials are optional here:
// missing tokens are requested interactively on first use.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServices,
		c.validateRetry,
		c.validateDrives,
		c.validateOutput,
		c.validateNotifications,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServices() error {
	for name, raw := range map[string]string{
		"musicbrainz.base_url": c.MusicBrainz.BaseURL,
		"discogs.base_url":     c.Discogs.BaseURL,
		"tmdb.base_url":        c.TMDB.BaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.MusicBrainz.RateLimitMS < 0 {
		return errors.New("musicbrainz.rate_limit_ms must be zero or positive")
	}
	if c.TMDB.CastLimit <= 0 {
		return errors.New("tmdb.cast_limit must be positive")
	}
	if c.TMDB.ResultLimit <= 0 {
		return errors.New("tmdb.result_limit must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must be zero or positive")
	}
	if c.Retry.BaseDelayMS <= 0 {
		return errors.New("retry.base_delay_ms must be positive")
	}
	if c.Retry.JitterMS < 0 || c.Retry.JitterMS > 500 {
		return errors.New("retry.jitter_ms must be between 0 and 500")
	}
	if c.Retry.AttemptTimeoutSeconds <= 0 {
		return errors.New("retry.attempt_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDrives() error {
	if c.Drives.PollIntervalMS <= 0 {
		return errors.New("drives.poll_interval_ms must be positive")
	}
	if c.Drives.SettleDelayMS < 0 {
		return errors.New("drives.settle_delay_ms must be zero or positive")
	}
	if c.Drives.ErrorBackoffMS < 0 {
		return errors.New("drives.error_backoff_ms must be zero or positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Mode {
	case OutputModeLabel, OutputModeCSV, OutputModeBoth:
	default:
		return fmt.Errorf("output.mode must be one of label, csv, both; got %q", c.Output.Mode)
	}
	if c.Output.WritesLabels() && c.Label.Print && c.Label.Printer == "" {
		return errors.New("label.printer must be set when label.print is true")
	}
	if c.Output.WritesCSV() && c.Paths.CSVPath == "" {
		return errors.New("paths.csv_path must be set when output.mode writes csv")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
