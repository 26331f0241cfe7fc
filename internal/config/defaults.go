package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	OutputModeLabel = "label"
	OutputModeCSV   = "csv"
	OutputModeBoth  = "both"

	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultDiscogsBaseURL     = "https://api.discogs.com"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBRegion         = "US"
	defaultPrinter            = "DYMO_LabelWriter_4XL"
	defaultAppVersion         = "1.0"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	dataDir := filepath.Join(xdg.DataHome, appDirName)
	stateDir := filepath.Join(xdg.StateHome, appDirName)
	return Config{
		Paths: Paths{
			LogDir:          filepath.Join(stateDir, "logs"),
			StateDir:        stateDir,
			OutputDir:       filepath.Join(dataDir, "labels"),
			CSVPath:         filepath.Join(dataDir, "discs.csv"),
			CredentialsPath: filepath.Join(xdg.ConfigHome, appDirName, "credentials.toml"),
		},
		MusicBrainz: MusicBrainz{
			BaseURL:     defaultMusicBrainzBaseURL,
			AppName:     appDirName,
			AppVersion:  defaultAppVersion,
			RateLimitMS: 1000,
		},
		Discogs: Discogs{
			BaseURL: defaultDiscogsBaseURL,
		},
		TMDB: TMDB{
			BaseURL:     defaultTMDBBaseURL,
			Language:    defaultTMDBLanguage,
			Region:      defaultTMDBRegion,
			CastLimit:   8,
			ResultLimit: 10,
		},
		Retry: Retry{
			MaxRetries:            5,
			BaseDelayMS:           1000,
			JitterMS:              500,
			AttemptTimeoutSeconds: 15,
		},
		Drives: Drives{
			PollIntervalMS: 1000,
			SettleDelayMS:  2000,
			ErrorBackoffMS: 2000,
		},
		Output: Output{
			Mode:       OutputModeLabel,
			EjectAfter: true,
		},
		Label: Label{
			Printer: defaultPrinter,
			Print:   true,
		},
		Cache: Cache{
			Enabled: false,
			Path:    filepath.Join(xdg.CacheHome, appDirName, "discid_cache.json"),
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Identified:     true,
			Unresolved:     true,
			LabelPrinted:   false,
			Errors:         true,
		},
		Logging: Logging{
			Format:        "console",
			Level:         "info",
			RetentionDays: 30,
		},
	}
}
