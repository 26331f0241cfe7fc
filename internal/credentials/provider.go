package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"disclabel/internal/logging"
	"disclabel/internal/services"
)

// Credential describes one secret the adapters need.
type Credential struct {
	Name    string
	EnvVar  string
	Label   string
	HelpURL string
}

var (
	DiscogsToken = Credential{
		Name:    "discogs_token",
		EnvVar:  "DISCOGS_TOKEN",
		Label:   "Discogs user token",
		HelpURL: "https://www.discogs.com/settings/developers",
	}
	TMDBAPIKey = Credential{
		Name:    "tmdb_api_key",
		EnvVar:  "TMDB_API_KEY",
		Label:   "TMDB API key",
		HelpURL: "https://www.themoviedb.org/settings/api",
	}
)

// Known lists every credential the application uses.
func Known() []Credential {
	return []Credential{DiscogsToken, TMDBAPIKey}
}

// Find returns the known credential named name.
func Find(name string) (Credential, bool) {
	for _, c := range Known() {
		if c.Name == strings.TrimSpace(name) {
			return c, true
		}
	}
	return Credential{}, false
}

// Provider resolves credential values by name.
type Provider interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// Prompter asks the operator for a missing value.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Println(line string)
}

// Chain resolves credentials from configured values, the environment, the
// store, and finally an interactive prompt.
type Chain struct {
	configured map[string]string
	store      *Store
	prompter   Prompter
	logger     *slog.Logger
	getenv     func(string) string
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithConfigured supplies explicit values, typically from config.toml.
func WithConfigured(values map[string]string) ChainOption {
	return func(c *Chain) {
		for name, value := range values {
			c.configured[name] = strings.TrimSpace(value)
		}
	}
}

// WithPrompter enables the interactive fallback.
func WithPrompter(prompter Prompter) ChainOption {
	return func(c *Chain) {
		c.prompter = prompter
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithGetenv replaces os.Getenv (tests).
func WithGetenv(getenv func(string) string) ChainOption {
	return func(c *Chain) {
		if getenv != nil {
			c.getenv = getenv
		}
	}
}

// NewChain builds a Chain over store.
func NewChain(store *Store, opts ...ChainOption) *Chain {
	c := &Chain{
		configured: make(map[string]string),
		store:      store,
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "credentials")
	return c
}

var _ Provider = (*Chain)(nil)

// Lookup returns the value for name. A missing value in a non-interactive
// session yields services.ErrConfiguration.
func (c *Chain) Lookup(ctx context.Context, name string) (string, error) {
	cred, ok := Find(name)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "credentials", "lookup", fmt.Sprintf("unknown credential %q", name), nil)
	}

	if value := c.configured[cred.Name]; value != "" {
		return value, nil
	}
	if value := strings.TrimSpace(c.getenv(cred.EnvVar)); value != "" {
		return value, nil
	}
	if c.store != nil {
		value, found, err := c.store.Get(cred.Name)
		if err != nil {
			logging.WarnWithContext(c.logger, "credential store unreadable", "credentials_store_failed",
				logging.String(logging.FieldErrorHint, "check permissions on "+c.store.Path()),
				logging.String(logging.FieldImpact, "credential must be entered again"),
				logging.Error(err),
			)
		} else if found {
			return value, nil
		}
	}
	return c.prompt(ctx, cred)
}

func (c *Chain) prompt(ctx context.Context, cred Credential) (string, error) {
	if c.prompter == nil {
		return "", services.Wrap(services.ErrConfiguration, "credentials", "lookup",
			fmt.Sprintf("%s not configured; set %s or run `disclabel credentials set %s`", cred.Label, cred.EnvVar, cred.Name), nil)
	}
	c.prompter.Println("")
	c.prompter.Println(cred.Label + " not found.")
	c.prompter.Println("You can create one at: " + cred.HelpURL)
	c.prompter.Println("")
	value, err := c.prompter.ReadLine(ctx, fmt.Sprintf("Enter your %s: ", cred.Label))
	if err != nil {
		return "", services.Wrap(services.ErrDeclined, "credentials", "prompt", cred.Label, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", services.Wrap(services.ErrDeclined, "credentials", "prompt", cred.Label+" left blank", nil)
	}
	if c.store != nil {
		if err := c.store.Set(cred.Name, value); err != nil {
			logging.WarnWithContext(c.logger, "failed to persist credential", "credentials_store_failed",
				logging.String("credential", cred.Name),
				logging.String(logging.FieldImpact, "credential will be requested again next run"),
				logging.Error(err),
			)
		} else {
			c.prompter.Println("Saved " + cred.Label + " to " + c.store.Path())
		}
	}
	return value, nil
}
