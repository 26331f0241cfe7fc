package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"disclabel/internal/config"
	"disclabel/internal/credentials"
	"disclabel/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	in      io.Reader
	out     io.Writer
	console *terminalConsole
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// bindIO captures the command's streams so prompts follow cmd.SetIn/SetOut.
func (c *commandContext) bindIO(cmd *cobra.Command) {
	c.in = cmd.InOrStdin()
	c.out = cmd.OutOrStdout()
	c.console = nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) terminal() *terminalConsole {
	if c.console == nil {
		c.console = newTerminalConsole(c.in, c.out)
	}
	return c.console
}

// credentialChain resolves secrets from config, environment, and the store.
// When interactive is set and stdin is a terminal, missing values are prompted.
func (c *commandContext) credentialChain(interactive bool) (*credentials.Chain, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := []credentials.ChainOption{
		credentials.WithConfigured(map[string]string{
			credentials.DiscogsToken.Name: cfg.Discogs.Token,
			credentials.TMDBAPIKey.Name:   cfg.TMDB.APIKey,
		}),
		credentials.WithLogger(logger),
	}
	if interactive && c.terminal().Interactive() {
		opts = append(opts, credentials.WithPrompter(c.terminal()))
	}
	return credentials.NewChain(credentials.NewStore(cfg.Paths.CredentialsPath), opts...), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
