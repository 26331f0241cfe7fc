package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"disclabel/internal/credentials"
	"disclabel/internal/textutil"
)

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored API credentials",
	}

	credsCmd.AddCommand(newCredentialsSetCommand(ctx))
	credsCmd.AddCommand(newCredentialsShowCommand(ctx))
	credsCmd.AddCommand(newCredentialsDeleteCommand(ctx))

	return credsCmd
}

func knownCredentialNames() string {
	names := make([]string, 0, len(credentials.Known()))
	for _, c := range credentials.Known() {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func findCredential(name string) (credentials.Credential, error) {
	cred, ok := credentials.Find(name)
	if !ok {
		return credentials.Credential{}, fmt.Errorf("unknown credential %q (known: %s)", name, knownCredentialNames())
	}
	return cred, nil
}

func newCredentialsSetCommand(ctx *commandContext) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Store a credential (prompts when --value is omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := findCredential(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			secret := strings.TrimSpace(value)
			if secret == "" {
				console := ctx.terminal()
				console.Println("You can create one at: " + cred.HelpURL)
				answer, err := console.ReadLine(cmd.Context(), fmt.Sprintf("Enter your %s: ", cred.Label))
				if err != nil {
					return fmt.Errorf("read %s: %w", cred.Label, err)
				}
				secret = strings.TrimSpace(answer)
			}
			if secret == "" {
				return errors.New(cred.Label + " left blank; nothing stored")
			}
			store := credentials.NewStore(cfg.Paths.CredentialsPath)
			if err := store.Set(cred.Name, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s) to %s\n", cred.Label, textutil.Mask(secret), store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Credential value")
	return cmd
}

func newCredentialsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show where each credential is resolved from (values masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := credentials.NewStore(cfg.Paths.CredentialsPath)
			configured := map[string]string{
				credentials.DiscogsToken.Name: cfg.Discogs.Token,
				credentials.TMDBAPIKey.Name:   cfg.TMDB.APIKey,
			}

			rows := make([][]string, 0, len(credentials.Known()))
			for _, cred := range credentials.Known() {
				source, value := "missing", ""
				switch {
				case strings.TrimSpace(configured[cred.Name]) != "":
					source, value = "config", configured[cred.Name]
				case strings.TrimSpace(os.Getenv(cred.EnvVar)) != "":
					source, value = "env "+cred.EnvVar, os.Getenv(cred.EnvVar)
				default:
					stored, found, err := store.Get(cred.Name)
					if err != nil {
						source = "store unreadable"
					} else if found {
						source, value = "store", stored
					}
				}
				rows = append(rows, []string{cred.Name, source, textutil.Ternary(value == "", "-", textutil.Mask(value))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), textutil.RenderTable([]string{"Credential", "Source", "Value"}, rows, nil))
			fmt.Fprintf(cmd.OutOrStdout(), "Store: %s\n", store.Path())
			return nil
		},
	}
}

func newCredentialsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := findCredential(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := credentials.NewStore(cfg.Paths.CredentialsPath).Delete(cred.Name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the credential store\n", cred.Label)
			return nil
		},
	}
}
