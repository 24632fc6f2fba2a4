package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/warden/internal/config"
	"github.com/mmcdole/warden/internal/upstream"
)

const loginProbeTimeout = 15 * time.Second

func (a *App) loginCmd() *cobra.Command {
	var identityURL, oauth2URL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Configure admin endpoints and tokens",
		Long: `Prompts for the identity and OAuth2 admin URLs and their bearer tokens,
checks that both services answer, then saves the configuration.
Tokens are read without echo when attached to a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(a.in)
			cfg := *a.cfg

			var err error
			if cfg.Identity.URL, err = a.promptValue(reader, "Identity admin URL", identityURL, cfg.Identity.URL); err != nil {
				return err
			}
			if cfg.OAuth2.URL, err = a.promptValue(reader, "OAuth2 admin URL", oauth2URL, cfg.OAuth2.URL); err != nil {
				return err
			}

			for _, svc := range []struct {
				name string
				url  string
			}{
				{"identity", cfg.Identity.URL},
				{"oauth2", cfg.OAuth2.URL},
			} {
				if err := a.probe(cmd.Context(), svc.name, svc.url); err != nil {
					return err
				}
			}

			if cfg.Identity.Token, err = a.promptSecret(reader, "Identity admin token (empty for none)"); err != nil {
				return err
			}
			if cfg.OAuth2.Token, err = a.promptSecret(reader, "OAuth2 admin token (empty for none)"); err != nil {
				return err
			}

			path := a.configFile
			if path == "" {
				path = config.DefaultConfigFile()
			}
			if err := config.SaveConfig(&cfg, path); err != nil {
				return err
			}
			a.cfg = &cfg
			a.success().Printf("Configuration saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&identityURL, "identity-url", "", "identity service admin URL")
	cmd.Flags().StringVar(&oauth2URL, "oauth2-url", "", "OAuth2 service admin URL")
	return cmd
}

func (a *App) probe(ctx context.Context, name, url string) error {
	ctx, cancel := context.WithTimeout(ctx, loginProbeTimeout)
	defer cancel()

	status, err := upstream.Probe(ctx, url)
	if err != nil {
		a.failure().Printf("%s service at %s: %v\n", name, url, err)
		return fmt.Errorf("%s service is not reachable: %w", name, err)
	}
	version := status.Version
	if version == "" {
		version = "unknown version"
	}
	a.success().Printf("%s service reachable (%s)\n", name, version)
	return nil
}

// promptValue returns flagValue when set, otherwise asks, keeping current on empty input
func (a *App) promptValue(reader *bufio.Reader, label, flagValue, current string) (string, error) {
	if flagValue != "" {
		return strings.TrimRight(flagValue, "/"), nil
	}
	fmt.Fprintf(a.errOut, "%s [%s]: ", label, pterm.Gray(current))
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return strings.TrimRight(input, "/"), nil
}

// promptSecret reads a token without echo on a terminal, or a plain line otherwise
func (a *App) promptSecret(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(a.errOut, "%s: ", label)
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// EOF with nothing typed means no token
		return "", nil
	}
	return strings.TrimSpace(input), nil
}
