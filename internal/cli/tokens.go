package cli

import (
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/mmcdole/warden/internal/introspect"
)

func (a *App) tokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Inspect OAuth2 tokens",
	}
	cmd.AddCommand(a.tokensIntrospectCmd())
	return cmd
}

func (a *App) tokensIntrospectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "introspect <token>...",
		Short: "Ask the authorization server about one or more tokens",
		Long: `Introspects each token and prints what the authorization server knows about it.
Tokens are shown by a truncated key; the full token is never printed or stored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, err := a.oauth2Service()
			if err != nil {
				return err
			}

			var result *multierror.Error
			for _, token := range args {
				if _, err := svc.Introspect(cmd.Context(), token); err != nil {
					a.failure().Printf("%s: %v\n", introspect.Key(token), err)
					result = multierror.Append(result, err)
				}
			}
			if err := renderTokens(a.out, format, svc.Inspected()); err != nil {
				return err
			}
			return result.ErrorOrNil()
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	return cmd
}
