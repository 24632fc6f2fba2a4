package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func (a *App) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage OAuth2 clients",
	}
	cmd.AddCommand(a.clientsListCmd(), a.clientsDeleteCmd())
	return cmd
}

func (a *App) clientsListCmd() *cobra.Command {
	var (
		format  string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List OAuth2 clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, err := a.oauth2Service()
			if err != nil {
				return err
			}

			onProgress, done := a.progress("clients")
			load := svc.LoadClients
			if refresh {
				load = svc.FetchClients
			}
			clients, summary, err := load(cmd.Context(), onProgress)
			done(summary, err)
			if err != nil {
				return err
			}
			return renderClients(a.out, format, clients)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local cache")
	return cmd
}

func (a *App) clientsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete an OAuth2 client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]
			if !yes {
				if !a.isTerminal() {
					return fmt.Errorf("refusing to delete client %s without --yes", clientID)
				}
				ok, err := pterm.DefaultInteractiveConfirm.
					WithDefaultText(fmt.Sprintf("Delete OAuth2 client %s? This cannot be undone.", clientID)).
					Show()
				if err != nil {
					return err
				}
				if !ok {
					a.info().Println("Cancelled; nothing was changed.")
					return nil
				}
			}

			svc, err := a.oauth2Service()
			if err != nil {
				return err
			}
			if err := svc.DeleteClient(cmd.Context(), clientID); err != nil {
				return err
			}
			a.success().Printf("Deleted client %s\n", clientID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
