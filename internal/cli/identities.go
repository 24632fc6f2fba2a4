package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/identity"
)

func (a *App) identitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "identities",
		Aliases: []string{"identity", "id"},
		Short:   "List, search and bulk-manage identities",
	}
	cmd.AddCommand(
		a.identitiesListCmd(),
		a.identitiesGetCmd(),
		a.identitiesSearchCmd(),
		a.identitiesSessionsCmd(),
		a.bulkCmd(),
	)
	return cmd
}

func (a *App) identitiesListCmd() *cobra.Command {
	var (
		filter  string
		format  string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, _, err := a.identityService()
			if err != nil {
				return err
			}

			onProgress, done := a.progress("identities")
			load := svc.LoadIdentities
			if refresh {
				load = svc.FetchIdentities
			}
			identities, summary, err := load(cmd.Context(), onProgress)
			done(summary, err)
			if err != nil {
				return err
			}

			return renderIdentities(a.out, format, identity.Filter(filter, identities))
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "keep identities whose name or ID fuzzily matches")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local cache")
	return cmd
}

func (a *App) identitiesGetCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if err := validateIdentityIDs(args); err != nil {
				return err
			}
			svc, _, err := a.identityService()
			if err != nil {
				return err
			}
			ident, err := svc.FetchIdentity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderIdentities(a.out, format, []*domain.Identity{ident})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	return cmd
}

func (a *App) identitiesSearchCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank identities by how well they match a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, _, err := a.identityService()
			if err != nil {
				return err
			}
			onProgress, done := a.progress("identities")
			results, err := svc.Search(cmd.Context(), strings.Join(args, " "), onProgress)
			done(domain.FetchSummary{Count: len(results), Complete: true}, err)
			if err != nil {
				return err
			}
			if len(results) == 0 && format == formatTable {
				a.info().Println("No identities match your query.")
				return nil
			}
			return renderIdentities(a.out, format, results)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	return cmd
}

func (a *App) identitiesSessionsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "sessions <id>",
		Short: "List the sessions of one identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if err := validateIdentityIDs(args); err != nil {
				return err
			}
			svc, _, err := a.identityService()
			if err != nil {
				return err
			}
			sessions, err := svc.FetchIdentitySessions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderSessions(a.out, format, sessions)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	return cmd
}
