package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmcdole/warden/internal/config"
)

func (a *App) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
	}
	cmd.AddCommand(a.cacheClearCmd())
	return cmd
}

func (a *App) cacheClearCmd() *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached identities, sessions and clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if purge {
				if err := config.ClearCache(a.cfg); err != nil {
					return err
				}
				a.success().Println("Removed the cache directory for every upstream")
				return nil
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			st.InvalidateAll()
			a.success().Println("Cache cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "delete the whole cache directory, for every upstream")
	return cmd
}
