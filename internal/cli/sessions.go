package cli

import (
	"time"

	"github.com/spf13/cobra"
)

const defaultSessionWindow = 7 * 24 * time.Hour

func (a *App) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect active sessions",
	}
	cmd.AddCommand(a.sessionsListCmd())
	return cmd
}

func (a *App) sessionsListCmd() *cobra.Command {
	var (
		since  time.Duration
		all    bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active sessions, newest first",
		Long: `Lists active sessions newest first. Paging stops at the first session that
authenticated before the --since window, so recent activity is cheap to scan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, _, err := a.identityService()
			if err != nil {
				return err
			}
			if all {
				since = 0
			}

			onProgress, done := a.progress("sessions")
			sessions, summary, err := svc.FetchRecentSessions(cmd.Context(), since, onProgress)
			done(summary, err)
			if err != nil {
				return err
			}
			return renderSessions(a.out, format, sessions)
		},
	}
	cmd.Flags().DurationVar(&since, "since", defaultSessionWindow, "only sessions authenticated within this window")
	cmd.Flags().BoolVar(&all, "all", false, "walk every page regardless of age")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json or yaml")
	return cmd
}
