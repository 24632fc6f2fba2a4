package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mmcdole/warden/internal/bulk"
	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/tui"
)

// validateIdentityIDs rejects anything that is not a UUID before any request is made
func validateIdentityIDs(ids []string) error {
	var bad []string
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			bad = append(bad, id)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid identity id(s): %s", strings.Join(bad, ", "))
	}
	return nil
}

func operationNames() string {
	names := make([]string, 0, len(bulk.Operations()))
	for _, op := range bulk.Operations() {
		names = append(names, op.String())
	}
	return strings.Join(names, "|")
}

func (a *App) bulkCmd() *cobra.Command {
	var (
		yes         bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("bulk <%s> <id>...", operationNames()),
		Short: "Apply one operation to many identities, one at a time",
		Long: `Applies an operation to each identity in turn. Every identity is attempted
even when earlier ones fail; the command exits non-zero if any failed.
A running batch cannot be interrupted.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := bulk.ParseOperation(args[0])
			if err != nil {
				return fmt.Errorf("%w (want %s)", err, operationNames())
			}
			ids := dedupe(args[1:])
			if err := validateIdentityIDs(ids); err != nil {
				return err
			}

			engine, st, err := a.bulkEngine()
			if err != nil {
				return err
			}
			targets := labelTargets(ids, st)

			if !cmd.Flags().Changed("interactive") {
				interactive = !yes && a.isTerminal()
			}
			if interactive {
				return a.runBulkDialog(engine, op, targets)
			}
			return a.runBulkPlain(cmd, engine, op, targets, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "show the full-screen dialog (default when attached to a terminal)")
	return cmd
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// labelTargets names each target from cached identities when available
func labelTargets(ids []string, st domain.Store) []tui.Target {
	names := map[string]string{}
	if cached, ok := st.GetIdentities(); ok {
		for _, ident := range cached {
			names[ident.ID] = ident.DisplayName()
		}
	}
	targets := make([]tui.Target, len(ids))
	for i, id := range ids {
		targets[i] = tui.Target{ID: id, Label: names[id]}
	}
	return targets
}

func (a *App) runBulkDialog(engine *bulk.Engine, op bulk.Operation, targets []tui.Target) error {
	dialog, err := tui.RunBulkDialog(engine, op, targets)
	if err != nil {
		return fmt.Errorf("dialog error: %w", err)
	}
	if dialog.Cancelled() {
		a.info().Println("Cancelled; nothing was changed.")
		return nil
	}
	outcome, err := dialog.Outcome()
	if err != nil {
		return err
	}
	return a.reportOutcome(outcome)
}

func (a *App) runBulkPlain(cmd *cobra.Command, engine *bulk.Engine, op bulk.Operation, targets []tui.Target, yes bool) error {
	if !yes {
		if !a.isTerminal() {
			return fmt.Errorf("refusing to %s %d identities without --yes", op, len(targets))
		}
		prompt := fmt.Sprintf("%s %d identities?", op.Label(), len(targets))
		if op.Destructive() {
			prompt += " This cannot be undone."
		}
		ok, err := pterm.DefaultInteractiveConfirm.WithDefaultText(prompt).Show()
		if err != nil {
			return err
		}
		if !ok {
			engine.Dismiss()
			a.info().Println("Cancelled; nothing was changed.")
			return nil
		}
	}

	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}

	var bar *pterm.ProgressbarPrinter
	if len(ids) > 0 && a.isTerminal() {
		bar, _ = pterm.DefaultProgressbar.
			WithTotal(len(ids)).
			WithTitle(op.Label()).
			WithWriter(a.errOut).
			Start()
	}

	outcome, err := engine.Run(cmd.Context(), op, ids, bulk.Hooks{
		OnProgress: func(p bulk.Progress) {
			if bar != nil {
				bar.Increment()
				return
			}
			if p.Last.Success {
				a.success().Printf("%s %s\n", op, p.Last.ID)
			} else {
				a.failure().Printf("%s %s: %s\n", op, p.Last.ID, p.Last.ErrorMessage)
			}
		},
	})
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}
	return a.reportOutcome(outcome)
}

func (a *App) reportOutcome(outcome bulk.Outcome) error {
	if outcome.OK() {
		a.success().Printf("%s: %s\n", outcome.Operation, outcome.Summary())
		return nil
	}

	a.warning().Printf("%s: %s\n", outcome.Operation, outcome.Summary())
	rows := pterm.TableData{{"ID", "ERROR"}}
	for _, f := range outcome.Failed {
		rows = append(rows, []string{f.ID, f.ErrorMessage})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(a.errOut).WithData(rows).Render(); err != nil {
		return err
	}
	return outcome.Err()
}
