package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/warden/internal/bulk"
)

const eventBuffer = 64

// RunBulkCmd runs a batch in the background and streams its progress.
// Uses a continuation pattern: every message read re-arms waitForBulk.
func RunBulkCmd(engine *bulk.Engine, op bulk.Operation, ids []string, events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		observer := NewChannelObserver(events)

		go func() {
			defer close(events)
			outcome, err := engine.Run(context.Background(), op, ids, bulk.Hooks{
				OnProgress: observer.OnProgress,
				OnSuccess:  observer.OnSuccess,
			})
			observer.Done(outcome, err)
		}()

		return readBulk(events)
	}
}

// waitForBulk returns a command that reads the next batch event
func waitForBulk(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return readBulk(events)
	}
}

func readBulk(events <-chan tea.Msg) tea.Msg {
	msg, ok := <-events
	if !ok {
		// Done is always sent before close; a bare close means nothing more to read
		return nil
	}
	return msg
}
