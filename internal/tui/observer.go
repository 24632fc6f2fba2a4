package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/warden/internal/bulk"
)

// ChannelObserver adapts bulk engine progress hooks to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- tea.Msg
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- tea.Msg) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress sends progress to the channel (non-blocking if full).
// Dropped ticks are harmless: the next one carries the full running state.
func (o *ChannelObserver) OnProgress(progress bulk.Progress) {
	select {
	case o.ch <- BulkProgressMsg{Progress: progress}:
	default:
	}
}

// OnSuccess reports that every item succeeded. It blocks so it always
// arrives after the last progress tick and before Done.
func (o *ChannelObserver) OnSuccess() {
	o.ch <- BulkSucceededMsg{}
}

// Done delivers the final outcome. It blocks so the outcome is never dropped.
func (o *ChannelObserver) Done(outcome bulk.Outcome, err error) {
	o.ch <- BulkDoneMsg{Outcome: outcome, Err: err}
}
