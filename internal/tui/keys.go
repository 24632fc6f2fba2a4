package tui

import "github.com/charmbracelet/bubbles/key"

// BulkKeyMap defines key bindings for the bulk dialog
type BulkKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
	Close   key.Binding
}

// DefaultBulkKeyMap returns the default bulk dialog key bindings
func DefaultBulkKeyMap() BulkKeyMap {
	return BulkKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc", "q", "ctrl+c"),
			key.WithHelp("n/esc", "cancel"),
		),
		Close: key.NewBinding(
			key.WithKeys("enter", "esc", "q", "ctrl+c"),
			key.WithHelp("enter", "close"),
		),
	}
}

// scrollHelp documents the viewport's own bindings
var scrollHelp = key.NewBinding(
	key.WithKeys("up", "down"),
	key.WithHelp("↑/↓", "scroll"),
)
