package tui

import "github.com/mmcdole/warden/internal/bulk"

// BulkProgressMsg carries engine progress after each settled item
type BulkProgressMsg struct {
	Progress bulk.Progress
}

// BulkSucceededMsg is sent before BulkDoneMsg when no item failed
type BulkSucceededMsg struct{}

// BulkDoneMsg is sent once the batch reaches Complete
type BulkDoneMsg struct {
	Outcome bulk.Outcome
	Err     error
}
