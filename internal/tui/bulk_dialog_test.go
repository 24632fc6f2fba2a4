package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/warden/internal/bulk"
	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/log"
)

type fakeExecutor struct {
	fail map[string]error
}

func (f fakeExecutor) Execute(_ context.Context, _ bulk.Operation, id string) error {
	return f.fail[id]
}

type recordingInvalidator struct {
	mu      sync.Mutex
	regions []domain.Region
}

func (r *recordingInvalidator) Invalidate(region domain.Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = append(r.regions, region)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// firstBulkMsg runs cmd (possibly a batch) and returns the first batch event it yields
func firstBulkMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			switch m := c().(type) {
			case BulkProgressMsg, BulkSucceededMsg, BulkDoneMsg:
				return m
			}
		}
		t.Fatal("batch did not start the bulk run")
	}
	return msg
}

// drive confirms the dialog and pumps events until Complete
func drive(t *testing.T, m BulkDialog) BulkDialog {
	t.Helper()
	model, cmd := m.Update(keyPress("y"))
	m = model.(BulkDialog)
	assert.Equal(t, bulk.PhaseProcessing, m.Phase())

	msg := firstBulkMsg(t, cmd)
	for msg != nil {
		model, cmd = m.Update(msg)
		m = model.(BulkDialog)
		if _, done := msg.(BulkDoneMsg); done {
			break
		}
		msg = cmd()
	}
	return m
}

func newDialog(exec bulk.Executor, inv domain.Invalidator, op bulk.Operation, ids ...string) BulkDialog {
	engine := bulk.NewEngine(exec, inv, log.NullLogger())
	targets := make([]Target, len(ids))
	for i, id := range ids {
		targets[i] = Target{ID: id, Label: id + "@example.com"}
	}
	return NewBulkDialog(engine, op, targets)
}

func TestBulkDialog_ConfirmRunsToCompletion(t *testing.T) {
	inv := &recordingInvalidator{}
	m := newDialog(fakeExecutor{}, inv, bulk.OperationDeactivate, "a", "b", "c")
	assert.Contains(t, m.View(), "Deactivate 3 identities?")

	m = drive(t, m)
	require.Equal(t, bulk.PhaseComplete, m.Phase())
	outcome, err := m.Outcome()
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Succeeded)
	assert.Contains(t, m.View(), "3 succeeded, 0 failed")
	assert.Equal(t, []domain.Region{domain.RegionIdentities, domain.RegionIdentitiesSearch}, inv.regions)
	assert.True(t, m.SelectionCleared())
	assert.Empty(t, m.Targets())

	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBulkDialog_ShowsFailures(t *testing.T) {
	m := newDialog(fakeExecutor{fail: map[string]error{"b": errors.New("identity is locked")}},
		&recordingInvalidator{}, bulk.OperationDelete, "a", "b")
	assert.Contains(t, m.View(), "This cannot be undone.")

	m = drive(t, m)
	outcome, _ := m.Outcome()
	assert.False(t, outcome.OK())
	view := m.View()
	assert.Contains(t, view, "1 succeeded, 1 failed")
	assert.Contains(t, view, "identity is locked")
	assert.False(t, m.SelectionCleared())
	assert.Len(t, m.Targets(), 2)
}

func TestBulkDialog_CancelAtConfirm(t *testing.T) {
	inv := &recordingInvalidator{}
	m := newDialog(fakeExecutor{}, inv, bulk.OperationRevokeSessions, "a")

	model, cmd := m.Update(keyPress("esc"))
	m = model.(BulkDialog)
	assert.True(t, m.Cancelled())
	assert.False(t, m.Confirmed())
	assert.Equal(t, bulk.PhaseConfirm, m.Phase())
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, inv.regions)
}

func TestBulkDialog_IgnoresKeysWhileProcessing(t *testing.T) {
	m := newDialog(fakeExecutor{}, &recordingInvalidator{}, bulk.OperationActivate, "a")
	m.phase = bulk.PhaseProcessing

	model, cmd := m.Update(keyPress("esc"))
	assert.Nil(t, cmd)
	assert.Equal(t, bulk.PhaseProcessing, model.(BulkDialog).Phase())
}
