package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/warden/internal/bulk"
	"github.com/mmcdole/warden/internal/tui/styles"
)

const (
	dialogWidth = 60
	listHeight  = 8
)

// Target is one identity selected for a batch
type Target struct {
	ID    string
	Label string
}

func (t Target) String() string {
	if t.Label == "" || t.Label == t.ID {
		return t.ID
	}
	return fmt.Sprintf("%s (%s)", t.Label, t.ID)
}

// BulkDialog walks the operator through Confirm -> Processing -> Complete.
// Processing cannot be interrupted; keys are ignored until the batch settles.
type BulkDialog struct {
	engine  *bulk.Engine
	op      bulk.Operation
	targets []Target

	keys    BulkKeyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model
	list    viewport.Model
	events  chan tea.Msg

	phase     bulk.Phase
	progress  bulk.Progress
	outcome   bulk.Outcome
	err       error
	confirmed bool
	cancelled bool
	cleared   bool
}

// NewBulkDialog creates a dialog in the Confirm phase
func NewBulkDialog(engine *bulk.Engine, op bulk.Operation, targets []Target) BulkDialog {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.AccentStyle),
	)

	m := BulkDialog{
		engine:  engine,
		op:      op,
		targets: targets,
		keys:    DefaultBulkKeyMap(),
		help:    help.New(),
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(dialogWidth-8)),
		list:    viewport.New(dialogWidth-6, listHeight),
		phase:   bulk.PhaseConfirm,
	}
	m.list.SetContent(m.targetLines())
	return m
}

func (m BulkDialog) Init() tea.Cmd {
	return nil
}

func (m BulkDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := min(dialogWidth, msg.Width-4)
		if width > 10 {
			m.bar.Width = width - 8
			m.list.Width = width - 6
			m.help.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase != bulk.PhaseProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BulkProgressMsg:
		m.progress = msg.Progress
		return m, waitForBulk(m.events)

	case BulkSucceededMsg:
		// Nothing left to retry: drop the selection
		m.targets = nil
		m.cleared = true
		return m, waitForBulk(m.events)

	case BulkDoneMsg:
		m.phase = bulk.PhaseComplete
		m.outcome = msg.Outcome
		m.err = msg.Err
		m.list.SetContent(m.resultLines())
		m.list.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m BulkDialog) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case bulk.PhaseConfirm:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.phase = bulk.PhaseProcessing
			m.confirmed = true
			m.events = make(chan tea.Msg, eventBuffer)
			ids := make([]string, len(m.targets))
			for i, t := range m.targets {
				ids[i] = t.ID
			}
			return m, tea.Batch(m.spinner.Tick, RunBulkCmd(m.engine, m.op, ids, m.events))
		case key.Matches(msg, m.keys.Cancel):
			m.engine.Dismiss()
			m.cancelled = true
			return m, tea.Quit
		}

	case bulk.PhaseProcessing:
		return m, nil

	case bulk.PhaseComplete:
		if key.Matches(msg, m.keys.Close) {
			m.engine.Dismiss()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BulkDialog) View() string {
	var b strings.Builder

	switch m.phase {
	case bulk.PhaseConfirm:
		b.WriteString(styles.TitleStyle.Render(m.title()))
		b.WriteString("\n")
		if m.op.Destructive() {
			b.WriteString(styles.WarningStyle.Render("This cannot be undone."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.list.View())
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Confirm, m.keys.Cancel, scrollHelp}))

	case bulk.PhaseProcessing:
		total := m.progress.Total
		if total == 0 {
			total = len(m.targets)
		}
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("%s %d/%d", m.op.Label(), m.progress.Processed, total)))
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(m.progress.Percent / 100))
		b.WriteString("\n\n")
		if last := m.progress.Last; last.ID != "" {
			if last.Success {
				b.WriteString(styles.SuccessMark + " " + last.ID)
			} else {
				b.WriteString(styles.FailureMark + " " + last.ID + styles.DimStyle.Render(": "+last.ErrorMessage))
			}
		}
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("Running to completion; this batch cannot be interrupted."))

	case bulk.PhaseComplete:
		switch {
		case m.err != nil:
			b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
		case m.outcome.OK():
			b.WriteString(styles.SuccessStyle.Render(m.outcome.Summary()))
		default:
			b.WriteString(styles.ErrorStyle.Render(m.outcome.Summary()))
		}
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(m.outcome.ProgressPercent / 100))
		b.WriteString("\n\n")
		b.WriteString(m.list.View())
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Close, scrollHelp}))
	}

	frame := styles.DialogStyle
	if m.op.Destructive() {
		frame = styles.DestructiveDialogStyle
	}
	return frame.Width(dialogWidth).Render(b.String())
}

func (m BulkDialog) title() string {
	noun := "identities"
	if len(m.targets) == 1 {
		noun = "identity"
	}
	return fmt.Sprintf("%s %d %s?", m.op.Label(), len(m.targets), noun)
}

func (m BulkDialog) targetLines() string {
	lines := make([]string, len(m.targets))
	for i, t := range m.targets {
		lines[i] = "• " + t.String()
	}
	return strings.Join(lines, "\n")
}

func (m BulkDialog) resultLines() string {
	if m.err != nil {
		return ""
	}
	if m.outcome.OK() {
		return styles.SuccessMark + fmt.Sprintf(" All %d completed.", m.outcome.Total)
	}
	lines := make([]string, len(m.outcome.Failed))
	for i, f := range m.outcome.Failed {
		lines[i] = styles.FailureMark + " " + f.ID + styles.DimStyle.Render(": "+f.ErrorMessage)
	}
	return strings.Join(lines, "\n")
}

// Phase returns the dialog's current phase
func (m BulkDialog) Phase() bulk.Phase {
	return m.phase
}

// Confirmed reports whether the operator started the batch
func (m BulkDialog) Confirmed() bool {
	return m.confirmed
}

// Cancelled reports whether the operator backed out at the confirm prompt
func (m BulkDialog) Cancelled() bool {
	return m.cancelled
}

// Targets returns the identities still selected. A fully successful batch
// clears the selection; after failures it is kept for a retry.
func (m BulkDialog) Targets() []Target {
	return m.targets
}

// SelectionCleared reports whether a fully successful batch dropped the selection
func (m BulkDialog) SelectionCleared() bool {
	return m.cleared
}

// Outcome returns the finished batch, valid once Phase is Complete
func (m BulkDialog) Outcome() (bulk.Outcome, error) {
	return m.outcome, m.err
}

// RunBulkDialog shows the dialog full-screen until the operator closes it
func RunBulkDialog(engine *bulk.Engine, op bulk.Operation, targets []Target, opts ...tea.ProgramOption) (BulkDialog, error) {
	final, err := tea.NewProgram(NewBulkDialog(engine, op, targets), opts...).Run()
	if err != nil {
		return BulkDialog{}, err
	}
	return final.(BulkDialog), nil
}
