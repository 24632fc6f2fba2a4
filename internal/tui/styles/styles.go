package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Indigo     = lipgloss.Color("#6366F1")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Amber      = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Indigo)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Result markers
const (
	SuccessChar = "✓"
	FailureChar = "✗"
)

var (
	SuccessMark = SuccessStyle.Render(SuccessChar)
	FailureMark = ErrorStyle.Render(FailureChar)
)

// DialogStyle frames the bulk dialog
var DialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Indigo).
	Padding(1, 2)

// DestructiveDialogStyle frames dialogs for operations that cannot be undone
var DestructiveDialogStyle = DialogStyle.
	BorderForeground(Red)
