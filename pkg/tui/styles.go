package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pluqqy/proposal-cli/pkg/autosave"
)

// Color constants
const (
	ColorActive   = "170" // Purple/magenta for active elements
	ColorInactive = "240" // Gray for inactive elements
	ColorSelected = "236" // Dark gray for background selection
	ColorNormal   = "245" // Light gray for normal text
	ColorDim      = "241"
	ColorVeryDim  = "242"
	ColorWarning  = "214" // Orange/yellow for warnings
	ColorDanger   = "196"
	ColorSuccess  = "28"
	ColorWhite    = "255"
	ColorDark     = "235"
	ColorPrimary  = "33"
	ColorError    = "196" // Red for errors (same as danger)
)

// Common styles
var (
	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorActive)).
			Background(lipgloss.Color(ColorSelected)).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal))

	// Section headers (Client, Terms, Pricing)
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorWarning))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorDim))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDim)).
			Width(labelWidth)

	LockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorVeryDim)).
			Italic(true)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorDim))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError))

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorVeryDim)).
				Italic(true)

	TotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorWhite))

	SuggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal)).
			PaddingLeft(1)

	SuggestionCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorWhite)).
				Background(lipgloss.Color(ColorActive)).
				PaddingLeft(1).
				PaddingRight(1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)
)

// labelWidth aligns field values in one column
const labelWidth = 26

// GetSyncBadgeStyle colors the sync indicator by record status
func GetSyncBadgeStyle(status autosave.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	switch status {
	case autosave.StatusCommitted:
		return base.
			Background(lipgloss.Color(ColorSuccess)).
			Foreground(lipgloss.Color(ColorWhite))
	case autosave.StatusQueued, autosave.StatusInFlight:
		return base.
			Background(lipgloss.Color(ColorWarning)).
			Foreground(lipgloss.Color(ColorDark))
	case autosave.StatusFailed:
		return base.
			Background(lipgloss.Color(ColorDanger)).
			Foreground(lipgloss.Color(ColorWhite))
	default:
		return lipgloss.NewStyle().Padding(0, 1)
	}
}

// GetActiveHeaderStyle highlights the header of the focused section
func GetActiveHeaderStyle(isActive bool) lipgloss.Style {
	color := ColorInactive
	if isActive {
		color = ColorActive
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color))
}
