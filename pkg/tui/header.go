package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderHeader puts the proposal title on the left and the running total on
// the right
func renderHeader(width int, title, total string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	headerPadding := lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1).
		Width(width)

	if title == "" {
		title = "Untitled proposal"
	}
	left := titleStyle.Render(title)
	right := TotalStyle.Render(total)

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(gap).Render(""),
		right,
	)

	rule := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorInactive)).
		Render(repeatStr("─", max(width-2, 0)))

	return headerPadding.Render(row + "\n" + rule)
}

func repeatStr(s string, count int) string {
	result := ""
	for i := 0; i < count; i++ {
		result += s
	}
	return result
}
