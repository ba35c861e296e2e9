package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// InputRenderer draws the edit surface of a field
type InputRenderer struct {
	Width int
}

// NewInputRenderer creates a new input renderer
func NewInputRenderer(width int) *InputRenderer {
	return &InputRenderer{Width: width}
}

// RenderInputField renders single-line text with a block caret at the rune
// offset cursorPos
func (ir *InputRenderer) RenderInputField(text string, cursorPos int, placeholder string) string {
	inputFieldStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(ColorSelected)).
		Foreground(lipgloss.Color(ColorNormal)).
		Padding(0, 1)
	if ir.Width > 0 {
		inputFieldStyle = inputFieldStyle.Width(ir.Width)
	}

	cursorStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(ColorActive)).
		Foreground(lipgloss.Color(ColorWhite)).
		Bold(true)

	var content strings.Builder
	runes := []rune(text)
	if cursorPos < 0 {
		cursorPos = 0
	}
	if cursorPos > len(runes) {
		cursorPos = len(runes)
	}

	if len(runes) == 0 {
		content.WriteString(cursorStyle.Render(" "))
		if placeholder != "" {
			content.WriteString(PlaceholderStyle.Render(placeholder))
		}
		return inputFieldStyle.Render(content.String())
	}

	content.WriteString(string(runes[:cursorPos]))
	if cursorPos < len(runes) {
		content.WriteString(cursorStyle.Render(string(runes[cursorPos])))
		content.WriteString(string(runes[cursorPos+1:]))
	} else {
		content.WriteString(cursorStyle.Render(" "))
	}
	return inputFieldStyle.Render(content.String())
}

// RenderTextArea renders a multi-line draft wrapped to the renderer width
// with the caret after the last character
func (ir *InputRenderer) RenderTextArea(text, hint string) string {
	cursorStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(ColorActive))

	width := ir.Width
	if width <= 0 {
		width = 60
	}
	body := wordwrap.String(text, width-2) + cursorStyle.Render(" ")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorActive)).
		Padding(0, 1).
		Width(width).
		Render(body)
	if hint == "" {
		return box
	}
	return box + "\n" + DescriptionStyle.Render(hint)
}

// RenderSuggestions renders the completion list under a formula field
func (ir *InputRenderer) RenderSuggestions(suggestions []string, cursor, max int) string {
	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	lines := make([]string, len(suggestions))
	for i, s := range suggestions {
		if i == cursor {
			lines[i] = SuggestionCursorStyle.Render(s)
		} else {
			lines[i] = SuggestionStyle.Render(s)
		}
	}
	return strings.Join(lines, "\n")
}
