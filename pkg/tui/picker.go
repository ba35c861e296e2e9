package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerItem is one choice in a picker
type PickerItem struct {
	Label   string
	Detail  string
	Checked bool
	Value   any
}

// Picker is a modal list. Single-choice pickers close on Enter; multi-choice
// pickers toggle items with Space or Enter and close on Esc.
type Picker struct {
	Title string
	Items []PickerItem
	Multi bool

	cursor int
	active bool

	// filtering
	filter    FilterFunc
	filtering bool
	query     string
	visible   []int
	filterErr string

	onChoose func(item PickerItem) tea.Cmd
}

// FilterFunc builds a predicate for a filter query
type FilterFunc func(query string) (func(PickerItem) bool, error)

// NewPicker opens a picker over items
func NewPicker(title string, items []PickerItem, multi bool, onChoose func(PickerItem) tea.Cmd) *Picker {
	p := &Picker{
		Title:    title,
		Items:    items,
		Multi:    multi,
		active:   true,
		onChoose: onChoose,
	}
	p.applyFilter()
	return p
}

// SetFilter enables "/" filtering with fn
func (p *Picker) SetFilter(fn FilterFunc) { p.filter = fn }

// Query returns the current filter text
func (p *Picker) Query() string { return p.query }

// Visible returns the items that pass the filter
func (p *Picker) Visible() []PickerItem {
	out := make([]PickerItem, len(p.visible))
	for i, idx := range p.visible {
		out[i] = p.Items[idx]
	}
	return out
}

func (p *Picker) applyFilter() {
	p.visible = p.visible[:0]
	p.filterErr = ""
	match := func(PickerItem) bool { return true }
	if p.filter != nil && strings.TrimSpace(p.query) != "" {
		fn, err := p.filter(p.query)
		if err != nil {
			// keep the full list while the query is incomplete
			p.filterErr = err.Error()
		} else {
			match = fn
		}
	}
	for i, item := range p.Items {
		if match(item) {
			p.visible = append(p.visible, i)
		}
	}
	if p.cursor >= len(p.visible) {
		p.cursor = len(p.visible) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *Picker) updateFilter(msg tea.KeyMsg) {
	switch msg.String() {
	case "enter", "esc":
		p.filtering = false
		return
	case "backspace":
		if r := []rune(p.query); len(r) > 0 {
			p.query = string(r[:len(r)-1])
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			p.query += string(msg.Runes)
		case tea.KeySpace:
			p.query += " "
		default:
			return
		}
	}
	p.applyFilter()
}

// Active reports whether the picker is open
func (p *Picker) Active() bool { return p != nil && p.active }

// Cursor returns the highlighted index
func (p *Picker) Cursor() int { return p.cursor }

// Update handles key events for the picker
func (p *Picker) Update(msg tea.KeyMsg) tea.Cmd {
	if !p.Active() {
		return nil
	}

	if p.filtering {
		p.updateFilter(msg)
		return nil
	}

	switch msg.String() {
	case "/":
		if p.filter != nil {
			p.filtering = true
		}
	case "esc", "q":
		p.active = false
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.visible)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.visible) == 0 {
			if !p.Multi {
				p.active = false
			}
			return nil
		}
		item := &p.Items[p.visible[p.cursor]]
		if p.Multi {
			item.Checked = !item.Checked
		} else {
			p.active = false
		}
		if p.onChoose != nil {
			return p.onChoose(*item)
		}
	}
	return nil
}

// View renders the picker inside a bordered box
func (p *Picker) View(width int) string {
	if !p.Active() {
		return ""
	}

	var b strings.Builder
	b.WriteString(SectionStyle.Render(p.Title))
	b.WriteString("\n")
	if p.filtering || p.query != "" {
		input := NewInputRenderer(max(width-8, 10))
		b.WriteString("/ " + input.RenderInputField(p.query, len([]rune(p.query)), "name:, unit:, type:, cost:>n"))
		b.WriteString("\n")
		if p.filterErr != "" {
			b.WriteString(ErrorStyle.Render(p.filterErr) + "\n")
		}
	}
	b.WriteString("\n")
	if len(p.visible) == 0 {
		b.WriteString(PlaceholderStyle.Render("Nothing to choose"))
	}
	for i, idx := range p.visible {
		item := p.Items[idx]
		line := item.Label
		if p.Multi {
			box := "[ ] "
			if item.Checked {
				box = "[x] "
			}
			line = box + line
		}
		if item.Detail != "" {
			line += "  " + DescriptionStyle.Render(item.Detail)
		}
		if i == p.cursor {
			line = SelectedStyle.Render("▸ " + line)
		} else {
			line = NormalStyle.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}

	hint := "enter choose • esc close"
	if p.Multi {
		hint = "space toggle • esc close"
	}
	if p.filter != nil {
		hint += " • / filter"
	}
	b.WriteString("\n" + DescriptionStyle.Render(hint))

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorActive)).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(b.String())
}
