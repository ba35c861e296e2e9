package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/document"
	"github.com/pluqqy/proposal-cli/pkg/editable"
	"github.com/pluqqy/proposal-cli/pkg/formula"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
)

// body accumulates rendered lines and the control each belongs to
type body struct {
	lines []string
	rows  []string
}

func (b *body) add(text, id string) {
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, line)
		b.rows = append(b.rows, id)
	}
}

func (b *body) blank() { b.add("", "") }

// refresh re-renders the scrolling body and keeps the focused control in view
func (a *App) refresh() {
	if a.width == 0 {
		return
	}
	b := &body{}
	a.renderBody(b)
	a.rows = b.rows
	a.viewport.SetContent(strings.Join(b.lines, "\n"))

	focused := a.Focused()
	first, last := -1, -1
	for i, id := range b.rows {
		if id != focused {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return
	}
	if first < a.viewport.YOffset {
		a.viewport.SetYOffset(first)
	} else if last >= a.viewport.YOffset+a.viewport.Height {
		a.viewport.SetYOffset(last - a.viewport.Height + 1)
	}
}

func (a *App) renderBody(b *body) {
	var pricingIDs []string
	section := ""
	for _, id := range a.doc.ControlIDs() {
		v, _ := a.doc.View(id)
		if id == document.OverrideControl || strings.HasPrefix(v.Record, "element/") {
			pricingIDs = append(pricingIDs, id)
			continue
		}
		if s := sectionOf(v.Record); s != section {
			if section != "" {
				b.blank()
			}
			section = s
			b.add(SectionStyle.Render(s), "")
		}
		a.renderControl(b, v)
	}

	b.blank()
	a.renderPricing(b, pricingIDs)
}

func sectionOf(record string) string {
	switch autosave.KindOf(record) {
	case document.RecordClient:
		return "Client"
	case document.RecordAgreement:
		return "Service agreement"
	case "term":
		return "Terms"
	default:
		return "Proposal"
	}
}

func (a *App) renderPricing(b *body, ids []string) {
	gm := a.doc.Engine().GlobalOverride()
	heading := "Pricing"
	if gm.Enabled {
		heading += "  " + GetSyncBadgeStyle(autosave.StatusQueued).Render("override "+pricing.FormatPercent(gm.Value))
	}
	b.add(SectionStyle.Render(heading), "")

	byRecord := make(map[string][]string)
	for _, id := range ids {
		if id == document.OverrideControl {
			v, _ := a.doc.View(id)
			a.renderControl(b, v)
			continue
		}
		v, _ := a.doc.View(id)
		byRecord[v.Record] = append(byRecord[v.Record], id)
	}

	sum := a.doc.Summary()
	if len(sum.Modules) == 0 {
		b.add(PlaceholderStyle.Render("  No elements yet, press a to add one"), "")
	}
	for _, m := range sum.Modules {
		b.blank()
		b.add(HeaderStyle.Render(fmt.Sprintf("%s  %s", m.Module, pricing.FormatMoney(m.Total))), "")
		for _, rec := range a.doc.Engine().ModuleRecords(m.ModuleID) {
			record := document.ElementRecord(rec.Key())
			name, _ := a.doc.Catalog().ElementName(rec.ElementID)
			b.add(NormalStyle.Render(fmt.Sprintf("  %s  %s", name, pricing.FormatMoney(pricing.ElementTotal(rec)))), "")
			for _, id := range byRecord[record] {
				v, _ := a.doc.View(id)
				a.renderControl(b, v)
			}
			material, labor := a.doc.Lint(rec.Key())
			for _, issue := range append(material, labor...) {
				b.add(LockedStyle.Render("      "+issue.Message), "")
			}
		}
	}

	b.blank()
	b.add(TotalStyle.Render("Total  "+pricing.FormatMoney(sum.GrandTotal)), "")
}

func (a *App) renderControl(b *body, v document.View) {
	focused := v.ID == a.Focused()
	marker := "  "
	if focused {
		marker = CursorMarker
	}
	label := LabelStyle.Render(v.Label)
	if focused && !v.IsEditing {
		label = GetActiveHeaderStyle(true).Width(labelWidth).Render(v.Label)
	}

	valueWidth := max(a.width-labelWidth-8, 10)
	var value string
	switch {
	case v.IsEditing && v.Multiline:
		hint := editable.FormatKeyForHelp(v.CommitKey) + " to save • esc to cancel"
		value = NewInputRenderer(valueWidth).RenderTextArea(v.Draft, hint)
	case v.IsEditing:
		caret := len([]rune(v.Draft))
		if v.IsFormula {
			caret = v.Caret
		}
		value = NewInputRenderer(valueWidth).RenderInputField(v.Draft, caret, placeholderFor(v))
	case v.Value == "":
		value = PlaceholderStyle.Render(placeholderFor(v))
	case v.Multiline:
		value = NormalStyle.Render(wordwrap.String(v.Value, valueWidth))
	default:
		value = NormalStyle.Render(truncate.StringWithTail(v.Value, uint(valueWidth), "…"))
	}
	if strings.HasSuffix(v.ID, "."+string(pricing.FieldMarkup)) && a.doc.Engine().GlobalOverride().Enabled {
		value = LockedStyle.Render(v.Value + "  (override)")
	}

	suffix := ""
	switch {
	case v.IsSaving:
		suffix = " " + a.spinner.View()
	case v.SyncStatus == autosave.StatusFailed:
		suffix = " " + GetSyncBadgeStyle(autosave.StatusFailed).Render("!")
	}

	b.add(lipgloss.JoinHorizontal(lipgloss.Top, marker, label, value, suffix), v.ID)

	if v.IsFormula && len(v.Suggestions) > 0 {
		list := NewInputRenderer(0).RenderSuggestions(v.Suggestions, v.SuggestionCursor, formula.MaxVisibleSuggestions)
		b.add(lipgloss.NewStyle().PaddingLeft(labelWidth+2).Render(list), v.ID)
	}
	if v.Error != "" {
		b.add(ErrorStyle.Render(strings.Repeat(" ", labelWidth+2)+v.Error), v.ID)
	}
}

// CursorMarker prefixes the focused row
const CursorMarker = "▸ "

func placeholderFor(v document.View) string {
	if v.IsFormula {
		return "e.g. area * 1.1"
	}
	return "empty"
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	header := renderHeader(a.width, a.doc.Proposal().Title, pricing.FormatMoney(a.doc.Engine().GrandTotal()))

	content := a.viewport.View()
	switch {
	case a.picker.Active():
		content = a.picker.View(a.width)
	case a.confirm.Active():
		content = lipgloss.JoinVertical(lipgloss.Left, content, a.confirm.ViewWithWidth(a.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, a.footer())
}

func (a *App) footer() string {
	if msg, typ, ok := a.status.GetStatus(); ok {
		style := StatusBarStyle
		if typ == StatusTypeError {
			style = style.Background(lipgloss.Color(ColorDanger))
		}
		return style.Width(a.width).Render(msg)
	}

	sync := a.doc.Sync()
	var state string
	switch {
	case len(sync.Failed()) > 0:
		state = GetSyncBadgeStyle(autosave.StatusFailed).Render(fmt.Sprintf("%d failed", len(sync.Failed())))
	case sync.Pending() > 0:
		state = a.spinner.View() + " saving"
	default:
		state = GetSyncBadgeStyle(autosave.StatusCommitted).Render("saved")
	}

	help := fmt.Sprintf("enter edit • a add element • p parameters • o override • t term • x remove • %s retry • %s copy • q quit",
		editable.FormatShortcutForHelp(editable.Shortcuts.Retry),
		editable.FormatShortcutForHelp(editable.Shortcuts.Copy))
	if _, editing := a.doc.Active(); editing {
		help = "enter save • esc cancel • tab next"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, state, " ", DescriptionStyle.Render(help))
}
