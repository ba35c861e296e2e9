// Package tui is the terminal front end of a proposal: a scrolling form of
// inline-editable fields with pricing and save status.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/document"
	"github.com/pluqqy/proposal-cli/pkg/editable"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
	"github.com/pluqqy/proposal-cli/pkg/search"
)

// headerHeight is the title row plus its rule
const headerHeight = 2

// App is the root bubbletea model
type App struct {
	doc    *document.Document
	logger *slog.Logger

	focus    int
	picker   *Picker
	confirm  *ConfirmationModel
	status   *StatusManager
	spinner  spinner.Model
	viewport viewport.Model

	// rows maps content lines to the control rendered on them
	rows []string

	width, height int
	quitting      bool

	copyToClipboard func(string) error
}

// NewApp creates the model for doc
func NewApp(doc *document.Document, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return &App{
		doc:             doc,
		logger:          logger,
		confirm:         NewConfirmation(),
		status:          NewStatusManager(),
		spinner:         s,
		viewport:        viewport.New(80, 20),
		copyToClipboard: clipboard.WriteAll,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.doc.Cmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ClearStatusMsg:
		// expiry is checked on render

	case autosave.StatusMsg:
		cmds = append(cmds, a.doc.Update(msg), a.syncSettled(msg))

	case tea.MouseMsg:
		cmds = append(cmds, a.handleMouse(msg))

	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))

	default:
		cmds = append(cmds, a.doc.Update(msg))
	}

	cmds = append(cmds, a.doc.Cmd())
	a.refresh()
	return a, tea.Batch(cmds...)
}

// SetSize resizes the scrolling body
func (a *App) SetSize(width, height int) {
	a.width = width
	a.height = height
	a.viewport.Width = width
	a.viewport.Height = max(height-headerHeight-1, 1)
	a.refresh()
}

// Focused returns the id of the focused control
func (a *App) Focused() string {
	ids := a.doc.ControlIDs()
	if len(ids) == 0 {
		return ""
	}
	a.focus = min(max(a.focus, 0), len(ids)-1)
	return ids[a.focus]
}

func (a *App) focusID(id string) {
	for i, cid := range a.doc.ControlIDs() {
		if cid == id {
			a.focus = i
			return
		}
	}
}

func (a *App) moveFocus(delta int) {
	n := len(a.doc.ControlIDs())
	if n == 0 {
		return
	}
	a.focus = min(max(a.focus+delta, 0), n-1)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == editable.Shortcuts.Quit.Get() {
		return a.quit()
	}
	if a.confirm.Active() {
		return a.confirm.Update(msg)
	}
	if a.picker.Active() {
		return a.picker.Update(msg)
	}

	if _, editing := a.doc.Active(); editing {
		return a.handleEditKey(msg)
	}
	return a.handleBrowseKey(msg)
}

func (a *App) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+s" {
		return a.flush()
	}

	handled, err := a.doc.HandleKey(msg)
	if err != nil {
		return a.showError(err)
	}
	if handled {
		return nil
	}

	switch msg.String() {
	case "tab", "shift+tab":
		if err := a.doc.CommitActive(); err != nil {
			return a.showError(err)
		}
		if msg.String() == "tab" {
			a.moveFocus(1)
		} else {
			a.moveFocus(-1)
		}
	}
	return nil
}

func (a *App) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return a.quit()
	case "up", "k", "shift+tab":
		a.moveFocus(-1)
	case "down", "j", "tab":
		a.moveFocus(1)
	case "home", "g":
		a.focus = 0
	case "end", "G":
		a.focus = len(a.doc.ControlIDs()) - 1
	case "enter", editable.Shortcuts.Activate.Get():
		return a.activate(a.Focused())
	case "o", editable.Shortcuts.ToggleOverride.Get():
		a.doc.ToggleGlobalOverride()
		gm := a.doc.Engine().GlobalOverride()
		if gm.Enabled {
			return a.status.ShowInfo(fmt.Sprintf("Global markup %s applied", pricing.FormatPercent(gm.Value)))
		}
		return a.status.ShowInfo("Element markups restored")
	case "a":
		a.openElementPicker()
	case "p":
		a.openParameterPicker()
	case "x", "delete":
		return a.confirmRemove()
	case "t":
		id := a.doc.AddTerm("")
		a.focusID(id)
		return a.activate(id)
	case "r", editable.Shortcuts.Retry.Get():
		if len(a.doc.Sync().Failed()) == 0 {
			return a.status.ShowInfo("Nothing to retry")
		}
		a.status.ClearPersistentMessage()
		return a.doc.RetryFailed()
	case "ctrl+s":
		return a.flush()
	case editable.Shortcuts.Copy.Get():
		return a.copySummary()
	}
	return nil
}

func (a *App) activate(id string) tea.Cmd {
	err := a.doc.Activate(id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pricing.ErrMarkupLocked):
		return a.status.ShowWarning("Markup is set by the global override (o to turn it off)")
	default:
		return a.showError(err)
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.viewport.LineUp(3)
		return nil
	case tea.MouseButtonWheelDown:
		a.viewport.LineDown(3)
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}

	target := a.controlAt(msg.Y)
	active, editing := a.doc.Active()
	if editing && target == active {
		return nil
	}
	if err := a.doc.PointerOutside(); err != nil {
		return a.showError(err)
	}
	if target == "" {
		return nil
	}
	a.focusID(target)
	return a.activate(target)
}

// controlAt maps a screen row to the control rendered there
func (a *App) controlAt(y int) string {
	line := y - headerHeight + a.viewport.YOffset
	if y < headerHeight || line < 0 || line >= len(a.rows) {
		return ""
	}
	return a.rows[line]
}

func (a *App) confirmRemove() tea.Cmd {
	view, ok := a.doc.View(a.Focused())
	if !ok || !strings.HasPrefix(view.Record, "element/") {
		return a.status.ShowInfo("Focus an element field to remove it")
	}
	rec, found := a.focusedRecord(view.Record)
	if !found {
		return nil
	}
	name, _ := a.doc.Catalog().ElementName(rec.ElementID)
	module, _ := a.doc.Catalog().ModuleName(rec.ModuleID)
	a.confirm.Show(fmt.Sprintf("Remove %s from %s?", name, module), true, func() tea.Cmd {
		if err := a.doc.RemoveElement(rec.Key()); err != nil {
			return a.showError(err)
		}
		a.moveFocus(0)
		return a.status.ShowSuccess(fmt.Sprintf("Removed %s", name))
	}, nil)
	return nil
}

func (a *App) focusedRecord(record string) (models.ElementCostRecord, bool) {
	for _, rec := range a.doc.Engine().Records() {
		if document.ElementRecord(rec.Key()) == record {
			return rec, true
		}
	}
	return models.ElementCostRecord{}, false
}

func (a *App) openElementPicker() {
	reg := a.doc.Catalog()
	cat := reg.Catalog()
	var items []PickerItem
	for _, m := range cat.Modules {
		for _, el := range cat.Elements {
			key := models.CostKey{ElementID: el.ID, ModuleID: m.ID}
			if _, exists := a.doc.Engine().Record(key); exists {
				continue
			}
			items = append(items, PickerItem{
				Label:  fmt.Sprintf("%s → %s", el.Name, m.Name),
				Detail: pricing.FormatMoney(el.MaterialCost+el.LaborCost) + " per " + unitOrEach(el.Unit),
				Value:  key,
			})
		}
	}
	a.picker = NewPicker("Add element", items, false, func(item PickerItem) tea.Cmd {
		key := item.Value.(models.CostKey)
		rec, err := a.doc.AddElement(key.ElementID, key.ModuleID)
		if err != nil {
			return a.showError(err)
		}
		a.focusID(document.ElementControlID(rec.Key(), pricing.FieldFormula))
		return a.status.ShowSuccess("Added " + item.Label)
	})
	a.picker.SetFilter(catalogFilter(cat, search.ItemTypeElement, func(item PickerItem) int {
		return item.Value.(models.CostKey).ElementID
	}))
}

// catalogFilter matches picker items through a catalog query
func catalogFilter(cat models.Catalog, typ search.ItemType, id func(PickerItem) int) FilterFunc {
	engine := search.NewEngine(cat)
	return func(query string) (func(PickerItem) bool, error) {
		ids, err := engine.Match(query, typ)
		if err != nil {
			return nil, err
		}
		return func(item PickerItem) bool { return ids[id(item)] }, nil
	}
}

func (a *App) openParameterPicker() {
	cat := a.doc.Catalog().Catalog()
	selected := make(map[int]bool)
	for _, id := range a.doc.Proposal().SelectedParameters {
		selected[id] = true
	}
	items := make([]PickerItem, len(cat.Parameters))
	for i, p := range cat.Parameters {
		detail := p.Text
		if p.Kind == models.ParameterKindNumber {
			detail = fmt.Sprintf("%g", p.Number)
		}
		items[i] = PickerItem{Label: p.Name, Detail: detail, Checked: selected[p.ID], Value: p.ID}
	}
	a.picker = NewPicker("Formula parameters", items, true, func(item PickerItem) tea.Cmd {
		id := item.Value.(int)
		if !item.Checked {
			a.doc.DeselectParameter(id)
			return nil
		}
		if err := a.doc.SelectParameter(id); err != nil {
			return a.showError(err)
		}
		return nil
	})
	a.picker.SetFilter(catalogFilter(cat, search.ItemTypeParameter, func(item PickerItem) int {
		return item.Value.(int)
	}))
}

func (a *App) copySummary() tea.Cmd {
	text := document.Text(a.doc.Proposal(), a.doc.Summary())
	if err := a.copyToClipboard(text); err != nil {
		a.logger.Warn("clipboard write failed", "error", err)
		return a.status.ShowError("Could not copy to clipboard")
	}
	return a.status.ShowSuccess("Proposal copied to clipboard")
}

func (a *App) flush() tea.Cmd {
	if a.doc.Sync().Pending() == 0 {
		if _, editing := a.doc.Active(); !editing {
			return a.status.ShowInfo("All changes saved")
		}
	}
	return a.doc.Flush()
}

// quit flushes pending writes first; a second request quits regardless
func (a *App) quit() tea.Cmd {
	if a.quitting {
		return tea.Quit
	}
	a.quitting = true
	cmd := a.doc.Flush()
	if a.doc.Sync().Pending() == 0 {
		return tea.Quit
	}
	a.status.SetPersistentMessage("Saving before exit…", StatusTypeInfo)
	return cmd
}

func (a *App) syncSettled(msg autosave.StatusMsg) tea.Cmd {
	if msg.Status == autosave.StatusFailed {
		a.status.SetPersistentMessage(fmt.Sprintf("%d record(s) failed to save, r to retry", len(a.doc.Sync().Failed())), StatusTypeError)
		if a.quitting {
			// keep the session open so the failure is seen
			a.quitting = false
		}
		return a.status.ShowError(fmt.Sprintf("Save failed: %v", msg.Err))
	}
	if len(a.doc.Sync().Failed()) == 0 && a.status.PersistentType == StatusTypeError {
		a.status.ClearPersistentMessage()
	}
	if a.quitting && a.doc.Sync().Pending() == 0 {
		return tea.Quit
	}
	return nil
}

func (a *App) showError(err error) tea.Cmd {
	var verr *editable.ValidationError
	if errors.As(err, &verr) {
		return a.status.ShowWarning(verr.Err.Error())
	}
	a.logger.Debug("action failed", "error", err)
	return a.status.ShowError(err.Error())
}

func unitOrEach(unit string) string {
	if unit == "" {
		return "ea"
	}
	return unit
}
