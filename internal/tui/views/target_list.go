package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// TargetList is the table of contacts and groups a conversation can be opened with.
type TargetList struct {
	*tview.Table
	theme    *ui.Theme
	targets  []model.Target
	visible  []model.Target
	filter   string
	active   model.Target
	onSelect func(model.Target)
}

// NewTargetList creates an empty target table.
func NewTargetList(theme *ui.Theme) *TargetList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	tl := &TargetList{
		Table: table,
		theme: theme,
	}
	table.SetSelectedFunc(func(row, _ int) {
		if t, ok := tl.at(row); ok && tl.onSelect != nil {
			tl.onSelect(t)
		}
	})
	tl.render()
	return tl
}

// Name implements Component.
func (tl *TargetList) Name() string { return "Crew" }

// Hints implements Component.
func (tl *TargetList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
	}
}

// SetOnSelect sets the callback run when a row is chosen.
func (tl *TargetList) SetOnSelect(fn func(model.Target)) {
	tl.onSelect = fn
}

// Update replaces the contacts and groups shown. Groups are listed first.
func (tl *TargetList) Update(targets []model.Target) {
	groups := make([]model.Target, 0, len(targets))
	direct := make([]model.Target, 0, len(targets))
	for _, t := range targets {
		if t.IsGroup() {
			groups = append(groups, t)
		} else {
			direct = append(direct, t)
		}
	}
	tl.targets = append(groups, direct...)
	tl.render()
}

// Add inserts t unless an equal target is already listed.
func (tl *TargetList) Add(t model.Target) {
	for _, have := range tl.targets {
		if sameTarget(have, t) {
			return
		}
	}
	tl.Update(append(tl.targets, t))
}

// Targets returns every listed target, ignoring the filter.
func (tl *TargetList) Targets() []model.Target {
	return append([]model.Target(nil), tl.targets...)
}

// SetActive marks the open conversation's target.
func (tl *TargetList) SetActive(t model.Target) {
	tl.active = t
	tl.render()
}

// SetFilter narrows the list to targets whose label or address contains
// filter, ignoring case.
func (tl *TargetList) SetFilter(filter string) {
	tl.filter = strings.TrimSpace(filter)
	tl.render()
	if len(tl.visible) > 0 {
		tl.Select(1, 0)
	}
}

// Selected returns the target under the cursor.
func (tl *TargetList) Selected() (model.Target, bool) {
	row, _ := tl.GetSelection()
	return tl.at(row)
}

func (tl *TargetList) at(row int) (model.Target, bool) {
	idx := row - 1
	if idx < 0 || idx >= len(tl.visible) {
		return model.Target{}, false
	}
	return tl.visible[idx], true
}

func (tl *TargetList) render() {
	tl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" ADDRESS", 1},
		{" TYPE", 0},
	}
	for col, h := range headers {
		tl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(tl.theme.TableHeaderFg).
			SetBackgroundColor(tl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	tl.visible = tl.visible[:0]
	for _, t := range tl.targets {
		if !matchesFilter(t, tl.filter) {
			continue
		}
		tl.visible = append(tl.visible, t)
		row := len(tl.visible)

		name := t.Label()
		if sameTarget(t, tl.active) {
			name = "* " + name
		}
		kind := "DM"
		if t.IsGroup() {
			kind = "GROUP"
		}
		tl.SetCell(row, 0, tview.NewTableCell(" "+sanitizeLine(name)).SetExpansion(1).SetTextColor(tl.theme.FgColor))
		tl.SetCell(row, 1, tview.NewTableCell(" "+sanitizeLine(address(t))).SetExpansion(1).SetTextColor(tl.theme.FgColor))
		tl.SetCell(row, 2, tview.NewTableCell(kind).SetAlign(tview.AlignRight).SetTextColor(tl.theme.FgColor))
	}

	if tl.filter != "" {
		tl.SetTitle(fmt.Sprintf(" Crew (%d/%d) filter: %s ", len(tl.visible), len(tl.targets), sanitizeLine(tl.filter)))
	} else {
		tl.SetTitle(fmt.Sprintf(" Crew (%d) ", len(tl.targets)))
	}
}

func address(t model.Target) string {
	if t.IsGroup() {
		return t.GroupID
	}
	for _, s := range []string{t.Email, t.Phone, t.ContactID} {
		if s != "" {
			return s
		}
	}
	return ""
}

func matchesFilter(t model.Target, filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	for _, s := range []string{t.Label(), address(t)} {
		if strings.Contains(strings.ToLower(s), filter) {
			return true
		}
	}
	return false
}

func sameTarget(a, b model.Target) bool {
	if a.IsGroup() || b.IsGroup() {
		return a.GroupID == b.GroupID
	}
	return a.ContactID == b.ContactID && a.Email == b.Email && a.ID == b.ID
}
