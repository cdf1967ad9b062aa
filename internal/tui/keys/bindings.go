// Package keys maps key events to actions, globally and per pane.
package keys

import (
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
)

// Action represents a keybinding action.
type Action struct {
	Key  tcell.Key
	Rune rune
	// Label is how the key is shown in hints, e.g. "q" or "Tab".
	Label       string
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings organized by scope.
type Registry struct {
	global map[string]*Action
	views  map[string]map[string]*Action
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		global: make(map[string]*Action),
		views:  make(map[string]map[string]*Action),
	}
}

// AddGlobal registers a binding active in every pane.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global[name] = action
}

// AddView registers a binding active only while view has focus.
func (r *Registry) AddView(view, name string, action *Action) {
	if r.views[view] == nil {
		r.views[view] = make(map[string]*Action)
	}
	r.views[view][name] = action
}

// Hints returns visible bindings for view, view bindings first, each group
// sorted by name so the menu does not reshuffle between renders.
func (r *Registry) Hints(view string) []ui.MenuHint {
	var hints []ui.MenuHint
	for _, a := range sorted(r.views[view]) {
		if a.Visible {
			hints = append(hints, ui.MenuHint{Key: a.Label, Description: a.Description})
		}
	}
	for _, a := range sorted(r.global) {
		if a.Visible {
			hints = append(hints, ui.MenuHint{Key: a.Label, Description: a.Description})
		}
	}
	return hints
}

// HandleEvent dispatches ev to the first matching action, view bindings
// before global ones. It reports whether a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, a := range sorted(r.views[view]) {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range sorted(r.global) {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}

func sorted(m map[string]*Action) []*Action {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Action, 0, len(names))
	for _, name := range names {
		out = append(out, m[name])
	}
	return out
}
