package ui

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a pane that can name itself and advertise its shortcuts.
type Component interface {
	Name() string
	Hints() []MenuHint
}
