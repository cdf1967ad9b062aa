package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/fleetchat/internal/status"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays the profile, view state and the latest flash message.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	state   status.State
	target  string
	polling bool
	flash   *ui.FlashMessage
	now     func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{TextView: tv, theme: theme, state: status.Closed, now: time.Now}
	sb.render()
	return sb
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetView updates the conversation state, label and polling indicator.
func (sb *StatusBar) SetView(state status.State, target string, polling bool) {
	sb.state = state
	sb.target = target
	sb.polling = polling
	sb.render()
}

// SetFlash sets the current flash message; nil clears it.
func (sb *StatusBar) SetFlash(msg *ui.FlashMessage) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.line())
}

func (sb *StatusBar) line() string {
	pollIcon := " "
	if sb.polling {
		pollIcon = "[green]~[-]"
	}
	target := sb.target
	if target == "" {
		target = "-"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s %s | %s | %s",
		sanitizeLine(sb.profile), stateColor(sb.state), pollIcon, sanitizeLine(target), sb.now().Format("15:04"))
	if flash := ui.FlashText(sb.theme, sb.flash); flash != "" {
		line += " | " + flash
	}
	return line
}

func stateColor(s status.State) string {
	switch s {
	case status.Live:
		return "[green]" + string(s) + "[-]"
	case status.Opening, status.Idle:
		return "[yellow]" + string(s) + "[-]"
	case status.Error:
		return "[red]" + string(s) + "[-]"
	default:
		return string(s)
	}
}
