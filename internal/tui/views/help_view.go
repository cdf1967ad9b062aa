package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays the key binding and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, helpText(theme))
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"/", "Filter crew list"},
		{"Tab", "Switch pane"},
		{"r", "Poll now"},
		{"L", "Load older messages"},
		{"d", "Conversation details"},
		{"I", "Show my invite code"},
		{"?", "Help"},
		{"q", "Quit"},
	}},
	{"Crew List", [][2]string{
		{"Enter", "Open conversation"},
		{"j/k", "Move"},
	}},
	{"Message Thread", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send message (in composer)"},
		{"Esc", "Leave composer"},
	}},
	{"Commands", [][2]string{
		{":dm <id|email>", "Open a direct conversation"},
		{":group <id>", "Open a group conversation"},
		{":older", "Load older messages"},
		{":refresh", "Poll now"},
		{":invite", "Show my invite code"},
		{":info", "Conversation details"},
		{":close", "Close the conversation"},
		{":help / :h", "Show this help"},
		{":quit / :q", "Quit application"},
	}},
}

func helpText(theme *ui.Theme) string {
	kc := ui.ColorName(theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&b, "  [%s]%-16s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
	return b.String()
}
