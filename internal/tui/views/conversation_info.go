package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays details about the open conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// ConversationDetails is what the details pane shows.
type ConversationDetails struct {
	Target         model.Target
	ConversationID string
	Messages       int
	Pending        int
	Members        []model.Member
}

// Update renders details.
func (ci *ConversationInfo) Update(d ConversationDetails) {
	ci.Clear()
	_, _ = fmt.Fprint(ci, formatDetails(ci.theme, d))
	ci.SetTitle(fmt.Sprintf(" %s Details ", sanitizeLine(d.Target.Label())))
}

func formatDetails(theme *ui.Theme, d ConversationDetails) string {
	fg := ui.ColorName(theme.FgColor)
	ct := ui.ColorName(theme.CounterColor)

	kind := "Direct"
	if d.Target.IsGroup() {
		kind = "Group"
	}
	rows := [][2]string{
		{"Name:", d.Target.Label()},
		{"Type:", kind},
		{"Key:", d.ConversationID},
		{"Address:", address(d.Target)},
		{"Messages:", fmt.Sprintf("%d (%d sending)", d.Messages, d.Pending)},
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, r := range rows {
		v := r[1]
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, " [%s::b]%-10s[-:-:-] [%s]%s[-]\n", fg, r[0], ct, sanitizeLine(v))
	}
	if len(d.Members) > 0 {
		fmt.Fprintf(&b, "\n [%s::b]Members[-:-:-]\n", fg)
		for _, m := range d.Members {
			name := m.FullName()
			if name == "" {
				name = m.Email
			}
			fmt.Fprintf(&b, "  [%s]%s[-] [::d]%s[-:-:-]\n", ct, sanitizeLine(name), sanitizeLine(m.UserID))
		}
	}
	return b.String()
}
