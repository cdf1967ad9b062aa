package views

import (
	"fmt"

	"github.com/matheus3301/fleetchat/internal/invite"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// InviteView shows the current user's contact card as a scannable code.
type InviteView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewInviteView creates a new invite view.
func NewInviteView(theme *ui.Theme) *InviteView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Invite ")
	tv.SetTitleColor(theme.TitleColor)

	return &InviteView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (iv *InviteView) Name() string { return "Invite" }

// Hints implements Component.
func (iv *InviteView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Show renders the invite link for the given user.
func (iv *InviteView) Show(userID, name, email string) {
	iv.Clear()
	link := invite.Link(userID, name, email)
	code, err := invite.Render(link)
	if err != nil {
		_, _ = fmt.Fprintf(iv, "\n\n[%s]%s[-]", ui.ColorName(iv.theme.FlashErrColor), escape(err.Error()))
		return
	}
	_, _ = fmt.Fprintf(iv, "\n  Scan to add %s as a contact:\n\n%s\n  [::d]%s[-:-:-]",
		sanitizeLine(name), code, escape(link))
}
