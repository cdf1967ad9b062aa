package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// ProfileData is what the header shows about the signed-in crew member.
type ProfileData struct {
	Profile     string
	UserID      string
	DisplayName string
	Email       string
	BaseURL     string
}

// ProfileInfo displays profile metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data ProfileData) {
	pi.Clear()
	_, _ = fmt.Fprint(pi, FormatProfile(pi.theme, data))
}

// FormatProfile lays data out as labelled rows; empty fields show "-".
func FormatProfile(theme *Theme, data ProfileData) string {
	fg := ColorName(theme.FgColor)
	val := ColorName(theme.CounterColor)
	rows := []struct{ label, value string }{
		{"Profile:", data.Profile},
		{"User:", data.DisplayName},
		{"ID:", data.UserID},
		{"Email:", data.Email},
		{"Server:", data.BaseURL},
	}
	var out string
	for i, r := range rows {
		v := r.value
		if v == "" {
			v = "-"
		}
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("[%s::b]%-8s[-:-:-] [%s]%s[-]", fg, r.label, val, tview.Escape(v))
	}
	return out
}
