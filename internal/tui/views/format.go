package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

func escape(s string) string { return tview.Escape(s) }

// formatTimestamp shows the clock for today and the date otherwise.
func formatTimestamp(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	ts = ts.In(now.Location())
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		return ts.Format("15:04")
	}
	return ts.Format("01/02 15:04")
}

// FormatMessage renders one message as tview markup: a header line with the
// sender, time and delivery marker, followed by the body.
func FormatMessage(theme *ui.Theme, m model.Message, now time.Time) string {
	if m.Kind == model.KindSystem {
		return fmt.Sprintf("[%s::i]  * %s *[-:-:-]\n\n", ui.ColorName(theme.SystemColor), sanitizeLine(m.Text))
	}

	nameColor := theme.PeerColor
	if m.IsCurrentUser {
		nameColor = theme.SelfColor
	}
	name := m.SenderDisplayName
	if name == "" {
		name = model.UnknownSender
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]%s\n",
		ui.ColorName(nameColor), sanitizeLine(name), formatTimestamp(m.SentAt, now), statusMarker(theme, m.Status))
	b.WriteString(formatBody(theme, m))
	b.WriteString("\n\n")
	return b.String()
}

func statusMarker(theme *ui.Theme, s model.Status) string {
	switch s {
	case model.StatusPending:
		return fmt.Sprintf(" [%s]sending…[-]", ui.ColorName(theme.PendingColor))
	case model.StatusFailed:
		return fmt.Sprintf(" [%s::b]not sent[-:-:-]", ui.ColorName(theme.FailedColor))
	default:
		return ""
	}
}

func formatBody(theme *ui.Theme, m model.Message) string {
	switch m.Kind {
	case model.KindText:
		return sanitize(m.Text)
	case model.KindAircraftList:
		color := ui.ColorName(theme.AircraftColor)
		var b strings.Builder
		fmt.Fprintf(&b, "[%s::b]Aircraft[-:-:-]", color)
		for _, line := range strings.Split(m.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintf(&b, "\n  [%s]>[-] %s", color, sanitizeLine(line))
			}
		}
		return b.String()
	case model.KindSelectiveAction:
		return fmt.Sprintf("[::r] action [::-] %s", sanitize(m.Text))
	case model.KindSystem:
		return sanitizeLine(m.Text)
	}
	return sanitize(m.Text)
}
