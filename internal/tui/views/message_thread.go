package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays one conversation and the composer below it.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	title    string
	now      func() time.Time
	onSend   func(text string)
	onDraft  func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" No conversation ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		now:      time.Now,
	}

	composer.SetChangedFunc(func(text string) {
		if mt.onDraft != nil {
			mt.onDraft(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			if text := composer.GetText(); strings.TrimSpace(text) != "" {
				mt.onSend(text)
			}
		}
	})

	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Leave composer"},
	}
}

// SetConversation shows the conversation label and key above the thread.
func (mt *MessageThread) SetConversation(label, conversationID string) {
	mt.title = label
	if conversationID == "" {
		mt.messages.SetTitle(fmt.Sprintf(" %s ", sanitizeLine(label)))
		return
	}
	mt.messages.SetTitle(fmt.Sprintf(" %s [::d](%s)[-:-:-] ", sanitizeLine(label), sanitizeLine(conversationID)))
}

// SetOnSend sets the callback run when Enter is pressed on a non-blank draft.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetOnDraft sets the callback run on every composer edit.
func (mt *MessageThread) SetOnDraft(fn func(text string)) {
	mt.onDraft = fn
}

// SetDraft replaces the composer text without firing the draft callback.
func (mt *MessageThread) SetDraft(text string) {
	if mt.composer.GetText() == text {
		return
	}
	fn := mt.onDraft
	mt.onDraft = nil
	mt.composer.SetText(text)
	mt.onDraft = fn
}

// Update renders msgs, oldest first, and keeps the view pinned to the end.
func (mt *MessageThread) Update(msgs []model.Message) {
	mt.messages.Clear()
	if len(msgs) == 0 {
		_, _ = fmt.Fprintf(mt.messages, "\n  [::d]No messages yet.[-:-:-]")
		return
	}
	now := mt.now()
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(FormatMessage(mt.theme, m, now))
	}
	_, _ = fmt.Fprint(mt.messages, b.String())
	mt.messages.ScrollToEnd()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
