package ui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/fleetchat/internal/outbox"
	"github.com/rivo/tview"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// Flash durations per level.
const (
	infoFor = 5 * time.Second
	warnFor = 8 * time.Second
	errFor  = 10 * time.Second
)

// FlashMessage is a flash notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the current transient notification. It is safe for use
// from the UI goroutine and from background senders.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	now     func() time.Time
	watchCh chan FlashMessage
}

// NewFlashModel creates a new flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{
		now:     time.Now,
		watchCh: make(chan FlashMessage, 8),
	}
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) {
	f.set(msg, FlashInfo, infoFor)
}

// Warn sets a warn-level flash message.
func (f *FlashModel) Warn(msg string) {
	f.set(msg, FlashWarn, warnFor)
}

// Err sets an error-level flash message.
func (f *FlashModel) Err(err error) {
	f.set(err.Error(), FlashErr, errFor)
}

// Notify reports a failed send. It satisfies outbox.Notifier.
func (f *FlashModel) Notify(err error) {
	if errors.Is(err, outbox.ErrEmptyText) {
		f.Warn("nothing to send")
		return
	}
	f.set("Message not sent: "+err.Error(), FlashErr, errFor)
}

func (f *FlashModel) set(msg string, level FlashLevel, d time.Duration) {
	f.mu.Lock()
	fm := FlashMessage{Text: msg, Level: level, Expires: f.now().Add(d)}
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// Get returns the current flash message, or nil once it has expired.
func (f *FlashModel) Get() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel that receives every new flash message.
func (f *FlashModel) Watch() <-chan FlashMessage {
	return f.watchCh
}

// FlashText renders msg with the theme's level color, or "" for nil.
func FlashText(theme *Theme, msg *FlashMessage) string {
	if msg == nil {
		return ""
	}
	var color string
	switch msg.Level {
	case FlashInfo:
		color = ColorName(theme.FlashInfoColor)
	case FlashWarn:
		color = ColorName(theme.FlashWarnColor)
	case FlashErr:
		color = ColorName(theme.FlashErrColor)
	}
	return fmt.Sprintf("[%s]%s[-]", color, tview.Escape(msg.Text))
}
