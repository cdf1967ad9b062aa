package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/fleetchat/internal/outbox"
)

func newTestFlash(now *time.Time) *FlashModel {
	f := NewFlashModel()
	f.now = func() time.Time { return *now }
	return f
}

func TestFlashExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newTestFlash(&now)

	if f.Get() != nil {
		t.Fatal("new model should have no message")
	}
	f.Info("synced")
	if m := f.Get(); m == nil || m.Text != "synced" || m.Level != FlashInfo {
		t.Fatalf("Get() = %+v", m)
	}

	now = now.Add(infoFor + time.Millisecond)
	if m := f.Get(); m != nil {
		t.Errorf("message should have expired, got %+v", m)
	}
}

func TestFlashNotify(t *testing.T) {
	now := time.Now()
	f := newTestFlash(&now)

	f.Notify(errors.New("status 503"))
	m := f.Get()
	if m == nil || m.Level != FlashErr {
		t.Fatalf("Get() = %+v, want error level", m)
	}
	if !strings.Contains(m.Text, "status 503") {
		t.Errorf("text %q does not carry the cause", m.Text)
	}

	f.Notify(fmt.Errorf("send: %w", outbox.ErrEmptyText))
	if m := f.Get(); m == nil || m.Level != FlashWarn {
		t.Errorf("empty text should warn, got %+v", m)
	}
}

func TestFlashWatch(t *testing.T) {
	f := NewFlashModel()
	f.Warn("poll slow")
	select {
	case m := <-f.Watch():
		if m.Text != "poll slow" {
			t.Errorf("watched %q", m.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("no message on watch channel")
	}
}

func TestFlashText(t *testing.T) {
	theme := DefaultTheme()
	if got := FlashText(theme, nil); got != "" {
		t.Errorf("FlashText(nil) = %q", got)
	}
	got := FlashText(theme, &FlashMessage{Text: "[x] down", Level: FlashErr})
	if !strings.HasPrefix(got, "["+ColorName(theme.FlashErrColor)+"]") {
		t.Errorf("FlashText = %q, missing error color", got)
	}
	if !strings.Contains(got, "[x[] down") {
		t.Errorf("FlashText = %q, text not escaped", got)
	}
}
