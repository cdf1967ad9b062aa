package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHandleEventPrefersView(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal("refresh", &Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() { got = "global" }})
	r.AddView("thread", "reply", &Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() { got = "view" }})

	ev := tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)
	if !r.HandleEvent("thread", ev) || got != "view" {
		t.Errorf("thread: handled by %q, want view", got)
	}
	if !r.HandleEvent("targets", ev) || got != "global" {
		t.Errorf("targets: handled by %q, want global", got)
	}
}

func TestHandleEventSpecialKeys(t *testing.T) {
	r := NewRegistry()
	called := false
	r.AddGlobal("focus", &Action{Key: tcell.KeyTab, Handler: func() { called = true }})

	if r.HandleEvent("thread", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Error("unbound rune should not be handled")
	}
	if !r.HandleEvent("thread", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)) || !called {
		t.Error("tab not dispatched")
	}
}

func TestHintsAreStable(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Label: "q", Description: "Quit", Visible: true})
	r.AddGlobal("help", &Action{Label: "?", Description: "Help", Visible: true})
	r.AddGlobal("secret", &Action{Label: "x", Description: "Hidden"})
	r.AddView("thread", "older", &Action{Label: "L", Description: "Older", Visible: true})

	hints := r.Hints("thread")
	want := []string{"L", "?", "q"}
	if len(hints) != len(want) {
		t.Fatalf("hints = %+v", hints)
	}
	for i, k := range want {
		if hints[i].Key != k {
			t.Errorf("hint %d = %q, want %q", i, hints[i].Key, k)
		}
	}
}
