package ui

import (
	"testing"

	"github.com/rivo/tview"
)

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"chat", "help", "invite"} {
		p.AddPage(name, tview.NewBox(), true, false)
	}
	var tops []string
	p.SetOnChange(func(top string) { tops = append(tops, top) })

	p.Reset("chat")
	p.Push("help")
	p.Push("help")
	p.Push("invite")

	if p.Depth() != 3 || p.Current() != "invite" {
		t.Fatalf("depth=%d current=%q", p.Depth(), p.Current())
	}
	if got := p.Pop(); got != "invite" {
		t.Errorf("Pop() = %q, want invite", got)
	}
	if got := p.Pop(); got != "help" {
		t.Errorf("Pop() = %q, want help", got)
	}
	if got := p.Pop(); got != "" {
		t.Errorf("Pop() on base page = %q, want empty", got)
	}
	if p.Current() != "chat" {
		t.Errorf("current = %q, want chat", p.Current())
	}

	want := []string{"chat", "help", "invite", "help", "chat"}
	if len(tops) != len(want) {
		t.Fatalf("change callbacks = %v, want %v", tops, want)
	}
	for i := range want {
		if tops[i] != want[i] {
			t.Errorf("change %d = %q, want %q", i, tops[i], want[i])
		}
	}
}
