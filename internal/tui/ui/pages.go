package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages. The bottom page
// is the chat layout; overlays such as help and invite are pushed on top.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(top string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
	}
}

// SetOnChange sets a callback that fires with the new top page.
func (p *Pages) SetOnChange(fn func(top string)) {
	p.onChange = fn
}

// Push shows name above the current page. Pushing the current top is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop hides the top page unless it is the last one. It returns the popped
// name, or "" when only the base page remains.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	p.SendToFront(p.Current())
	p.notify()
	return top
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset clears the stack and shows only the given page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Current())
	}
}
