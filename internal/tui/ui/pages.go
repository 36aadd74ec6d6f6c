package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages.
// Pages registered with a Component get Start when they reach the top of
// the stack and Stop when they leave it.
type Pages struct {
	*tview.Pages
	components map[string]Component
	stack      []string
	onChange   func(stack []string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages:      tview.NewPages(),
		components: make(map[string]Component),
	}
}

// Register adds a hidden page. c may be nil.
func (p *Pages) Register(name string, prim tview.Primitive, c Component) {
	p.AddPage(name, prim, true, false)
	if c != nil {
		p.components[name] = c
	}
}

// Component returns the component registered for name, or nil.
func (p *Pages) Component(name string) Component {
	return p.components[name]
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push adds a page to the top of the stack and shows it.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.HidePage(top)
		p.stop(top)
	}
	p.stack = append(p.stack, name)
	p.show(name)
	p.notify()
}

// Pop removes the top page and shows the previous one. The last page is
// never popped. Returns the name of the popped page, or empty.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stop(top)
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.stack[len(p.stack)-1])
	p.notify()
	return top
}

// Current returns the name of the current (top) page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the current page stack.
func (p *Pages) Stack() []string {
	s := make([]string, len(p.stack))
	copy(s, p.stack)
	return s
}

// Reset clears the stack and shows only the given page. Resetting to the
// page already alone on the stack does nothing.
func (p *Pages) Reset(name string) {
	if len(p.stack) == 1 && p.stack[0] == name {
		return
	}
	if top := p.Current(); top != "" {
		p.stop(top)
	}
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
	p.notify()
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if c := p.components[name]; c != nil {
		c.Start()
	}
}

func (p *Pages) stop(name string) {
	if c := p.components[name]; c != nil {
		c.Stop()
	}
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
