package ui

import (
	"slices"
	"testing"

	"github.com/rivo/tview"
)

type probe struct {
	name   string
	events *[]string
}

func (p probe) Name() string      { return p.name }
func (p probe) Start()            { *p.events = append(*p.events, "start:"+p.name) }
func (p probe) Stop()             { *p.events = append(*p.events, "stop:"+p.name) }
func (p probe) Hints() []MenuHint { return nil }

func newProbePages(events *[]string, names ...string) *Pages {
	p := NewPages()
	for _, n := range names {
		p.Register(n, tview.NewBox(), probe{name: n, events: events})
	}
	return p
}

func TestPagesPushPopLifecycle(t *testing.T) {
	var events []string
	p := newProbePages(&events, "home", "help")
	var stacks [][]string
	p.SetOnChange(func(s []string) { stacks = append(stacks, s) })

	p.Reset("home")
	p.Push("help")
	p.Push("help")
	if got := p.Pop(); got != "help" {
		t.Fatalf("Pop = %q, want help", got)
	}
	if got := p.Pop(); got != "" {
		t.Fatalf("Pop of last page = %q, want empty", got)
	}

	want := []string{"start:home", "stop:home", "start:help", "stop:help", "start:home"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if len(stacks) != 3 {
		t.Errorf("onChange fired %d times, want 3", len(stacks))
	}
	if p.Current() != "home" {
		t.Errorf("Current = %q", p.Current())
	}
}

func TestPagesResetStopsOnlyTop(t *testing.T) {
	var events []string
	p := newProbePages(&events, "home", "profile", "login")
	p.Reset("home")
	p.Push("profile")
	events = nil

	p.Reset("login")
	want := []string{"stop:profile", "start:login"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if s := p.Stack(); !slices.Equal(s, []string{"login"}) {
		t.Errorf("stack = %v", s)
	}

	events = nil
	p.Reset("login")
	if len(events) != 0 {
		t.Errorf("repeated Reset fired %v", events)
	}
}
