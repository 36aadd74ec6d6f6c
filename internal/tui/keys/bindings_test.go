package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHandleEventPrefersView(t *testing.T) {
	r := NewRegistry()
	var fired string
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Handler: func() { fired = "global" }})
	r.AddView("chat", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "Back", Handler: func() { fired = "view" }})

	if !r.HandleEvent("chat", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("event not handled")
	}
	if fired != "view" {
		t.Errorf("fired = %q, want view", fired)
	}

	if !r.HandleEvent("home", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("global binding not handled")
	}
	if fired != "global" {
		t.Errorf("fired = %q, want global", fired)
	}

	if r.HandleEvent("home", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("unbound key handled")
	}
}

func TestHandleEventSpecialKeys(t *testing.T) {
	r := NewRegistry()
	n := 0
	r.AddView("chat", &Action{Key: tcell.KeyEscape, Handler: func() { n++ }})

	r.HandleEvent("chat", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	r.HandleEvent("chat", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestHintsOrderAndVisibility(t *testing.T) {
	r := NewRegistry()
	noop := func() {}
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true, Handler: noop})
	r.AddView("home", &Action{Key: tcell.KeyEnter, Description: "Open", Visible: true, Handler: noop})
	r.AddView("home", &Action{Key: tcell.KeyRune, Rune: 'j', Description: "Down", Handler: noop})
	r.AddView("home", &Action{Key: tcell.KeyRune, Rune: 'l', Label: "l", Description: "Logout", Visible: true, Handler: noop})

	hints := r.Hints("home")
	if len(hints) != 3 {
		t.Fatalf("hints = %+v", hints)
	}
	if hints[0].Key != "Enter" || hints[1].Description != "Logout" || hints[2].Key != "?" {
		t.Errorf("hints = %+v", hints)
	}
}
