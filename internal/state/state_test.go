package state

import (
	"testing"
	"time"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		authed bool
		want   string
	}{
		{"home without session", PathHome, false, PathLogin},
		{"home with session", PathHome, true, PathHome},
		{"login without session", PathLogin, false, PathLogin},
		{"login with session", PathLogin, true, PathHome},
		{"signup without session", PathSignup, false, PathSignup},
		{"signup with session", PathSignup, true, PathHome},
		{"unknown without session", "/settings", false, PathLogin},
		{"unknown with session", "/settings", true, PathHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.path, tt.authed); got != tt.want {
				t.Errorf("Route(%q, %v) = %q, want %q", tt.path, tt.authed, got, tt.want)
			}
		})
	}
}

func TestLogoutRedirectsProtectedRoute(t *testing.T) {
	s := New(nil)
	s.SetSession(&api.User{ID: "u1"})
	if got := s.Route(PathHome); got != PathHome {
		t.Fatalf("Route(/) with session = %q, want /", got)
	}

	s.SetSession(nil)
	if s.Authenticated() {
		t.Error("Authenticated() = true after logout")
	}
	if got := s.Route(PathHome); got != PathLogin {
		t.Errorf("Route(/) after logout = %q, want /login", got)
	}
}

func TestLogoutClearsPartner(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("state.", 10)
	defer unsub()

	s := New(b)
	s.SetSession(&api.User{ID: "u1"})
	s.SetPartner(&api.User{ID: "u2"})
	s.SetSession(nil)

	if s.Partner() != nil {
		t.Errorf("Partner() = %+v after logout, want nil", s.Partner())
	}

	var kinds []string
	timeout := time.After(time.Second)
	for len(kinds) < 4 {
		select {
		case evt := <-ch:
			kinds = append(kinds, evt.Kind)
		case <-timeout:
			t.Fatalf("got events %v, want 4", kinds)
		}
	}
	want := []string{bus.SessionChanged, bus.PartnerChanged, bus.SessionChanged, bus.PartnerChanged}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestSessionIsCopied(t *testing.T) {
	s := New(nil)
	u := &api.User{ID: "u1", FullName: "Alice"}
	s.SetSession(u)
	u.FullName = "Mallory"

	got := s.Session()
	if got.FullName != "Alice" {
		t.Errorf("Session().FullName = %q, want Alice", got.FullName)
	}
	got.FullName = "Eve"
	if s.Session().FullName != "Alice" {
		t.Error("mutating the returned session changed the holder")
	}
}

func TestPartnerID(t *testing.T) {
	s := New(nil)
	if s.PartnerID() != "" {
		t.Errorf("PartnerID() = %q, want empty", s.PartnerID())
	}
	s.SetPartner(&api.User{ID: "u2"})
	if s.PartnerID() != "u2" {
		t.Errorf("PartnerID() = %q, want u2", s.PartnerID())
	}
	s.ClearPartner()
	if s.PartnerID() != "" {
		t.Errorf("PartnerID() after clear = %q, want empty", s.PartnerID())
	}
}
