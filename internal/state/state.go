// Package state holds the client's session and the selected conversation
// partner. It is created once per process and handed to whoever needs it.
package state

import (
	"sync"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
)

// State is the session/selection holder. The zero value is not usable; use New.
type State struct {
	mu      sync.RWMutex
	session *api.User
	partner *api.User
	bus     *bus.Bus
}

// SessionChange is the payload of bus.SessionChanged.
type SessionChange struct {
	User *api.User // nil when signed out
}

// PartnerChange is the payload of bus.PartnerChanged.
type PartnerChange struct {
	Partner *api.User // nil when cleared
}

// New creates an unauthenticated state. b may be nil.
func New(b *bus.Bus) *State {
	return &State{bus: b}
}

// Session returns a copy of the current identity, or nil.
func (s *State) Session() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.session)
}

// Authenticated reports whether a session is set.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// SetSession replaces the identity. Passing nil signs out and also clears
// the selected partner.
func (s *State) SetSession(u *api.User) {
	s.mu.Lock()
	s.session = clone(u)
	clearedPartner := u == nil && s.partner != nil
	if u == nil {
		s.partner = nil
	}
	s.mu.Unlock()

	s.bus.Emit(bus.SessionChanged, SessionChange{User: clone(u)})
	if clearedPartner {
		s.bus.Emit(bus.PartnerChanged, PartnerChange{})
	}
}

// Partner returns a copy of the selected partner, or nil.
func (s *State) Partner() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.partner)
}

// PartnerID returns the selected partner's id, or "".
func (s *State) PartnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.partner == nil {
		return ""
	}
	return s.partner.ID
}

// SetPartner selects u as the conversation partner.
func (s *State) SetPartner(u *api.User) {
	s.mu.Lock()
	s.partner = clone(u)
	s.mu.Unlock()
	s.bus.Emit(bus.PartnerChanged, PartnerChange{Partner: clone(u)})
}

// ClearPartner drops the selection.
func (s *State) ClearPartner() {
	s.SetPartner(nil)
}

func clone(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
