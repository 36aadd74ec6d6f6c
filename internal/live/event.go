package live

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matheus3301/chatterm/internal/api"
)

// Wire names of the events the server pushes.
const (
	eventOnlineUsers = "getOnlineUsers"
	eventNewMessage  = "newMessage"
)

// ErrUnknownEvent is returned by Decode for event names the client does not handle.
var ErrUnknownEvent = errors.New("unknown live event")

// Event is one decoded server push: PresenceUpdate or NewMessage.
type Event interface {
	liveEvent()
}

// PresenceUpdate carries the complete set of connected user ids.
// It replaces, never amends, the previous set.
type PresenceUpdate struct {
	Online []string
}

// NewMessage carries one message delivered outside the request cycle.
type NewMessage struct {
	Message api.Message
}

func (PresenceUpdate) liveEvent() {}
func (NewMessage) liveEvent()     {}

// Handler receives decoded events. Calls come from the connection's read
// goroutine, one at a time, in arrival order.
type Handler interface {
	HandlePresence(PresenceUpdate)
	HandleMessage(NewMessage)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields ignore the event.
type HandlerFuncs struct {
	Presence func(PresenceUpdate)
	Message  func(NewMessage)
}

func (h HandlerFuncs) HandlePresence(p PresenceUpdate) {
	if h.Presence != nil {
		h.Presence(p)
	}
}

func (h HandlerFuncs) HandleMessage(m NewMessage) {
	if h.Message != nil {
		h.Message(m)
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode parses one text frame.
func Decode(frame []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Event {
	case eventOnlineUsers:
		var ids []string
		if err := json.Unmarshal(env.Data, &ids); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		if ids == nil {
			ids = []string{}
		}
		return PresenceUpdate{Online: ids}, nil
	case eventNewMessage:
		var m api.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return NewMessage{Message: m}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// Encode builds a frame for evt. Used by tests and local tooling that
// stand in for the server.
func Encode(evt Event) ([]byte, error) {
	var env struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}
	switch e := evt.(type) {
	case PresenceUpdate:
		env.Event, env.Data = eventOnlineUsers, e.Online
	case NewMessage:
		env.Event, env.Data = eventNewMessage, e.Message
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, evt)
	}
	return json.Marshal(env)
}

func dispatch(h Handler, evt Event) {
	switch e := evt.(type) {
	case PresenceUpdate:
		h.HandlePresence(e)
	case NewMessage:
		h.HandleMessage(e)
	}
}
