package bus

import "time"

// Event kinds published inside the client. Subscribers filter by prefix,
// so "state." receives every state change.
const (
	SessionChanged = "state.session_changed"
	PartnerChanged = "state.partner_changed"
	StatusChanged  = "state.status_changed"

	LivePresence = "live.presence"
	LiveMessage  = "live.message"
	LiveClosed   = "live.closed"

	MessageSent = "message.sent"
)

// Event is a notification published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
