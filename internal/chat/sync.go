package chat

import (
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/live"
)

// Sync merges live events into the thread and presence set seeded by
// snapshots, and announces accepted changes on the bus.
type Sync struct {
	thread   *Thread
	presence *Presence
	bus      *bus.Bus
	logger   *zap.Logger
}

var _ live.Handler = (*Sync)(nil)

func NewSync(thread *Thread, presence *Presence, b *bus.Bus, logger *zap.Logger) *Sync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{thread: thread, presence: presence, bus: b, logger: logger}
}

func (s *Sync) HandlePresence(p live.PresenceUpdate) {
	s.presence.Replace(p.Online)
	s.logger.Debug("presence replaced", zap.Int("online", len(p.Online)))
	s.bus.Emit(bus.LivePresence, p)
}

func (s *Sync) HandleMessage(m live.NewMessage) {
	if !s.thread.AcceptLive(m.Message) {
		s.logger.Debug("live message dropped",
			zap.String("msg_id", m.Message.ID),
			zap.String("sender_id", m.Message.SenderID))
		return
	}
	s.bus.Emit(bus.LiveMessage, m.Message)
}

// Closed resets presence after the live channel ends and reports it.
func (s *Sync) Closed(err error) {
	s.presence.Clear()
	if err != nil {
		s.logger.Warn("live channel ended", zap.Error(err))
	}
	s.bus.Emit(bus.LiveClosed, err)
}
