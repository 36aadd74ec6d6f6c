package live

import (
	"context"
	"sync"
)

// Subscriber keeps at most one Conn open, bound to the signed-in identity.
// Start replaces a connection for a different user; Stop tears it down when
// the session ends.
type Subscriber struct {
	base Options

	mu     sync.Mutex
	conn   *Conn
	userID string
	cancel context.CancelFunc
}

// NewSubscriber uses base for every dial; UserID is filled per Start.
func NewSubscriber(base Options) *Subscriber {
	return &Subscriber{base: base}
}

// Start dials for userID unless a live connection for that user already
// exists. onEnd, if set, runs after the connection terminates for any
// reason other than Stop or a replacing Start.
func (s *Subscriber) Start(ctx context.Context, userID string, h Handler, onEnd func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && s.userID == userID {
		select {
		case <-s.conn.Done():
		default:
			return nil
		}
	}
	s.stopLocked()

	opts := s.base
	opts.UserID = userID
	cctx, cancel := context.WithCancel(ctx)
	conn, err := Dial(cctx, opts, h)
	if err != nil {
		cancel()
		return err
	}
	s.conn, s.userID, s.cancel = conn, userID, cancel

	go func() {
		<-conn.Done()
		s.mu.Lock()
		current := s.conn == conn
		if current {
			s.conn, s.userID, s.cancel = nil, "", nil
		}
		s.mu.Unlock()
		cancel()
		if current && onEnd != nil {
			onEnd(conn.Err())
		}
	}()
	return nil
}

// Stop closes the current connection, if any.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Connected reports whether a connection is open and which user it serves.
func (s *Subscriber) Connected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return "", false
	}
	return s.userID, true
}

func (s *Subscriber) stopLocked() {
	if s.conn == nil {
		return
	}
	conn, cancel := s.conn, s.cancel
	s.conn, s.userID, s.cancel = nil, "", nil
	cancel()
	conn.Close()
}
