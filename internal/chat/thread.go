package chat

import (
	"sync"

	"github.com/matheus3301/chatterm/internal/api"
)

// Thread holds the messages shown for the selected partner, oldest first.
//
// Every Reset starts a new generation. A snapshot is applied only if it was
// requested for the current generation, so a slow response for a partner the
// user already left never overwrites the visible thread.
type Thread struct {
	mu        sync.Mutex
	partnerID string
	gen       uint64
	loaded    bool
	msgs      []api.Message
	seen      map[string]struct{}
}

func NewThread() *Thread {
	return &Thread{seen: make(map[string]struct{})}
}

// Reset empties the thread, binds it to partnerID ("" for none) and returns
// the new generation.
func (t *Thread) Reset(partnerID string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.partnerID = partnerID
	t.loaded = false
	t.msgs = nil
	t.seen = make(map[string]struct{})
	return t.gen
}

func (t *Thread) PartnerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.partnerID
}

func (t *Thread) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Loaded reports whether a snapshot has been applied since the last Reset.
func (t *Thread) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// ApplySnapshot replaces the contents with msgs if gen is still current.
// Messages appended since the Reset and missing from the snapshot are kept
// after it. Returns false for a stale generation.
func (t *Thread) ApplySnapshot(gen uint64, msgs []api.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return false
	}
	early := t.msgs
	t.msgs = make([]api.Message, 0, len(msgs)+len(early))
	t.seen = make(map[string]struct{}, len(msgs)+len(early))
	for _, m := range msgs {
		t.appendLocked(m)
	}
	for _, m := range early {
		t.appendLocked(m)
	}
	t.loaded = true
	return true
}

// Append adds msg unless a message with the same id is already present.
func (t *Thread) Append(msg api.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendLocked(msg)
}

// AcceptLive appends a pushed message only when it belongs to the
// conversation with the bound partner. Anything else is dropped.
func (t *Thread) AcceptLive(msg api.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !msg.Involves(t.partnerID) {
		return false
	}
	return t.appendLocked(msg)
}

// Messages returns a copy of the current contents.
func (t *Thread) Messages() []api.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]api.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}

func (t *Thread) appendLocked(msg api.Message) bool {
	if msg.ID != "" {
		if _, dup := t.seen[msg.ID]; dup {
			return false
		}
		t.seen[msg.ID] = struct{}{}
	}
	t.msgs = append(t.msgs, msg)
	return true
}
