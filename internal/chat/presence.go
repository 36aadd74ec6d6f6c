package chat

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Presence is the set of user ids the server last reported as connected.
type Presence struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{online: make(map[string]struct{})}
}

// Replace swaps the whole set for ids. Ids absent from the update are
// offline afterwards.
func (p *Presence) Replace(ids []string) {
	next := lo.SliceToMap(lo.Compact(ids), func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	p.mu.Lock()
	p.online = next
	p.mu.Unlock()
}

func (p *Presence) IsOnline(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[id]
	return ok
}

// Online returns the ids in sorted order.
func (p *Presence) Online() []string {
	p.mu.RLock()
	ids := lo.Keys(p.online)
	p.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.online)
}

// Clear empties the set, used when the session ends.
func (p *Presence) Clear() {
	p.Replace(nil)
}
