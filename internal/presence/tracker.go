package presence

import (
	"sync"
	"time"
)

type entry struct {
	status     string
	lastUpdate time.Time
}

// Tracker caches the last observed presence status per user. Entries older
// than the TTL are treated as unknown.
type Tracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]*entry
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		ttl:     ttl,
		clock:   realClock{},
		entries: make(map[string]*entry),
	}
}

func (t *Tracker) WithClock(clock Clock) *Tracker {
	t.clock = clock
	return t
}

func (t *Tracker) Observe(userID, status string) {
	if userID == "" || status == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[userID] = &entry{status: status, lastUpdate: t.clock.Now()}
}

// LastStatus returns the cached status for a user, if fresh enough.
func (t *Tracker) LastStatus(userID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item := t.entries[userID]
	if item == nil {
		return "", false
	}
	if t.ttl > 0 && t.clock.Now().Sub(item.lastUpdate) > t.ttl {
		delete(t.entries, userID)
		return "", false
	}
	return item.status, true
}
