package utils

import (
	"sync"
	"time"
)

// KeyLimiter allows at most one event per key within a fixed window. State
// is in-process only; after a restart every key is allowed again.
type KeyLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

func NewKeyLimiter(window time.Duration) *KeyLimiter {
	return &KeyLimiter{window: window, last: make(map[string]time.Time)}
}

// Allow reports whether the key may fire at the given time, recording the
// firing when it does.
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seen, ok := l.last[key]; ok && now.Sub(seen) < l.window {
		return false
	}
	l.last[key] = now
	return true
}

// Forget drops a key so the next Allow fires immediately.
func (l *KeyLimiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, key)
}
