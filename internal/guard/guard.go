// Package guard remembers which triggers have already been paid so a message, reaction or
// control is honoured at most once per process.
package guard

import (
	"sync"
)

// TriggerKey identifies a trigger. UserID is empty for triggers that may only ever pay once
// in total (submission verification); per-user triggers set it.
type TriggerKey struct {
	MessageID string
	UserID    string
	Category  string
}

// Global builds a key that is consumed by the first claimant regardless of who it is.
func Global(category, messageID string) TriggerKey {
	return TriggerKey{MessageID: messageID, Category: category}
}

// PerUser builds a key that every user may consume once.
func PerUser(category, messageID, userID string) TriggerKey {
	return TriggerKey{MessageID: messageID, UserID: userID, Category: category}
}

// Guard is the set of consumed triggers. The zero value is not usable; call New.
type Guard struct {
	mu       sync.Mutex
	consumed map[TriggerKey]struct{}
	onRepeat func(category string)
}

// New returns an empty Guard. onRepeat, when non-nil, is called for every rejected claim.
func New(onRepeat func(category string)) *Guard {
	return &Guard{
		consumed: make(map[TriggerKey]struct{}),
		onRepeat: onRepeat,
	}
}

// Claim marks key as consumed and reports whether this call was the first to do so.
func (g *Guard) Claim(key TriggerKey) bool {
	g.mu.Lock()
	_, seen := g.consumed[key]
	if !seen {
		g.consumed[key] = struct{}{}
	}
	g.mu.Unlock()

	if seen && g.onRepeat != nil {
		g.onRepeat(key.Category)
	}
	return !seen
}

// Consumed reports whether key has been claimed.
func (g *Guard) Consumed(key TriggerKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.consumed[key]
	return ok
}

// Len returns the number of consumed triggers.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.consumed)
}
