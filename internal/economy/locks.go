package economy

import (
	"slices"
	"sync"
)

// keyedLocks serialises read-modify-write cycles on the same ledger records.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

// lock acquires every key in sorted order and returns the matching release.
func (l *keyedLocks) lock(keys ...string) func() {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.DeleteFunc(slices.Compact(keys), func(k string) bool { return k == "" })

	held := make([]*lockEntry, 0, len(keys))
	for _, k := range keys {
		l.mu.Lock()
		e, ok := l.entries[k]
		if !ok {
			e = &lockEntry{}
			l.entries[k] = e
		}
		e.refs++
		l.mu.Unlock()

		e.Lock()
		held = append(held, e)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.entries, k)
			}
		}
		l.mu.Unlock()
	}
}

func userLock(id string) string {
	if id == "" {
		return ""
	}
	return "user:" + id
}

func scopeLock(id string) string {
	if id == "" {
		return ""
	}
	return "scope:" + id
}
