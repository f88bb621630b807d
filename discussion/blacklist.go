package discussion

import (
	"maps"
	"slices"
	"sync"
)

// Blacklist is a set of user IDs excluded from discussion channels.
// It is safe for concurrent use.
type Blacklist struct {
	mutex sync.RWMutex
	ids   map[string]struct{}
}

// NewBlacklist creates a Blacklist holding the given IDs.
func NewBlacklist(ids ...string) *Blacklist {
	b := &Blacklist{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		b.ids[id] = struct{}{}
	}
	return b
}

// Add puts the ID on the list and reports whether it was absent before.
func (b *Blacklist) Add(id string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.ids[id]; ok {
		return false
	}
	b.ids[id] = struct{}{}
	return true
}

// Remove takes the ID off the list and reports whether it was present.
func (b *Blacklist) Remove(id string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.ids[id]; !ok {
		return false
	}
	delete(b.ids, id)
	return true
}

// Contains reports whether the ID is on the list.
func (b *Blacklist) Contains(id string) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	_, ok := b.ids[id]
	return ok
}

// IDs returns the listed IDs in ascending order.
func (b *Blacklist) IDs() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return slices.Sorted(maps.Keys(b.ids))
}
