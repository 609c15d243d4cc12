package state

import (
	"sort"
	"sync"
)

// Collection is an ordered, id-unique set of entities owned by a single
// store. UI code reads snapshots via Items; only the owning store mutates it.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items []T
	less  func(a, b T) bool
}

// NewCollection creates an empty collection with the given canonical order.
func NewCollection[T Entity](less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{less: less}
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of the current ordered contents.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// IDs returns the ids in collection order.
func (c *Collection[T]) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.items))
	for i, item := range c.items {
		ids[i] = item.EntityID()
	}
	return ids
}

// Get looks up an entity by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Insert places the entity at its sorted position. An existing entity with
// the same id is replaced in place instead.
func (c *Collection[T]) Insert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(item.EntityID()); i >= 0 {
		c.items[i] = item
		return
	}
	pos := sort.Search(len(c.items), func(i int) bool {
		return c.less(item, c.items[i])
	})
	c.items = append(c.items, item)
	copy(c.items[pos+1:], c.items[pos:])
	c.items[pos] = item
}

// Replace swaps the entity at oldID for the replacement without moving it,
// so an optimistic entry keeps its slot when the confirmed row arrives.
// Returns false when oldID is not present.
func (c *Collection[T]) Replace(oldID string, replacement T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(oldID)
	if i < 0 {
		return false
	}
	c.items[i] = replacement
	return true
}

// Update applies fn to the entity with the given id in place.
func (c *Collection[T]) Update(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items[i] = fn(c.items[i])
	return true
}

// Remove deletes the entity with the given id. Removal is keyed by id, never
// by index, so a late rollback cannot evict an unrelated entry.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// SetItems replaces the whole contents, re-sorting into canonical order.
func (c *Collection[T]) SetItems(items []T) {
	next := make([]T, len(items))
	copy(next, items)
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.SliceStable(next, func(i, j int) bool { return c.less(next[i], next[j]) })
	c.items = next
}

// Snapshot captures the current contents for a later Restore.
func (c *Collection[T]) Snapshot() []T {
	return c.Items()
}

// Restore puts back a snapshot verbatim, including its order.
func (c *Collection[T]) Restore(snapshot []T) {
	items := make([]T, len(snapshot))
	copy(items, snapshot)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// Less exposes the canonical order for merge helpers.
func (c *Collection[T]) Less() func(a, b T) bool {
	return c.less
}

func (c *Collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
