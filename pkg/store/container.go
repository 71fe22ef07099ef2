// Package store holds the client-side state containers: per-resource
// collections with loading flags, pending-action sets, optimistic patches,
// and staleness marks. Containers are safe for concurrent use.
package store

import "sync"

// Action labels an in-flight operation on a resource.
type Action string

const (
	ActionStarting    Action = "starting"
	ActionStopping    Action = "stopping"
	ActionTesting     Action = "testing"
	ActionApplying    Action = "applying"
	ActionSaving      Action = "saving"
	ActionDiscovering Action = "discovering"
	ActionRegistering Action = "registering"
)

// Container holds one resource collection keyed by id. Pending-action
// sets guard against duplicate concurrent writes; optimistic patches are
// applied in place and marked stale on failure rather than auto-reverted.
type Container[T any] struct {
	keyFn func(T) string

	mu      sync.RWMutex
	items   map[string]T
	order   []string
	loading bool
	lastErr error
	pending map[Action]map[string]struct{}
	stale   map[string]struct{}
}

// NewContainer creates a container keyed by keyFn.
func NewContainer[T any](keyFn func(T) string) *Container[T] {
	return &Container[T]{
		keyFn:   keyFn,
		items:   make(map[string]T),
		pending: make(map[Action]map[string]struct{}),
		stale:   make(map[string]struct{}),
	}
}

// ReplaceAll swaps the collection for fresh data. Staleness marks are
// cleared; a full refresh supersedes any flagged local copies.
func (c *Container[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T, len(items))
	c.order = make([]string, 0, len(items))

	for _, item := range items {
		key := c.keyFn(item)
		if _, seen := c.items[key]; !seen {
			c.order = append(c.order, key)
		}

		c.items[key] = item
	}

	c.stale = make(map[string]struct{})
	c.lastErr = nil
}

// Upsert inserts or replaces one item and clears its staleness mark.
func (c *Container[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.keyFn(item)
	if _, seen := c.items[key]; !seen {
		c.order = append(c.order, key)
	}

	c.items[key] = item

	delete(c.stale, key)
}

// Get returns the item for id.
func (c *Container[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]

	return item, ok
}

// Items returns the collection in insertion order.
func (c *Container[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.items[key])
	}

	return out
}

// Len returns the collection size.
func (c *Container[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// SetLoading sets the loading flag.
func (c *Container[T]) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = loading
}

// Loading reports the loading flag.
func (c *Container[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loading
}

// SetLastError records the most recent fetch failure.
func (c *Container[T]) SetLastError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastErr = err
}

// LastError returns the most recent fetch failure.
func (c *Container[T]) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastErr
}

// BeginAction marks (action, id) pending. It returns false when the same
// pair is already in flight, and the caller must not issue the request.
func (c *Container[T]) BeginAction(action Action, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, ok := c.pending[action]
	if !ok {
		ids = make(map[string]struct{})
		c.pending[action] = ids
	}

	if _, inFlight := ids[id]; inFlight {
		return false
	}

	ids[id] = struct{}{}

	return true
}

// EndAction clears the pending mark for (action, id).
func (c *Container[T]) EndAction(action Action, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ids, ok := c.pending[action]; ok {
		delete(ids, id)
	}
}

// InFlight reports whether (action, id) is pending.
func (c *Container[T]) InFlight(action Action, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids, ok := c.pending[action]
	if !ok {
		return false
	}

	_, inFlight := ids[id]

	return inFlight
}

// Pending returns the ids pending for action.
func (c *Container[T]) Pending(action Action) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.pending[action]))
	for id := range c.pending[action] {
		ids = append(ids, id)
	}

	return ids
}

// ApplyPatch transforms the item for id in place. Used for optimistic
// updates before the backend confirms.
func (c *Container[T]) ApplyPatch(id string, patch func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return false
	}

	c.items[id] = patch(item)

	return true
}

// MarkStale flags the local copy of id as possibly divergent from the
// backend. The copy is kept as is until the next refresh.
func (c *Container[T]) MarkStale(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stale[id] = struct{}{}
}

// IsStale reports whether id is flagged stale.
func (c *Container[T]) IsStale(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, stale := c.stale[id]

	return stale
}

// StaleIDs returns all flagged ids.
func (c *Container[T]) StaleIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.stale))
	for id := range c.stale {
		ids = append(ids, id)
	}

	return ids
}

// Filter returns the items satisfying pred, in insertion order.
func (c *Container[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0)

	for _, key := range c.order {
		if item := c.items[key]; pred(item) {
			out = append(out, item)
		}
	}

	return out
}

// CountBy groups the collection by the value produced by classify.
func (c *Container[T]) CountBy(classify func(T) string) map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)

	for _, item := range c.items {
		counts[classify(item)]++
	}

	return counts
}
