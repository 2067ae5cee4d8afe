package scoring

import (
	"fmt"
	"sync"
)

// HandleTable hands out raw handles for values kept outside any sentence
// scope. It behaves like a native allocator: freeing an unknown or already
// freed handle panics.
type HandleTable struct {
	mu   sync.Mutex
	next Raw
	vals map[Raw]any
}

func NewHandleTable() *HandleTable {
	return &HandleTable{vals: make(map[Raw]any)}
}

// Alloc stores v and returns its handle. Handles are never zero.
func (t *HandleTable) Alloc(v any) Raw {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.vals[t.next] = v
	return t.next
}

// Get returns the value behind h.
func (t *HandleTable) Get(h Raw) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.vals[h]
	return v, ok
}

// Free implements Releaser.
func (t *HandleTable) Free(h Raw) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.vals[h]; !ok {
		panic(fmt.Sprintf("scoring: free of unknown handle %d", h))
	}
	delete(t.vals, h)
}

// Len returns the number of live handles.
func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.vals)
}
