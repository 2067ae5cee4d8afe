package scoring

import "sync"

// Raw is an opaque handle returned by a scorer. Zero means "no native state".
type Raw uintptr

// Releaser frees the resource behind a raw handle. Free is called at most
// once per handle by a Cache.
type Releaser interface {
	Free(Raw)
}

// ReleaserFunc adapts a plain function to Releaser.
type ReleaserFunc func(Raw)

func (f ReleaserFunc) Free(r Raw) { f(r) }

// State is a forward-state handle plus its validity flag.
type State struct {
	raw      Raw
	releaser Releaser
	cache    *Cache
	valid    bool
}

// Raw returns the underlying handle. It stays readable after release so
// callers can log it, but must not be dereferenced then.
func (s *State) Raw() Raw {
	if s == nil {
		return 0
	}
	return s.raw
}

// Valid reports whether the state has not been released yet.
func (s *State) Valid() bool {
	if s == nil || s.cache == nil {
		return false
	}
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return s.valid
}

// Cache owns all states created for one sentence.
type Cache struct {
	mu       sync.Mutex
	pool     []*State
	created  uint64
	released uint64
	closed   bool
	leaked   int
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Create registers raw as a live state of this cache. A nil releaser means
// the handle needs no cleanup.
// On a closed cache the state is released at once and counted as leaked.
func (c *Cache) Create(raw Raw, r Releaser) *State {
	s := &State{raw: raw, releaser: r, cache: c, valid: true}
	c.mu.Lock()
	c.created++
	if c.closed {
		c.leaked++
		free := c.invalidateLocked(s)
		c.mu.Unlock()
		free()
		return s
	}
	c.pool = append(c.pool, s)
	c.mu.Unlock()
	return s
}

// Release frees a single state. Releasing a nil, foreign or already released
// state is a no-op.
func (c *Cache) Release(s *State) {
	if s == nil || s.cache != c {
		return
	}
	c.mu.Lock()
	free := c.invalidateLocked(s)
	c.mu.Unlock()
	free()
}

// ClearPool releases every state created since the previous clear and
// returns how many were still live.
func (c *Cache) ClearPool() int {
	c.mu.Lock()
	return c.clearLocked()
}

// Close is the final clear. States still live at this point escaped the
// regular ClearPool and are counted as leaked, as is anything created
// afterwards. Close returns the number it released; closing twice is a no-op.
func (c *Cache) Close() int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.closed = true
	n := c.clearLocked()
	c.mu.Lock()
	c.leaked += n
	c.mu.Unlock()
	return n
}

// Leaked returns how many states were released by Close or created after it.
func (c *Cache) Leaked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leaked
}

// Closed reports whether Close has been called.
func (c *Cache) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// clearLocked expects c.mu held and returns with it released.
func (c *Cache) clearLocked() int {
	pool := c.pool
	c.pool = nil
	frees := make([]func(), 0, len(pool))
	for _, s := range pool {
		if s.valid {
			frees = append(frees, c.invalidateLocked(s))
		}
	}
	c.mu.Unlock()
	// Native frees run outside the lock; a releaser may be slow.
	for _, f := range frees {
		f()
	}
	return len(frees)
}

// Live returns the number of states not yet released.
func (c *Cache) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.created - c.released)
}

// Created returns the number of states ever created in this cache.
func (c *Cache) Created() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

func (c *Cache) invalidateLocked(s *State) func() {
	if !s.valid {
		return func() {}
	}
	s.valid = false
	c.released++
	if s.releaser == nil || s.raw == 0 {
		return func() {}
	}
	r, raw := s.releaser, s.raw
	return func() { r.Free(raw) }
}
