package feature

import "sync"

// Weights is the decoder-wide weight vector shared by all workers.
// Readers take snapshots; writers are serialized behind the same lock, so a
// reader never observes a partially updated vector.
type Weights struct {
	mu sync.RWMutex
	v  Vector
}

func NewWeights(initial Vector) *Weights {
	if initial == nil {
		return &Weights{v: Vector{}}
	}
	return &Weights{v: initial.Clone()}
}

// Snapshot returns an immutable copy of the current weights.
func (w *Weights) Snapshot() Vector {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.v.Clone()
}

func (w *Weights) Get(name string) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.v[name]
}

func (w *Weights) Set(name string, value float64) {
	w.mu.Lock()
	w.v[name] = value
	w.mu.Unlock()
}

func (w *Weights) Increment(name string, delta float64) {
	w.mu.Lock()
	w.v[name] += delta
	w.mu.Unlock()
}

func (w *Weights) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.v)
}
