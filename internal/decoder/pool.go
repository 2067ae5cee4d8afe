package decoder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"decoderd/internal/translation"
)

// Worker translates one sentence at a time. A nil result with a nil error
// means the search found no translation.
type Worker interface {
	Translate(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error)
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error)

func (f WorkerFunc) Translate(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error) {
	return f(ctx, s)
}

// Handle grants exclusive use of one worker until it is released.
type Handle struct {
	pool     *Pool
	index    int
	worker   Worker
	released atomic.Bool
}

// Worker returns the worker this handle grants.
func (h *Handle) Worker() Worker { return h.worker }

// Index returns the worker's position in the pool.
func (h *Handle) Index() int { return h.index }

// grant is delivered to a queued Acquire.
type grant struct {
	h   *Handle
	err error
}

// Pool is a fixed set of workers handed out in FIFO order of request.
type Pool struct {
	mu          sync.Mutex
	workers     []Worker
	idle        []int
	waiters     []chan grant
	outstanding int
	closed      bool
	drained     chan struct{}
	drainClosed bool
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	Capacity int
	Idle     int
	InUse    int
	Waiting  int
	Closed   bool
}

// NewPool returns a pool over workers; its capacity is len(workers).
func NewPool(workers []Worker) *Pool {
	p := &Pool{
		workers: append([]Worker(nil), workers...),
		idle:    make([]int, 0, len(workers)),
		drained: make(chan struct{}),
	}
	for i := range workers {
		p.idle = append(p.idle, i)
	}
	return p
}

// Capacity returns the number of workers.
func (p *Pool) Capacity() int { return len(p.workers) }

// Acquire blocks until a worker is free. Waiters are served strictly in the
// order they arrived. It fails fast once the pool is shut down, and returns
// ctx.Err() if ctx ends first.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if len(p.waiters) == 0 && len(p.idle) > 0 {
		h := p.takeIdleLocked()
		p.mu.Unlock()
		poolAcquireWait.Observe(time.Since(start).Seconds())
		return h, nil
	}
	ch := make(chan grant, 1)
	p.waiters = append(p.waiters, ch)
	poolWaiters.Inc()
	p.mu.Unlock()

	select {
	case g := <-ch:
		poolAcquireWait.Observe(time.Since(start).Seconds())
		return g.h, g.err
	case <-ctx.Done():
		p.mu.Lock()
		removed := p.removeWaiterLocked(ch)
		p.mu.Unlock()
		if !removed {
			// A grant raced with cancellation; hand the worker on.
			if g := <-ch; g.h != nil {
				_ = p.Release(g.h)
			}
		}
		return nil, ctx.Err()
	}
}

// Release returns a worker to the pool. Each handle must be released exactly
// once; further releases are rejected and do not change capacity.
func (p *Pool) Release(h *Handle) error {
	if h == nil || h.pool != p {
		return handleError{msg: "released to a pool that did not issue it"}
	}
	if !h.released.CompareAndSwap(false, true) {
		return handleError{msg: "released twice"}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.waiters) > 0 {
		ch := p.waiters[0]
		p.waiters = p.waiters[1:]
		poolWaiters.Dec()
		// ownership moves to the waiter; outstanding is unchanged
		ch <- grant{h: &Handle{pool: p, index: h.index, worker: h.worker}}
		return nil
	}
	p.idle = append(p.idle, h.index)
	p.outstanding--
	poolInUse.Dec()
	if p.closed && p.outstanding == 0 {
		p.closeDrainedLocked()
	}
	return nil
}

// Shutdown stops handing out workers, fails queued Acquire calls and waits
// for every outstanding handle to come back.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for _, ch := range p.waiters {
			ch <- grant{err: ErrPoolClosed}
			poolWaiters.Dec()
		}
		p.waiters = nil
		if p.outstanding == 0 {
			p.closeDrainedLocked()
		}
	}
	p.mu.Unlock()
	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Capacity: len(p.workers),
		Idle:     len(p.idle),
		InUse:    p.outstanding,
		Waiting:  len(p.waiters),
		Closed:   p.closed,
	}
}

func (p *Pool) takeIdleLocked() *Handle {
	idx := p.idle[0]
	p.idle = p.idle[1:]
	p.outstanding++
	poolInUse.Inc()
	return &Handle{pool: p, index: idx, worker: p.workers[idx]}
}

func (p *Pool) removeWaiterLocked(ch chan grant) bool {
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			poolWaiters.Dec()
			return true
		}
	}
	return false
}

func (p *Pool) closeDrainedLocked() {
	if !p.drainClosed {
		p.drainClosed = true
		close(p.drained)
	}
}
