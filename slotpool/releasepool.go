package slotpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle is a reference-counted wrapper around a published value — the
// "shared-ptr-style reference" of spec §5's atomic publication handoff. The
// baseline count of 1 represents the release pool's (or the latest slot's)
// own hold; each audio-thread acquirer adds one more while it is reading
// the value.
type Handle[T any] struct {
	value T
	refs  atomic.Int32
}

// NewHandle wraps v with an initial reference count of 1.
func NewHandle[T any](v T) *Handle[T] {
	h := &Handle[T]{value: v}
	h.refs.Store(1)
	return h
}

// Acquire adds a reference and returns h, for the audio thread to hold for
// the duration of one callback.
func (h *Handle[T]) Acquire() *Handle[T] {
	if h == nil {
		return nil
	}
	h.refs.Add(1)
	return h
}

// Release drops a reference acquired by Acquire.
func (h *Handle[T]) Release() {
	if h != nil {
		h.refs.Add(-1)
	}
}

// Value returns the wrapped value.
func (h *Handle[T]) Value() T { return h.value }

func (h *Handle[T]) refCount() int32 { return h.refs.Load() }

// ReleasePool drains retired handles once per second, per spec §5,
// dropping each only once its reference count has fallen to 1 (nothing but
// the pool's own retiring hold remains) — an amortised, real-time-safe
// RCU-style reclaim that never blocks the audio thread.
type ReleasePool[T any] struct {
	mu      sync.Mutex
	pending []*Handle[T]
	stop    chan struct{}
	done    chan struct{}
}

func NewReleasePool[T any]() *ReleasePool[T] {
	return &ReleasePool[T]{stop: make(chan struct{}), done: make(chan struct{})}
}

// Retire hands a handle to the pool for eventual reclamation. Callers must
// not use h directly again; any further access should go through a newly
// Acquire'd reference obtained before Retire was called.
func (p *ReleasePool[T]) Retire(h *Handle[T]) {
	if h == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, h)
	p.mu.Unlock()
}

// Run starts the background drain loop at the given period (spec §5: once
// per second). Call Stop to terminate it.
func (p *ReleasePool[T]) Run(period time.Duration) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.drainOnce()
			}
		}
	}()
}

// Stop terminates the drain loop and waits for it to exit.
func (p *ReleasePool[T]) Stop() {
	close(p.stop)
	<-p.done
}

func (p *ReleasePool[T]) drainOnce() {
	p.mu.Lock()
	defer p.mu.Unlock()
	keep := p.pending[:0]
	for _, h := range p.pending {
		if h.refCount() > 1 {
			keep = append(keep, h)
			continue
		}
		// Reference count is exactly 1 (our own retiring hold): no audio
		// callback still references it, safe to drop.
	}
	p.pending = keep
}

// PendingCount reports how many retired handles are still awaiting drain
// (for tests and diagnostics).
func (p *ReleasePool[T]) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
