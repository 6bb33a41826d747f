package slotpool

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a real-time-safe mutual exclusion primitive for code paths
// that must never call into the scheduler's blocking futex (the audio
// thread waiting on the worker pool's task counter, spec §5 "the audio
// thread waits on a spin counter until all enqueued tasks complete").
type SpinLock struct {
	locked atomic.Bool
}

func (s *SpinLock) Lock() {
	for !s.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (s *SpinLock) Unlock() { s.locked.Store(false) }

// TryLock attempts to acquire without spinning, returning false if already
// held.
func (s *SpinLock) TryLock() bool { return s.locked.CompareAndSwap(false, true) }

// WaitCounter is the audio thread's spin-wait on outstanding worker-pool
// tasks (spec §5): the dispatcher increments Add before enqueueing each
// task, each worker calls Done on completion, and the audio thread spins on
// Wait before mixing partial outputs.
type WaitCounter struct {
	n atomic.Int32
}

func (w *WaitCounter) Add(delta int32) { w.n.Add(delta) }
func (w *WaitCounter) Done()           { w.n.Add(-1) }

// Wait spins until every outstanding task has called Done.
func (w *WaitCounter) Wait() {
	for w.n.Load() > 0 {
		runtime.Gosched()
	}
}
