// Package slotpool implements the image-source slot state machine (spec
// §4.5) and the lock-free publication primitives the audio thread and the
// IEM background thread use to hand off image-source data without either
// side ever blocking on a mutex (spec §5).
package slotpool

import "sync/atomic"

// AccessGuard lets the IEM background thread exclude new audio-thread
// acquisitions of a slot before mutating it, without the audio thread ever
// taking a lock (spec §5 "Slot access"). The audio thread calls Enter/Exit
// around its use of the slot; the IEM calls Block, waits for Idle, mutates,
// then Unblock.
type AccessGuard struct {
	open  atomic.Bool
	inUse atomic.Int32
}

// NewAccessGuard returns a guard that admits audio-thread acquisitions.
func NewAccessGuard() *AccessGuard {
	g := &AccessGuard{}
	g.open.Store(true)
	return g
}

// Enter attempts to acquire the slot for one audio-rate use. It returns
// false (and does not increment the in-use counter) if the IEM has closed
// the gate.
func (g *AccessGuard) Enter() bool {
	if !g.open.Load() {
		return false
	}
	g.inUse.Add(1)
	if !g.open.Load() {
		// Closed the gate while we were entering; back out so Idle still
		// observes zero eventually.
		g.inUse.Add(-1)
		return false
	}
	return true
}

// Exit releases one audio-rate use acquired by a successful Enter.
func (g *AccessGuard) Exit() { g.inUse.Add(-1) }

// Block closes the gate to new acquisitions. Safe to call from the IEM
// thread only.
func (g *AccessGuard) Block() { g.open.Store(false) }

// Unblock reopens the gate.
func (g *AccessGuard) Unblock() { g.open.Store(true) }

// Idle reports whether no audio-rate use currently holds the slot. The IEM
// must observe this before mutating slot state it doesn't otherwise guard.
func (g *AccessGuard) Idle() bool { return g.inUse.Load() == 0 }
