package engine

import (
	"runtime"

	"github.com/jmannall/roomacoustigo/slotpool"
	"github.com/jmannall/roomacoustigo/spatial"
)

// maxImageSources bounds the slot pool's fixed capacity (spec §7 "resource
// exhaustion... surfaced... as a silently dropped path rather than a
// dynamic allocation on the audio thread").
const maxImageSources = 512

// imageSourcePool owns a fixed array of slotpool.Slot and matches each IEM
// cycle's published path keys against the slots currently attached to them
// (spec §4.5): new keys attach into a free slot, matched keys update in
// place, and keys that drop out of this cycle's result start a fade-out
// rather than detaching immediately.
type imageSourcePool struct {
	slots     []*slotpool.Slot
	keyToSlot map[string]int
	free      []int
	removing  map[int]bool
}

func newImageSourcePool(capacity, numBands int, fs, shelvingQ, speedOfSound float64) *imageSourcePool {
	p := &imageSourcePool{
		slots:     make([]*slotpool.Slot, capacity),
		keyToSlot: make(map[string]int, capacity),
		removing:  make(map[int]bool, capacity),
	}
	for i := range p.slots {
		p.slots[i] = slotpool.NewSlot(numBands, fs, shelvingQ, speedOfSound)
		p.free = append(p.free, i)
	}
	return p
}

// Sync reconciles this cycle's solved paths with the attached slots. Called
// from the IEM background thread only, never the audio thread.
func (p *imageSourcePool) Sync(data []*slotpool.ImageSourceData, listenerPos spatial.Vec3) {
	p.reclaim()

	seen := make(map[string]bool, len(data))
	for _, d := range data {
		seen[d.Key] = true
		dist := d.ImagePosition.Sub(listenerPos).Length()

		if idx, ok := p.keyToSlot[d.Key]; ok {
			p.mutate(idx, func(s *slotpool.Slot) { s.Update(d, dist) })
			continue
		}
		if !d.Visible {
			continue
		}
		if len(p.free) == 0 {
			continue // pool exhausted; drop this path for the cycle (spec §7)
		}
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.mutate(idx, func(s *slotpool.Slot) { s.Init(d, dist) })
		p.keyToSlot[d.Key] = idx
	}

	for key, idx := range p.keyToSlot {
		if seen[key] {
			continue
		}
		p.mutate(idx, func(s *slotpool.Slot) { s.Remove() })
		delete(p.keyToSlot, key)
		p.removing[idx] = true
	}
}

// reclaim returns slots whose fade-out has finished (state Idle) to the
// free list, so Sync can hand them to a newly appearing path.
func (p *imageSourcePool) reclaim() {
	for idx := range p.removing {
		if p.slots[idx].State() == slotpool.Idle {
			delete(p.removing, idx)
			p.free = append(p.free, idx)
		}
	}
}

// mutate excludes the audio thread from slot idx for the duration of fn,
// spinning until any in-flight Process call finishes (spec §4.5, §5 "Slot
// access").
func (p *imageSourcePool) mutate(idx int, fn func(*slotpool.Slot)) {
	s := p.slots[idx]
	s.Guard.Block()
	for !s.Guard.Idle() {
		runtime.Gosched()
	}
	fn(s)
	s.Guard.Unblock()
}

// Slots exposes the underlying slot array for the audio thread's per-sample
// processing pass.
func (p *imageSourcePool) Slots() []*slotpool.Slot { return p.slots }
