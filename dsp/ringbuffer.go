// Package dsp provides the fixed-size, allocation-free building blocks the
// audio thread runs on every callback: ring buffers, IIR biquad sections, and
// an FIR convolver. None of these allocate after construction, and all flush
// denormals on their hot paths (spec §4.4 numerical-hazard handling).
package dsp

// RingBuffer is a fixed-capacity circular sample buffer used by delay lines
// (FDN channels, dsp.Delay). Capacity is fixed at construction
// so the audio thread never allocates.
type RingBuffer struct {
	buf   []float64
	write int
}

// NewRingBuffer allocates a ring buffer of the given capacity, zero-filled.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{buf: make([]float64, capacity)}
}

// Len returns the buffer's fixed capacity.
func (r *RingBuffer) Len() int { return len(r.buf) }

// Push writes x at the current write position and advances it, returning the
// sample that was just overwritten (the "oldest" sample, i.e. read-before-
// write at this exact index) — this is the access pattern FDN channels need:
// read then overwrite in one index step (spec §4.6 step 1-2).
func (r *RingBuffer) Push(x float64) float64 {
	old := r.buf[r.write]
	r.buf[r.write] = x
	r.write++
	if r.write >= len(r.buf) {
		r.write = 0
	}
	return old
}

// At returns the sample `delay` steps behind the current write position,
// without mutating state.
func (r *RingBuffer) At(delay int) float64 {
	n := len(r.buf)
	idx := r.write - 1 - delay
	idx %= n
	if idx < 0 {
		idx += n
	}
	return r.buf[idx]
}

// Reset zeroes the buffer and rewinds the write cursor, matching the FDN's
// reset() semantics on room-geometry change or sample-rate change (spec
// §4.6 "Reset semantics").
func (r *RingBuffer) Reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.write = 0
}
