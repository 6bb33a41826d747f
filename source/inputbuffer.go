package source

import "sync/atomic"

// InputBuffer is a fixed-capacity single-producer/single-consumer ring of
// submitted audio frames (spec "per-source input audio buffer (a ring of
// frames submitted by the host)"). Submit is called by a host thread,
// Read by the audio thread; neither blocks, matching the real-time
// constraint that the audio thread never waits on a lock (spec §5).
type InputBuffer struct {
	buf   []float64
	write atomic.Uint64 // samples submitted so far, monotonic
	read  uint64        // samples consumed so far; owned by the audio thread only
}

// NewInputBuffer allocates a buffer holding up to capacity samples.
func NewInputBuffer(capacity int) *InputBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &InputBuffer{buf: make([]float64, capacity)}
}

// Submit appends frames, overwriting the oldest unread samples if the
// buffer is full (the host is expected to submit at the real-time rate;
// overflow means the audio thread has fallen behind). Returns the number
// of frames written.
func (b *InputBuffer) Submit(frames []float64) int {
	w := b.write.Load()
	for _, f := range frames {
		b.buf[w%uint64(len(b.buf))] = f
		w++
	}
	b.write.Store(w)
	return len(frames)
}

// Read fills out with the next available samples, zero-filling any frames
// not yet submitted (underrun), and returns how many real samples were
// available.
func (b *InputBuffer) Read(out []float64) int {
	available := b.write.Load() - b.read
	if capacity := uint64(len(b.buf)); available > capacity {
		// Overflow: the oldest unread samples were overwritten; skip them.
		b.read += available - capacity
		available = capacity
	}
	n := uint64(len(out))
	got := available
	if got > n {
		got = n
	}
	var i uint64
	for ; i < got; i++ {
		out[i] = b.buf[b.read%uint64(len(b.buf))]
		b.read++
	}
	for ; i < n; i++ {
		out[i] = 0
	}
	return int(got)
}

// Available reports how many submitted samples have not yet been read.
func (b *InputBuffer) Available() int {
	return int(b.write.Load() - b.read)
}

// Reset drops all buffered audio and rewinds both cursors.
func (b *InputBuffer) Reset() {
	for i := range b.buf {
		b.buf[i] = 0
	}
	b.write.Store(0)
	b.read = 0
}
