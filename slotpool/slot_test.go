package slotpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/room"
)

func TestSlotAttachesAndRampsGainToUnity(t *testing.T) {
	s := NewSlot(2, 48000, 0, 0)
	data := &ImageSourceData{
		Key:        "s1",
		Absorption: room.NewAbsorption([]float64{0.1, 0.1}, 4),
	}
	s.Init(data, 2.0)
	require.Equal(t, Attached, s.State())

	var y float64
	for i := 0; i < 5000; i++ {
		y = s.Process(1.0, 0.05)
	}
	assert.Greater(t, y, 0.5)
}

func TestSlotRemoveDetachesAfterGainDecays(t *testing.T) {
	s := NewSlot(2, 48000, 0, 0)
	data := &ImageSourceData{Absorption: room.NewAbsorption([]float64{0.1, 0.1}, 4)}
	s.Init(data, 2.0)
	for i := 0; i < 2000; i++ {
		s.Process(1.0, 0.05)
	}
	s.Remove()
	for i := 0; i < 5000 && s.State() == Attached; i++ {
		s.Process(1.0, 0.05)
	}
	assert.Equal(t, Idle, s.State())
}

func TestSlotQueuesModelChangeDuringCrossfade(t *testing.T) {
	s := NewSlot(1, 48000, 0, 0)
	data := &ImageSourceData{
		Absorption:   room.NewAbsorption([]float64{0.1}, 4),
		DiffractKind: diffraction.KindAttenuate,
	}
	s.Init(data, 1.0)

	data2 := *data
	data2.DiffractKind = diffraction.KindLPF
	s.Update(&data2, 1.0)
	assert.True(t, s.crossfading)

	data3 := *data
	data3.DiffractKind = diffraction.KindUDFA
	s.Update(&data3, 1.0)
	assert.True(t, s.hasQueued)

	for i := 0; i < modelCrossfadeSamples+10; i++ {
		s.Process(0.1, 0.1)
	}
	assert.True(t, s.crossfading) // the queued change should now be fading
}

func TestSlotAppliesPropagationDelay(t *testing.T) {
	const fs = 48000.0
	const delaySamples = 10.0
	const speed = 34.3 // slow speed of sound keeps the equivalent distance tiny
	distance := delaySamples * speed / fs // ~7mm: air absorption at this range is negligible

	s := NewSlot(2, fs, 0, speed)
	data := &ImageSourceData{
		Key:          "direct",
		Absorption:   room.NewAbsorption([]float64{0, 0}, 4), // alpha=0 -> reflection coeff 1.0
		DiffractKind: diffraction.KindNone,
	}
	s.Init(data, distance)
	require.Equal(t, Attached, s.State())

	// lerp=1.0 snaps gain, absorption and delay targets on the very first call.
	const n = 16
	var out [n]float64
	for i := 0; i < n; i++ {
		x := 0.0
		if i == 0 {
			x = 1.0
		}
		out[i] = s.Process(x, 1.0)
	}

	for i, y := range out {
		if i < int(delaySamples) {
			assert.InDeltaf(t, 0, y, 1e-6, "out[%d] should be ~0 before the propagation delay", i)
		}
	}
	assert.InDelta(t, 1.0, out[int(delaySamples)], 1e-3)
}

func TestAccessGuardBlocksNewEntriesAndTracksIdle(t *testing.T) {
	g := NewAccessGuard()
	require.True(t, g.Enter())
	assert.False(t, g.Idle())
	g.Block()
	assert.False(t, g.Enter())
	g.Exit()
	assert.True(t, g.Idle())
	g.Unblock()
	assert.True(t, g.Enter())
}

func TestReleasePoolDrainsOnlyUnreferencedHandles(t *testing.T) {
	pool := NewReleasePool[int]()
	h1 := NewHandle(1)
	h2 := NewHandle(2)
	ref := h2.Acquire()

	pool.Retire(h1)
	pool.Retire(h2)
	pool.drainOnce()
	assert.Equal(t, 1, pool.PendingCount())

	ref.Release()
	pool.drainOnce()
	assert.Equal(t, 0, pool.PendingCount())
}
