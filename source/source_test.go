package source

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jmannall/roomacoustigo/spatial"
)

func TestRegistryRecyclesFreedIDs(t *testing.T) {
	r := NewRegistry(4)
	a := r.AddSource(spatial.NewVec3(0, 0, 0), spatial.Quat{}, Omni)
	r.RemoveSource(a)
	b := r.AddSource(spatial.NewVec3(1, 0, 0), spatial.Quat{}, Omni)
	assert.Equal(t, a, b)
}

func TestUpdateSourceTransformMarksChanged(t *testing.T) {
	r := NewRegistry(4)
	id := r.AddSource(spatial.NewVec3(0, 0, 0), spatial.Quat{}, Omni)
	snaps, _ := r.Snapshot()
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Changed, "newly added source should be changed")

	snaps, _ = r.Snapshot()
	assert.False(t, snaps[0].Changed, "changed flag should clear after a snapshot")

	r.UpdateSourceTransform(id, spatial.NewVec3(2, 0, 0), spatial.Quat{})
	snaps, _ = r.Snapshot()
	assert.True(t, snaps[0].Changed)
}

func TestInputBufferReadZeroFillsOnUnderrun(t *testing.T) {
	b := NewInputBuffer(16)
	b.Submit([]float64{1, 2, 3})

	out := make([]float64, 5)
	n := b.Read(out)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, out)
}

func TestInputBufferRoundTripsWithinCapacity(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		capacity := rapid.IntRange(4, 64).Draw(tt, "capacity")
		n := rapid.IntRange(1, capacity).Draw(tt, "n")
		samples := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(tt, "samples")

		b := NewInputBuffer(capacity)
		b.Submit(samples)
		out := make([]float64, n)
		got := b.Read(out)

		require.Equal(tt, n, got)
		for i := range samples {
			assert.InDelta(tt, samples[i], out[i], 1e-12)
		}
	})
}

func TestCardioidFamilyGainAtPolesMatchesPattern(t *testing.T) {
	front := NewCardioidFamily(Cardioid, 1)
	assert.InDelta(t, 1.0, front.Response(0, 0, 0), 1e-12)
	assert.InDelta(t, 0.0, front.Response(math.Pi, 0, 0), 1e-12)

	omni := NewCardioidFamily(Omni, 1)
	assert.InDelta(t, 1.0, omni.Response(math.Pi, 0, 0), 1e-12)
}

func TestMeasuredOmniOrderMatchesAverageMagnitude(t *testing.T) {
	coeffs := [][]complex128{{complex(2.0, 0)}}
	m := NewMeasured(coeffs)
	got := m.Response(0.7, 1.3, 0)
	assert.Greater(t, got, 0.0)
	// An l=0-only expansion is direction-independent: |2*Y00| = 2/sqrt(4*pi).
	assert.InDelta(t, 2/math.Sqrt(4*math.Pi), got, 1e-12)
}

func TestReverbSourceRingIsEvenlySpacedUnitVectors(t *testing.T) {
	ring := NewReverbSourceRing(6)
	require.Len(t, ring, 6)
	for _, s := range ring {
		assert.InDelta(t, 1.0, s.Direction.Length(), 1e-9)
	}
	assert.InDelta(t, 1.0, ring[0].Direction.Dot(spatial.NewVec3(1, 0, 0)), 1e-9)
}
