package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRingBufferPushReturnsOldest(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 4; i++ {
		old := r.Push(float64(i + 1))
		assert.Equal(t, 0.0, old)
	}
	// Buffer now holds [1,2,3,4]; next push at index 0 should return 1.
	old := r.Push(100)
	assert.Equal(t, 1.0, old)
}

func TestRingBufferAtMatchesReferenceDelayLine(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(tt, "n")
		inputs := rapid.SliceOfN(rapid.Float64Range(-1, 1), 1, 64).Draw(tt, "inputs")

		r := NewRingBuffer(n)
		reference := make([]float64, 0, len(inputs))

		for _, x := range inputs {
			r.Push(x)
			reference = append(reference, x)
			for d := 0; d < n; d++ {
				idx := len(reference) - 1 - d
				var want float64
				if idx >= 0 {
					want = reference[idx]
				}
				require.InDelta(tt, want, r.At(d), 1e-12)
			}
		}
	})
}

func TestRingBufferReset(t *testing.T) {
	r := NewRingBuffer(3)
	r.Push(1)
	r.Push(2)
	r.Reset()
	for d := 0; d < 3; d++ {
		assert.Equal(t, 0.0, r.At(d))
	}
}
