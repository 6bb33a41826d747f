package fdn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDelayLengthsAreMutuallyCoprime(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		perDim := rapid.IntRange(1, 5).Draw(tt, "perDim")
		numDims := rapid.IntRange(1, 3).Draw(tt, "numDims")
		numChannels := perDim * numDims
		dims := make([]float64, numDims)
		for i := range dims {
			dims[i] = rapid.Float64Range(1, 10).Draw(tt, "dim")
		}
		rng := rand.New(rand.NewSource(1))
		lengths := DelayLengths(dims, numChannels, 48000, func(int) float64 {
			return rng.Float64()*0.2 - 0.1
		})
		require.Len(tt, lengths, numChannels)
		for i := range lengths {
			for j := i + 1; j < len(lengths); j++ {
				assert.Equal(tt, 1, gcd(lengths[i], lengths[j]),
					"lengths %d and %d share a common factor", lengths[i], lengths[j])
			}
		}
	})
}

func TestMakeMutuallyPrimeFixesSharedFactors(t *testing.T) {
	lengths := []int{100, 200, 150}
	require.False(t, mutuallyPrime(lengths))
	makeMutuallyPrime(lengths)
	assert.True(t, mutuallyPrime(lengths))
}

func TestHouseholderNegatesInputSum(t *testing.T) {
	h := NewHouseholder(4)
	y := []float64{1, 2, 3, 4}
	x := make([]float64, 4)
	h.Apply(y, x)

	var sumY, sumX float64
	for _, v := range y {
		sumY += v
	}
	for _, v := range x {
		sumX += v
	}
	assert.InDelta(t, -sumY, sumX, 1e-9)
}

func TestRandomOrthogonalColumnsAreOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewRandomOrthogonal(5, rng)

	col := func(j int) []float64 {
		v := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v[i] = r.m.At(i, j)
		}
		return v
	}

	for j := 0; j < 5; j++ {
		cj := col(j)
		assert.InDelta(t, 1.0, math.Sqrt(dot(cj, cj)), 1e-9)
		for k := j + 1; k < 5; k++ {
			assert.InDelta(t, 0.0, dot(cj, col(k)), 1e-9)
		}
	}
}

func TestFDNEnergyDecaysAfterImpulse(t *testing.T) {
	fs := 48000.0
	rng := rand.New(rand.NewSource(7))
	f := New(8, []float64{2.3, 1.5, 5.6, 2.3, 1.5, 5.6, 2.3, 1.5}, nil, []float64{0.56}, fs, MatrixHouseholder, rng)

	input := make([]float64, 8)
	input[0] = 1.0
	f.ProcessSample(input, 1.0)
	input[0] = 0

	windowEnergy := func(nSamples int) float64 {
		var e float64
		for i := 0; i < nSamples; i++ {
			out := f.ProcessSample(input, 1.0)
			for _, v := range out {
				e += v * v
			}
		}
		return e
	}

	// Let the impulse diffuse across every channel and settle into a steady
	// decaying tail before comparing two later, equally-sized windows: early
	// on, energy is still spreading from the single excited channel into the
	// rest and can locally rise before the tail's overall decay dominates.
	windowEnergy(20000)
	early := windowEnergy(4000)
	late := windowEnergy(4000)
	assert.Greater(t, early, late, "late-reverb energy should decay once the tail has settled")
}

func TestFDNReflectionGainsReportAllZeroOnceRampCompletes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := New(4, []float64{2.0, 2.0}, []float64{500, 4000}, []float64{0.4, 0.4, 0.4}, 48000, MatrixHouseholder, rng)

	zero := f.SetChannelReflectionGains(0, []float64{0, 0, 0})
	assert.False(t, zero, "gains start at 1.0 and haven't ramped down yet")

	for i := 0; i < 5000; i++ {
		f.channels[0].reflection.Process(0, 0.05)
	}
	assert.True(t, f.channels[0].reflection.AllGainsZero())

	nonZero := f.SetChannelReflectionGains(1, []float64{0.5, 0, 0})
	assert.False(t, nonZero)
}
