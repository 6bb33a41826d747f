package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiquadIdentityPassesSignalUnchanged(t *testing.T) {
	var b Biquad
	b.SetCoefficients(1, 0, 0, 0, 0)
	for _, x := range []float64{0, 1, -1, 0.5, -0.25, 0} {
		assert.InDelta(t, x, b.Process(x), 1e-12)
	}
}

func TestBiquadMatchesReferenceDifferenceEquation(t *testing.T) {
	var b Biquad
	b0, b1, b2, a1, a2 := 0.2, 0.3, 0.1, -0.4, 0.05
	b.SetCoefficients(b0, b1, b2, a1, a2)

	inputs := []float64{1, 0, 0, 0.5, -0.3, 0.8, 0, 0}
	var x1, x2, y1, y2 float64
	for _, x := range inputs {
		want := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		got := b.Process(x)
		assert.InDelta(t, want, got, 1e-9)
		x2, x1 = x1, x
		y2, y1 = y1, want
	}
}

func TestOnePoleStepResponseApproachesUnity(t *testing.T) {
	var p OnePole
	p.SetCutoff(1000.0 / 48000.0)
	var y float64
	for i := 0; i < 10000; i++ {
		y = p.Process(1.0)
	}
	assert.InDelta(t, 1.0, y, 1e-6)
}

func TestFlushDenormalClampsSubnormalsAndHazards(t *testing.T) {
	assert.Equal(t, 0.0, FlushDenormal(1e-320))
	assert.Equal(t, 1.0, FlushDenormal(1.0))
	assert.Equal(t, 0.0, FlushDenormal(0))
	assert.Equal(t, 0.0, FlushDenormal(math.NaN()))
	assert.Equal(t, 0.0, FlushDenormal(math.Inf(1)))
}
