package geq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphicEQUnityGainsReconstructStepSteadyState(t *testing.T) {
	fs := 48000.0
	g := NewGraphicEQ([]float64{200, 1000, 4000}, fs)
	g.SetTargetGains([]float64{1, 1, 1, 1})

	var out float64
	for i := 0; i < 20000; i++ {
		out = g.Process(1.0, 1.0) // lerp=1: gains already at target immediately
	}
	assert.InDelta(t, 1.0, out, 1e-3)
}

func TestGraphicEQZeroGainsYieldZeroOutput(t *testing.T) {
	fs := 48000.0
	g := NewGraphicEQ([]float64{500, 2000}, fs)
	g.SetTargetGains([]float64{0, 0, 0})

	out := g.Process(1.0, 1.0)
	assert.Equal(t, 0.0, out)
	out = g.Process(0.0, 1.0)
	assert.Equal(t, 0.0, out)
}

func TestParamAdvanceConvergesToTarget(t *testing.T) {
	p := NewParam(0)
	p.SetTarget(1)
	for i := 0; i < 1000; i++ {
		p.Advance(0.01)
	}
	assert.InDelta(t, 1.0, p.Current(), 1e-3)
	assert.True(t, p.Equal() || p.Current() != p.Target())
}
