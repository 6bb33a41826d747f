// Package airabsorption implements the distance-parameterised one-pole
// low-pass that models atmospheric high-frequency absorption over a
// propagation path (spec §2).
package airabsorption

import (
	"math"

	"github.com/jmannall/roomacoustigo/dsp"
)

// DefaultAttenuationPerMetre is a representative high-frequency absorption
// rate (nepers/metre) for air at room temperature/humidity; chosen so a 10 m
// path noticeably darkens the signal without being physically implausible.
const DefaultAttenuationPerMetre = 0.02

// Filter is a one-pole low-pass whose strength grows with path distance.
type Filter struct {
	pole            dsp.OnePole
	distTarget      float64
	distCurrent     float64
	attenuationPerM float64
}

// NewFilter creates an air-absorption filter with the default attenuation
// rate and zero initial distance (no absorption).
func NewFilter() *Filter {
	return &Filter{attenuationPerM: DefaultAttenuationPerMetre}
}

// SetAttenuationPerMetre overrides the absorption rate (nepers/metre).
func (f *Filter) SetAttenuationPerMetre(a float64) { f.attenuationPerM = a }

// SetTargetDistance sets the path distance (metres) this filter should
// darken for; the actual pole coefficient ramps toward it via Process's
// lerpFactor, same convention as every other per-sample parameter (spec §5).
func (f *Filter) SetTargetDistance(d float64) {
	if d < 0 {
		d = 0
	}
	f.distTarget = d
}

// poleForDistance maps distance to a one-pole coefficient in [0,1):
// larger distance -> coefficient closer to 1 -> stronger high-frequency
// roll-off, asymptotically approaching (but never reaching) full damping.
func (f *Filter) poleForDistance(d float64) float64 {
	a := 1 - math.Exp(-d*f.attenuationPerM)
	if a < 0 {
		a = 0
	}
	if a > 0.9999 {
		a = 0.9999
	}
	return a
}

// Process runs one sample through the filter, advancing the distance
// parameter toward its target by lerpFactor first.
func (f *Filter) Process(x, lerpFactor float64) float64 {
	if f.distCurrent != f.distTarget {
		f.distCurrent += (f.distTarget - f.distCurrent) * lerpFactor
		if math.Abs(f.distTarget-f.distCurrent) < 1e-6 {
			f.distCurrent = f.distTarget
		}
	}
	f.pole.SetCoefficient(f.poleForDistance(f.distCurrent))
	return f.pole.Process(x)
}

// Reset clears filter state (not the configured distance).
func (f *Filter) Reset() { f.pole.Reset() }
