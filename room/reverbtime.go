package room

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ReverbTimeModel selects the statistical reverberation-time formula used by
// GetReverbTime (spec §4.1 "Reverberation time estimate").
type ReverbTimeModel int

const (
	Sabine ReverbTimeModel = iota
	Eyring
)

// GetReverbTime estimates the per-band T60 (seconds) for an enclosure of the
// given volume (cubic metres), from the area-weighted mean absorption
// coefficient over every wall currently in the room. Bands with zero total
// wall area return 0.
func (r *Room) GetReverbTime(volume float64, model ReverbTimeModel) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totalArea := 0.0
	weighted := make([]float64, r.numBands)
	for _, w := range r.walls {
		a := w.Absorption.Area()
		totalArea += a
		floats.AddScaled(weighted, a, w.Absorption.AbsorptionCoefficients())
	}

	t60 := make([]float64, r.numBands)
	if totalArea <= 0 {
		return t60
	}
	for k := range t60 {
		meanAlpha := weighted[k] / totalArea
		switch model {
		case Eyring:
			// T60 = -0.161*V / (S*ln(1-mean_alpha)); degenerates toward Sabine
			// for small mean_alpha and diverges (returns 0) at full absorption.
			if meanAlpha >= 1 {
				t60[k] = 0
				continue
			}
			t60[k] = -0.161 * volume / (totalArea * math.Log(1-meanAlpha))
		default:
			if meanAlpha <= 0 {
				t60[k] = math.Inf(1)
				continue
			}
			t60[k] = 0.161 * volume / (totalArea * meanAlpha)
		}
	}
	return t60
}
