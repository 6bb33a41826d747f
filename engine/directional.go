package engine

import (
	"math"

	"github.com/jmannall/roomacoustigo/spatial"
)

// SpatialisationMode selects the directional-rendering quality tier (spec
// §6 "update_spatialisation_mode").
type SpatialisationMode int

const (
	SpatialisationNone SpatialisationMode = iota
	SpatialisationPerformance
	SpatialisationQuality
)

// DirectionalRenderer is the third-party HRTF/ILD binaural rendering
// service spec §1 places out of scope for this repo: "HRTF/ILD data
// loading and the binaural convolution kernel (treated as a third-party
// directional-rendering service)". The engine depends only on this
// interface; cmd/roomctl supplies a stub implementation for inspection.
type DirectionalRenderer interface {
	// LoadSpatialisationFiles loads the HRTF, near-field ILD, and
	// spatialisation ILD tables from the given paths (spec §6
	// "load_spatialisation_files"), resampling HRTFs by hrtfResampleStep.
	// Returns false on any load failure.
	LoadSpatialisationFiles(hrtfResampleStep int, paths [3]string) bool

	// Spatialise renders one mono sample as arriving from the given unit
	// direction (listener-relative, right-handed) at the requested
	// spatialisation mode, returning a stereo pair.
	Spatialise(direction spatial.Vec3, mode SpatialisationMode, x float64) (left, right float64)
}

// NullRenderer is a DirectionalRenderer that never loads real HRTF data and
// renders a simple equal-power pan as a placeholder, so the engine remains
// usable (e.g. for geometry/DSP-chain testing) without a real third-party
// spatialiser wired in.
type NullRenderer struct{}

func (NullRenderer) LoadSpatialisationFiles(int, [3]string) bool { return true }

func (NullRenderer) Spatialise(direction spatial.Vec3, _ SpatialisationMode, x float64) (float64, float64) {
	d := direction.Normalized()
	// Equal-power pan from the direction's lateral (X) component, ignoring
	// elevation/front-back — a placeholder stand-in for true HRTF
	// filtering, not a perceptual model.
	pan := clamp01((d.X + 1) / 2)
	left := x * math.Cos(math.Pi / 2 * pan)
	right := x * math.Sin(math.Pi / 2 * pan)
	return left, right
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
