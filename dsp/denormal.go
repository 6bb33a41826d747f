package dsp

import "math"

// minNormalFloat64 is the smallest positive normalised float64; anything
// smaller (in magnitude) is a subnormal and gets flushed to zero.
const minNormalFloat64 = 2.2250738585072014e-308

// FlushDenormal clamps a subnormal float64 to zero. The audio-rate inner
// loops of every filter call this on their running state after each sample,
// per spec §4.4 ("denormals are explicitly flushed to zero around every
// audio-rate inner loop") and §7 (numerical hazards never propagate NaN/Inf
// either).
func FlushDenormal(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x != 0 && math.Abs(x) < minNormalFloat64 {
		return 0
	}
	return x
}

// FlushDenormalSlice flushes every sample of a buffer in place.
func FlushDenormalSlice(buf []float64) {
	for i, x := range buf {
		buf[i] = FlushDenormal(x)
	}
}

// HasHardwareFTZ reports whether the host CPU exposes a flush-to-zero mode
// this process could in principle enable (SSE2 on amd64; builds for every
// other architecture report true). Go exposes no portable way to toggle MXCSR/FPCR without assembly,
// so the engine always runs the software clamp above; this flag exists so a
// future platform-specific build tag can skip the software check when the
// hardware mode is confirmed enabled, without changing the numerical
// contract in the meantime.
func HasHardwareFTZ() bool {
	return hasHardwareFTZ()
}
