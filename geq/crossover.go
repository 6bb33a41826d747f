// Package geq implements the multi-band graphic equaliser and the
// Linkwitz-Riley crossover bank it is built from (spec §2, §4.4 UTD,
// §4.5 wall-absorption EQ, §4.6 FDN per-channel absorption/output EQ).
package geq

import (
	"math"

	"github.com/jmannall/roomacoustigo/dsp"
)

// lrSplit is one 4th-order Linkwitz-Riley crossover stage: a 2nd-order
// Butterworth low-pass and high-pass, each applied twice in cascade, so that
// low+high reconstructs the input with a flat magnitude response — the
// defining property of an LR crossover (GLOSSARY "Linkwitz-Riley bank").
// DefaultQ is the classic Butterworth Q (1/sqrt(2)) each crossover stage
// uses unless overridden by SetQ.
const DefaultQ = 0.70710678118654752440

type lrSplit struct {
	fc, fs float64
	lowA, lowB   dsp.Biquad
	highA, highB dsp.Biquad
}

func newLRSplit(fc, fs float64) *lrSplit {
	s := &lrSplit{}
	s.setCutoff(fc, fs, DefaultQ)
	return s
}

func (s *lrSplit) setCutoff(fc, fs, q float64) {
	s.fc, s.fs = fc, fs
	lb0, lb1, lb2, la1, la2 := butterworth2Lowpass(fc, fs, q)
	hb0, hb1, hb2, ha1, ha2 := butterworth2Highpass(fc, fs, q)
	s.lowA.SetCoefficients(lb0, lb1, lb2, la1, la2)
	s.lowB.SetCoefficients(lb0, lb1, lb2, la1, la2)
	s.highA.SetCoefficients(hb0, hb1, hb2, ha1, ha2)
	s.highB.SetCoefficients(hb0, hb1, hb2, ha1, ha2)
}

func (s *lrSplit) process(x float64) (low, high float64) {
	low = s.lowB.Process(s.lowA.Process(x))
	high = s.highB.Process(s.highA.Process(x))
	return
}

func (s *lrSplit) reset() {
	s.lowA.Reset()
	s.lowB.Reset()
	s.highA.Reset()
	s.highB.Reset()
}

// butterworth2Lowpass/Highpass return RBJ-cookbook 2nd-order resonant
// low/high-pass coefficients at the given Q, normalised so a0 == 1. Q =
// DefaultQ reproduces the classic (maximally flat) Butterworth response;
// the shelving_Q knob (spec §6 "shelving_Q parameterises all EQs") lets the
// host trade a flatter combined response for steeper per-band separation.
func butterworth2Lowpass(fc, fs, q float64) (b0, b1, b2, a1, a2 float64) {
	return butterworth2(fc, fs, q, false)
}

func butterworth2Highpass(fc, fs, q float64) (b0, b1, b2, a1, a2 float64) {
	return butterworth2(fc, fs, q, true)
}

func butterworth2(fc, fs, q float64, highpass bool) (b0, b1, b2, a1, a2 float64) {
	if fc <= 0 {
		fc = 1
	}
	if fc >= fs/2 {
		fc = fs/2 - 1
	}
	if q <= 0 {
		q = DefaultQ
	}
	w0 := 2 * math.Pi * fc / fs
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)

	var B0, B1, B2, A0, A1, A2 float64
	if highpass {
		B0 = (1 + cosw0) / 2
		B1 = -(1 + cosw0)
		B2 = (1 + cosw0) / 2
	} else {
		B0 = (1 - cosw0) / 2
		B1 = 1 - cosw0
		B2 = (1 - cosw0) / 2
	}
	A0 = 1 + alpha
	A1 = -2 * cosw0
	A2 = 1 - alpha

	return B0 / A0, B1 / A0, B2 / A0, A1 / A0, A2 / A0
}
