package fdn

import (
	"math/rand"

	"github.com/jmannall/roomacoustigo/dsp"
)

// MatrixKind selects which feedback matrix an FDN uses (spec §4.6).
type MatrixKind int

const (
	MatrixHouseholder MatrixKind = iota
	MatrixRandomOrthogonal
)

// FDN is a bank of N coupled delay-line channels rendering the late
// reverberation tail (spec §4.6).
type FDN struct {
	channels    []*Channel
	matrix      FeedbackMatrix
	bandEdgesHz []float64

	y []float64 // per-channel output from the read pass
	x []float64 // per-channel feedback input to the write pass
}

// New builds an FDN sized for numChannels, with delay lengths derived from
// the room's primary dimensions and per-band target T60, coupled by the
// requested feedback matrix kind.
func New(numChannels int, dimensions []float64, bandEdgesHz []float64, t60 []float64, fs float64, kind MatrixKind, rng *rand.Rand) *FDN {
	lengths := DelayLengths(dimensions, numChannels, fs, func(int) float64 {
		return rng.Float64()*0.2 - 0.1
	})
	if lengths == nil {
		lengths = defaultLengths(numChannels, fs)
	}

	channels := make([]*Channel, numChannels)
	for i, l := range lengths {
		channels[i] = NewChannel(l, bandEdgesHz, t60, fs)
	}

	var matrix FeedbackMatrix
	switch kind {
	case MatrixRandomOrthogonal:
		matrix = NewRandomOrthogonal(numChannels, rng)
	default:
		matrix = NewHouseholder(numChannels)
	}

	return &FDN{
		channels:    channels,
		matrix:      matrix,
		bandEdgesHz: bandEdgesHz,
		y:           make([]float64, numChannels),
		x:           make([]float64, numChannels),
	}
}

// defaultLengths falls back to an even spread of coprime lengths around a
// 30ms mean when the caller has no room dimensions available yet.
func defaultLengths(numChannels int, fs float64) []int {
	lengths := make([]int, numChannels)
	base := 0.03 * fs
	for i := range lengths {
		lengths[i] = int(base) + i*7
	}
	if !mutuallyPrime(lengths) {
		makeMutuallyPrime(lengths)
	}
	return lengths
}

// SetShelvingQ reconfigures every channel's absorption/reflection crossover
// resonance (spec §6 "shelving_Q parameterises all EQs").
func (f *FDN) SetShelvingQ(q float64) {
	for _, c := range f.channels {
		c.SetQ(q)
	}
}

// NumChannels reports how many parallel delay lines the FDN holds.
func (f *FDN) NumChannels() int { return len(f.channels) }

// SetTargetT60 updates every channel's absorption filter for a new per-band
// decay time.
func (f *FDN) SetTargetT60(t60 []float64) {
	for _, c := range f.channels {
		c.SetTargetT60(t60)
	}
}

// SetChannelReflectionGains updates one channel's output reflection filter
// (the per-direction absorption of a reverb source, spec §4.2 step f),
// returning true if that channel is now fully silent.
func (f *FDN) SetChannelReflectionGains(channel int, gains []float64) bool {
	if channel < 0 || channel >= len(f.channels) {
		return true
	}
	return f.channels[channel].SetTargetReflectionGains(gains)
}

// ProcessSample runs one sample through the feedback loop: read every
// channel's absorbed output, compute the feedback vector via the matrix,
// write input+feedback back into each delay line, then run each channel's
// reflection filter on its output (spec §4.6 steps 1-3, output stage).
func (f *FDN) ProcessSample(inputs []float64, lerpFactor float64) []float64 {
	for i, c := range f.channels {
		f.y[i] = c.Read(lerpFactor)
	}

	f.matrix.Apply(f.y, f.x)

	out := make([]float64, len(f.channels))
	for i, c := range f.channels {
		in := 0.0
		if i < len(inputs) {
			in = inputs[i]
		}
		c.Write(dsp.FlushDenormal(f.x[i] + in))
		out[i] = c.ProcessOutput(f.y[i], lerpFactor)
	}
	return out
}

// Reset zeroes every channel's delay line and filter state (spec §4.6
// "Reset semantics": new room geometry or a sample-rate change).
func (f *FDN) Reset() {
	for _, c := range f.channels {
		c.Reset()
	}
}
