package fdn

import (
	"math"

	"github.com/jmannall/roomacoustigo/dsp"
	"github.com/jmannall/roomacoustigo/geq"
)

// Channel is one FDN delay line plus its absorption and output reflection
// filters (spec §4.6). The absorption filter's per-band target gain is
// derived from the channel's own delay (in seconds) and the room's target
// T60 so that the recirculating loop's steady-state decay matches T60.
type Channel struct {
	delaySeconds float64
	buffer       *dsp.RingBuffer

	absorption *geq.GraphicEQ
	reflection *geq.GraphicEQ
}

// NewChannel builds a channel with a delayLength-sample line, an absorption
// filter initialised for t60, and a reflection filter initialised flat.
func NewChannel(delayLength int, bandEdgesHz []float64, t60 []float64, fs float64) *Channel {
	c := &Channel{
		delaySeconds: float64(delayLength) / fs,
		buffer:       dsp.NewRingBuffer(delayLength),
		absorption:   geq.NewGraphicEQ(bandEdgesHz, fs),
		reflection:   geq.NewGraphicEQ(bandEdgesHz, fs),
	}
	c.absorption.SetTargetGains(absorptionGainsForT60(c.delaySeconds, t60))
	flat := make([]float64, c.reflection.NumBands())
	for i := range flat {
		flat[i] = 1.0
	}
	c.reflection.SetTargetGains(flat)
	return c
}

// absorptionGainsForT60 implements 10^(-3*delaySeconds/T60(f)) per band
// (spec §4.6), the closed form that makes a loop of this delay length decay
// to the target T60.
func absorptionGainsForT60(delaySeconds float64, t60 []float64) []float64 {
	gains := make([]float64, len(t60))
	for i, t := range t60 {
		if t <= 0 {
			gains[i] = 0
			continue
		}
		gains[i] = math.Pow(10, -3*delaySeconds/t)
	}
	return gains
}

// SetTargetT60 updates the absorption filter's target gains for a new
// decay time, without resetting filter or delay-line state.
func (c *Channel) SetTargetT60(t60 []float64) {
	c.absorption.SetTargetGains(absorptionGainsForT60(c.delaySeconds, t60))
}

// SetTargetReflectionGains updates the output reflection filter's target
// gains, returning true if every current and target gain is now zero (the
// channel contributes nothing audible to the reverb-source output).
func (c *Channel) SetTargetReflectionGains(gains []float64) bool {
	c.reflection.SetTargetGains(gains)
	return c.reflection.AllGainsZero()
}

// Read peeks the delay line's oldest sample (the one the next Write call
// will overwrite) and runs it through the absorption filter. The read is
// split from the write so the feedback matrix can be computed from every
// channel's output before any channel's buffer advances (spec §4.6 steps
// 1-2).
func (c *Channel) Read(lerpFactor float64) float64 {
	return c.absorption.Process(c.buffer.At(c.buffer.Len()-1), lerpFactor)
}

// Write replaces the channel's oldest delay-line sample with the combined
// feedback-plus-input sample and advances the write/read index (spec §4.6
// step 2-3).
func (c *Channel) Write(sample float64) {
	c.buffer.Push(sample)
}

// ProcessOutput runs one late-reverb sample through the output reflection
// filter (spec §4.6, applied after the feedback pass).
func (c *Channel) ProcessOutput(y float64, lerpFactor float64) float64 {
	return c.reflection.Process(y, lerpFactor)
}

// SetQ reconfigures both filters' crossover resonance (spec §6 "shelving_Q
// parameterises all EQs").
func (c *Channel) SetQ(q float64) {
	c.absorption.SetQ(q)
	c.reflection.SetQ(q)
}

// Reset zeroes the delay line and both filters' states.
func (c *Channel) Reset() {
	c.buffer.Reset()
	c.absorption.Reset()
	c.reflection.Reset()
}
