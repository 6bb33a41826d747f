package geq

import "github.com/jmannall/roomacoustigo/dsp"

// Param is a scalar whose target may be written by any thread while only
// the audio thread reads/advances current — the parameter-interpolation
// primitive of spec §5 ("Parameter interpolation").
type Param struct {
	target  float64
	current float64
}

// NewParam creates a parameter already at the given value (no initial ramp).
func NewParam(v float64) Param { return Param{target: v, current: v} }

// SetTarget updates the value this parameter ramps toward.
func (p *Param) SetTarget(v float64) { p.target = v }

// Target returns the most recently set target.
func (p *Param) Target() float64 { return p.target }

// Current returns the last interpolated value without advancing it.
func (p *Param) Current() float64 { return p.current }

// Equal reports whether target and current already agree, letting callers
// short-circuit interpolation (spec §5 "parameters_equal").
func (p *Param) Equal() bool { return p.current == p.target }

// Advance steps current toward target by lerpFactor of the remaining
// distance and returns the new current value.
func (p *Param) Advance(lerpFactor float64) float64 {
	if p.Equal() {
		return p.current
	}
	p.current += (p.target - p.current) * lerpFactor
	if (p.target-p.current) < 1e-9 && (p.current-p.target) < 1e-9 {
		p.current = p.target
	}
	return p.current
}

// GraphicEQ applies an independent, smoothly-interpolated gain per
// frequency band, by splitting the signal through a cascade of
// Linkwitz-Riley crossovers and recombining weighted band outputs (spec §2,
// used for wall absorption, the UTD gain bank, and FDN per-channel EQ).
type GraphicEQ struct {
	fs         float64
	bands      []Param
	crossovers []*lrSplit
}

// NewGraphicEQ builds a GraphicEQ with len(bandEdgesHz)+1 bands, split at the
// given crossover frequencies (strictly increasing, all below fs/2), using
// the default Butterworth crossover Q. Use SetQ to reparameterise it (spec
// §6 "shelving_Q parameterises all EQs").
func NewGraphicEQ(bandEdgesHz []float64, fs float64) *GraphicEQ {
	g := &GraphicEQ{
		fs:         fs,
		bands:      make([]Param, len(bandEdgesHz)+1),
		crossovers: make([]*lrSplit, len(bandEdgesHz)),
	}
	for i, fc := range bandEdgesHz {
		g.crossovers[i] = newLRSplit(fc, fs)
	}
	for i := range g.bands {
		g.bands[i] = NewParam(1.0)
	}
	return g
}

// NumBands returns the number of gain bands.
func (g *GraphicEQ) NumBands() int { return len(g.bands) }

// SetQ reconfigures every crossover stage's resonance at its existing
// cutoff frequency (spec §6 shelving_Q), without resetting filter state.
func (g *GraphicEQ) SetQ(q float64) {
	for _, c := range g.crossovers {
		c.setCutoff(c.fc, g.fs, q)
	}
}

// SetTargetGains installs new target gains, one per band. Shorter slices
// leave trailing bands unchanged; per spec §4.1 failure semantics a length
// mismatch is the caller's responsibility to avoid (engine-level calls
// reject mismatched absorption vectors before reaching here).
func (g *GraphicEQ) SetTargetGains(gains []float64) {
	n := len(gains)
	if n > len(g.bands) {
		n = len(g.bands)
	}
	for i := 0; i < n; i++ {
		g.bands[i].SetTarget(gains[i])
	}
}

// SetTargetGain sets a single band's target gain.
func (g *GraphicEQ) SetTargetGain(band int, gain float64) {
	if band < 0 || band >= len(g.bands) {
		return
	}
	g.bands[band].SetTarget(gain)
}

// Process runs one sample through the EQ.
func (g *GraphicEQ) Process(x float64, lerpFactor float64) float64 {
	remainder := x
	var out float64
	for i, c := range g.crossovers {
		low, high := c.process(remainder)
		out += low * g.bands[i].Advance(lerpFactor)
		remainder = high
	}
	out += remainder * g.bands[len(g.bands)-1].Advance(lerpFactor)
	return dsp.FlushDenormal(out)
}

// AllGainsZero reports whether every band's current and target gain are
// both zero, letting callers skip processing a filter that contributes
// nothing audible (spec "SetTargetReflectionFilter" return value).
func (g *GraphicEQ) AllGainsZero() bool {
	for i := range g.bands {
		if g.bands[i].Target() != 0 || g.bands[i].Current() != 0 {
			return false
		}
	}
	return true
}

// Reset clears all internal filter state (not target gains).
func (g *GraphicEQ) Reset() {
	for _, c := range g.crossovers {
		c.reset()
	}
}
