package dsp

// Biquad is a single second-order IIR section in Direct Form I, the unit
// every shelving/graphic-EQ band, air-absorption filter, and UTD band gain
// is built from. Coefficients are normalised (a0 == 1).
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// SetCoefficients installs new (already-normalised) coefficients. Callers
// that need smooth parameter changes should crossfade at a higher level
// (spec §4.5's slot crossfade queue) rather than snapping coefficients.
func (b *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float64) {
	b.b0, b.b1, b.b2, b.a1, b.a2 = b0, b1, b2, a1, a2
}

// Process runs one sample through the section.
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	y = FlushDenormal(y)
	b.y2, b.y1 = b.y1, y
	return y
}

// Reset zeroes the section's filter state (not its coefficients).
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// OnePole is a first-order IIR low-pass section, used by the air-absorption
// filter (spec §2 "distance-parameterised one-pole low-pass") and the LPF
// diffraction model (spec §4.4).
type OnePole struct {
	a    float64 // pole coefficient, in [0,1)
	prev float64
}

// SetCutoff configures the pole from a normalised cutoff frequency
// (fc/fs, typically << 0.5) using the standard one-pole low-pass mapping.
func (p *OnePole) SetCutoff(fcOverFs float64) {
	// b = exp(-2*pi*fc/fs) keeps the section stable for any fc in [0, fs/2).
	p.a = onePoleCoefficient(fcOverFs)
}

// SetCoefficient installs the raw pole coefficient directly (used when the
// caller already derived it, e.g. from a distance-parameterised time
// constant in the air-absorption model).
func (p *OnePole) SetCoefficient(a float64) { p.a = a }

func (p *OnePole) Process(x float64) float64 {
	y := (1-p.a)*x + p.a*p.prev
	y = FlushDenormal(y)
	p.prev = y
	return y
}

func (p *OnePole) Reset() { p.prev = 0 }
