package dsp

// Delay is a fixed-capacity, fractional-sample delay line. It is the
// building block behind an image source's propagation delay (spec §4.2
// data model; original_source's `ImageSource::EnablePropagationDelay`):
// pushing a sample in and reading it back out `current` samples later,
// where `current` ramps toward a target delay length by lerpFactor each
// sample, the same convention as every other interpolated DSP parameter
// (spec §5 "Parameter interpolation"). Reads interpolate linearly between
// the two adjacent integer taps so a moving source's delay doesn't click.
type Delay struct {
	buf     *RingBuffer
	current float64
	target  float64
}

// NewDelay allocates a delay line able to represent up to maxSamples of
// delay (fractional targets above that are clamped).
func NewDelay(maxSamples int) *Delay {
	if maxSamples < 1 {
		maxSamples = 1
	}
	return &Delay{buf: NewRingBuffer(maxSamples + 2)}
}

// SetTargetSamples sets the delay length (in samples, may be fractional)
// this line ramps its current length toward. Clamped to the line's
// capacity and to non-negative.
func (d *Delay) SetTargetSamples(samples float64) {
	if samples < 0 {
		samples = 0
	}
	if max := float64(d.buf.Len() - 2); samples > max {
		samples = max
	}
	d.target = samples
}

// Process pushes x into the line and returns the sample `current` steps
// behind it, advancing current toward target by lerpFactor first.
func (d *Delay) Process(x, lerpFactor float64) float64 {
	if d.current != d.target {
		d.current += (d.target - d.current) * lerpFactor
		if FlushDenormal(d.target-d.current) == 0 {
			d.current = d.target
		}
	}
	d.buf.Push(x)
	lo := int(d.current)
	frac := d.current - float64(lo)
	a := d.buf.At(lo)
	b := d.buf.At(lo + 1)
	return a + (b-a)*frac
}

// Reset clears the line's history and snaps current to target, matching
// the other stages' reset-on-attach semantics (spec §4.5 "init").
func (d *Delay) Reset() {
	d.buf.Reset()
	d.current = d.target
}
