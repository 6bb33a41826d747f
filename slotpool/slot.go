package slotpool

import (
	"math"

	"github.com/jmannall/roomacoustigo/airabsorption"
	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/dsp"
	"github.com/jmannall/roomacoustigo/geq"
)

// defaultSpeedOfSound matches iem.DefaultConfig's speed of sound (m/s),
// used to convert a path's distance into a propagation-delay sample count
// when a slot isn't given an explicit value.
const defaultSpeedOfSound = 343.0

// maxPropagationDistance bounds the delay line's capacity (spec §7
// "resource exhaustion... sized at startup via constants, so this is a
// predictable budget, not a runtime failure"): a path longer than this
// many metres has its delay clamped rather than growing the line.
const maxPropagationDistance = 200.0

// State is an image-source slot's lifecycle state (spec §4.5).
type State int

const (
	Idle State = iota
	Attached
)

const modelCrossfadeSamples = 480 // ~10ms at 48kHz (spec §4.5)

// Slot owns one image source's DSP chain: the wall-absorption GraphicEQ,
// air-absorption filter, and diffraction model, plus the gain ramp that
// drives attach/detach, and the three-slot model-change queue (spec
// §4.5). A Slot is driven entirely by the audio thread except for
// Init/Update/Remove, which the IEM calls only after observing Guard.Idle().
type Slot struct {
	Guard *AccessGuard

	state State
	data  *ImageSourceData

	gain         geq.Param
	absorption   *geq.GraphicEQ
	air          *airabsorption.Filter
	delay        *dsp.Delay
	speedOfSound float64

	activeKind   diffraction.Kind
	active       diffraction.Model
	incoming     diffraction.Model
	crossfading  bool
	crossfadePos int

	queuedKind  diffraction.Kind
	hasQueued   bool

	numBands int
	fs       float64
	q        float64
}

// NewSlot allocates an idle slot sized for numBands absorption bands at
// sample rate fs, whose absorption EQ crossovers use shelvingQ (spec §6
// "shelving_Q parameterises all EQs"). A non-positive shelvingQ falls back
// to the default Butterworth Q. speedOfSound (m/s) converts a path's
// distance into the slot's propagation-delay sample count (spec §4.2 data
// model; a non-positive value falls back to defaultSpeedOfSound).
func NewSlot(numBands int, fs, shelvingQ float64, speedOfSound float64) *Slot {
	if speedOfSound <= 0 {
		speedOfSound = defaultSpeedOfSound
	}
	return &Slot{
		Guard:        NewAccessGuard(),
		numBands:     numBands,
		fs:           fs,
		q:            shelvingQ,
		speedOfSound: speedOfSound,
		air:          airabsorption.NewFilter(),
		delay:        dsp.NewDelay(int(maxPropagationDistance/speedOfSound*fs) + 1),
	}
}

func (s *Slot) State() State { return s.state }

// Data returns the image-source data currently attached to this slot, or
// nil if idle. The audio thread reads this only after a successful
// Guard.Enter to decide how to spatialise the slot's rendered output.
func (s *Slot) Data() *ImageSourceData { return s.data }

// Init attaches the slot to a freshly published image-source data: builds
// the absorption GraphicEQ from its wall absorption, resets air absorption
// for the initial distance, resets the diffraction model, and starts the
// gain ramp toward 1.0 (spec §4.5 "init").
func (s *Slot) Init(data *ImageSourceData, distance float64) {
	s.data = data
	s.state = Attached

	bandEdges := equalBandEdges(s.numBands, s.fs)
	s.absorption = geq.NewGraphicEQ(bandEdges, s.fs)
	if s.q > 0 {
		s.absorption.SetQ(s.q)
	}
	s.absorption.SetTargetGains(data.Absorption.ReflectionCoefficients())

	s.air.Reset()
	s.air.SetTargetDistance(distance)

	s.delay.Reset()
	s.delay.SetTargetSamples(s.delaySamples(distance))

	s.activeKind = data.DiffractKind
	s.active = diffraction.New(data.DiffractKind, s.fs)
	s.incoming = nil
	s.crossfading = false
	s.hasQueued = false
	if data.Diffraction != nil {
		s.active.SetTargetParameters(*data.Diffraction)
	}

	s.gain.SetTarget(1.0)
}

// delaySamples converts a source-to-listener distance (metres) into a
// sample count at this slot's sample rate and speed of sound (spec §4.2
// data model propagating the direct/image-source distance as a delay;
// original_source's `ImageSource::EnablePropagationDelay`).
func (s *Slot) delaySamples(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return distance / s.speedOfSound * s.fs
}

// Update feeds new target parameters to every stage without resetting
// filter state (spec §4.5 "update"); a change of DiffractKind is queued
// through the crossfade machinery rather than applied immediately.
func (s *Slot) Update(data *ImageSourceData, distance float64) {
	s.data = data
	s.absorption.SetTargetGains(data.Absorption.ReflectionCoefficients())
	s.air.SetTargetDistance(distance)
	s.delay.SetTargetSamples(s.delaySamples(distance))

	if data.DiffractKind != s.activeKind {
		s.queueModelChange(data.DiffractKind)
	}
	if data.Diffraction != nil {
		s.active.SetTargetParameters(*data.Diffraction)
		if s.incoming != nil {
			s.incoming.SetTargetParameters(*data.Diffraction)
		}
	}
}

// queueModelChange implements the active/incoming/next three-slot queue:
// if no fade is in progress, incoming is built immediately; otherwise the
// request waits in the single-deep "next" slot until the current fade
// completes (spec §4.5).
func (s *Slot) queueModelChange(kind diffraction.Kind) {
	if !s.crossfading {
		s.incoming = diffraction.New(kind, s.fs)
		s.crossfading = true
		s.crossfadePos = 0
		return
	}
	s.queuedKind = kind
	s.hasQueued = true
}

// Remove starts the gain ramp toward zero; the slot detaches once Process
// observes the gain has reached zero (spec §4.5 "remove").
func (s *Slot) Remove() { s.gain.SetTarget(0.0) }

// Process renders one sample through the slot's chain: propagation delay,
// absorption EQ, air absorption, diffraction model (crossfading toward
// incoming if a model change is in flight), then the attach/detach gain
// ramp. Returns 0 and detaches once gain has fully decayed following a
// Remove.
func (s *Slot) Process(x, lerp float64) float64 {
	if s.state != Attached {
		return 0
	}

	x = s.delay.Process(x, lerp)
	y := s.absorption.Process(x, lerp)
	y = s.air.Process(y, lerp)
	pre := y
	y = s.active.Process(y, lerp)

	if s.crossfading {
		inc := s.incoming.Process(pre, lerp)
		frac := float64(s.crossfadePos) / float64(modelCrossfadeSamples)
		y = y*(1-frac) + inc*frac
		s.crossfadePos++
		if s.crossfadePos >= modelCrossfadeSamples {
			s.active = s.incoming
			s.activeKind = s.queuedKindOrCurrent()
			s.incoming = nil
			s.crossfading = false
			if s.hasQueued {
				next := s.queuedKind
				s.hasQueued = false
				s.queueModelChange(next)
			}
		}
	}

	g := s.gain.Advance(lerp)
	out := y * g
	if g <= 1e-6 && s.gain.Target() == 0 {
		s.state = Idle
		s.data = nil
		return 0
	}
	return out
}

func (s *Slot) queuedKindOrCurrent() diffraction.Kind {
	if s.data != nil {
		return s.data.DiffractKind
	}
	return s.activeKind
}

// Reset clears all filter state, returning the slot to idle.
func (s *Slot) Reset() {
	s.state = Idle
	s.data = nil
	s.gain = geq.Param{}
	if s.absorption != nil {
		s.absorption.Reset()
	}
	s.air.Reset()
	s.delay.Reset()
	if s.active != nil {
		s.active.Reset()
	}
	s.incoming = nil
	s.crossfading = false
	s.hasQueued = false
}

// equalBandEdges splits [0, fs/2] into numBands equal-width bands in log
// space, a reasonable default crossover ladder when the room model's own
// band edges aren't otherwise specified.
func equalBandEdges(numBands int, fs float64) []float64 {
	if numBands <= 1 {
		return nil
	}
	edges := make([]float64, numBands-1)
	nyquist := fs / 2
	lo, hi := 62.5, nyquist*0.9
	for i := range edges {
		frac := float64(i+1) / float64(numBands)
		edges[i] = lo * math.Pow(hi/lo, frac)
	}
	return edges
}
