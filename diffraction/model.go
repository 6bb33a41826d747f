package diffraction

import (
	"github.com/jmannall/roomacoustigo/dsp"
	"github.com/jmannall/roomacoustigo/geq"
)

// Kind enumerates the diffraction-model family an image source may select
// at runtime (spec §4.4).
type Kind int

const (
	KindNone Kind = iota
	KindAttenuate
	KindLPF
	KindUDFA
	KindUDFAI
	KindUTD
	KindBTM
	KindNNSmall
	KindNNBest
)

// Model is the shared contract every diffraction-rendering stage implements:
// set_target_parameters(path) / process_audio(in, out, lerp). No model
// allocates inside Process; every model except Bypass flushes denormals on
// its audio-rate output (spec §4.4 failure semantics).
type Model interface {
	SetTargetParameters(p Path)
	Process(x, lerp float64) float64
	Reset()
}

// New constructs the diffraction model of the requested kind for the given
// sample rate.
func New(kind Kind, fs float64) Model {
	switch kind {
	case KindLPF:
		l := NewLPF()
		l.fs = fs
		l.pole.SetCutoff(lpfCutoffHz / fs)
		return l
	case KindUDFA:
		return NewUDFA(fs, false)
	case KindUDFAI:
		return NewUDFA(fs, true)
	case KindUTD:
		return NewUTD(fs)
	case KindBTM:
		return NewBTM(fs)
	case KindNNSmall:
		return newNN(fs, smallWeights)
	case KindNNBest:
		return newNN(fs, bestWeights)
	case KindNone:
		return NewBypass()
	default:
		return NewAttenuate()
	}
}

// Bypass is the identity diffraction model: it passes its input through
// unmodified. Image sources whose path carries no diffraction event (the
// direct sound, or a pure reflection chain) still run through a slot's
// diffraction stage (spec §4.5's chain is uniform across every image
// source), so they select Bypass rather than one of the shadow-gated
// models, which would otherwise silence them.
type Bypass struct{}

func NewBypass() *Bypass { return &Bypass{} }

func (b *Bypass) SetTargetParameters(Path)     {}
func (b *Bypass) Process(x, _ float64) float64 { return x }
func (b *Bypass) Reset()                       {}

// Attenuate gates a unity gain on shadow validity: gain = 1.0 if the path is
// shadowed and valid, else 0.0, linearly interpolated (spec §4.4).
type Attenuate struct {
	gain geq.Param
}

func NewAttenuate() *Attenuate { return &Attenuate{} }

func (a *Attenuate) SetTargetParameters(p Path) {
	if p.Valid && p.InShadow {
		a.gain.SetTarget(1)
	} else {
		a.gain.SetTarget(0)
	}
}

func (a *Attenuate) Process(x, lerp float64) float64 {
	a.gain.Advance(lerp)
	return dsp.FlushDenormal(x * a.gain.Current())
}

func (a *Attenuate) Reset() { a.gain = geq.Param{} }

// LPF gates a 1 kHz one-pole low-pass on shadow validity (spec §4.4).
type LPF struct {
	pole dsp.OnePole
	gain geq.Param
	fs   float64
}

const lpfCutoffHz = 1000.0

func NewLPF() *LPF {
	l := &LPF{fs: 48000}
	l.pole.SetCutoff(lpfCutoffHz / l.fs)
	return l
}

func (l *LPF) SetTargetParameters(p Path) {
	if p.Valid && p.InShadow {
		l.gain.SetTarget(1)
	} else {
		l.gain.SetTarget(0)
	}
}

func (l *LPF) Process(x, lerp float64) float64 {
	l.gain.Advance(lerp)
	y := l.pole.Process(x)
	return dsp.FlushDenormal(y * l.gain.Current())
}

func (l *LPF) Reset() {
	l.pole.Reset()
	l.gain = geq.Param{}
}
