package dsp

import "math"

func onePoleCoefficient(fcOverFs float64) float64 {
	if fcOverFs <= 0 {
		return 0
	}
	if fcOverFs >= 0.5 {
		fcOverFs = 0.5 - 1e-6
	}
	return math.Exp(-2 * math.Pi * fcOverFs)
}

// WindowType selects the FIR window shape used by LowpassKernel and
// BandpassKernel, grounded on the teacher's window() switch in src/dsp.go.
type WindowType int

const (
	WindowTruncated WindowType = iota
	WindowCosine
	WindowHamming
	WindowBlackman
	WindowFlattop
)

func window(t WindowType, size, j int) float64 {
	n := float64(size)
	x := float64(j)
	center := 0.5 * (n - 1)

	switch t {
	case WindowCosine:
		return math.Cos((x - center) / n * math.Pi)
	case WindowHamming:
		return 0.53836 - 0.46164*math.Cos((x*2*math.Pi)/(n-1))
	case WindowBlackman:
		return 0.42659 - 0.49656*math.Cos((x*2*math.Pi)/(n-1)) +
			0.076849*math.Cos((x*4*math.Pi)/(n-1))
	case WindowFlattop:
		return 1.0 - 1.93*math.Cos((x*2*math.Pi)/(n-1)) +
			1.29*math.Cos((x*4*math.Pi)/(n-1)) -
			0.388*math.Cos((x*6*math.Pi)/(n-1)) +
			0.028*math.Cos((x*8*math.Pi)/(n-1))
	default:
		return 1.0
	}
}

// LowpassKernel fills out with a windowed-sinc low-pass FIR kernel, fc given
// as a fraction of the sample rate. Normalised for unity gain at DC.
func LowpassKernel(fc float64, out []float64, wtype WindowType) {
	n := len(out)
	center := 0.5 * float64(n-1)
	for j := 0; j < n; j++ {
		var sinc float64
		d := float64(j) - center
		if d == 0 {
			sinc = 2 * fc
		} else {
			sinc = math.Sin(2*math.Pi*fc*d) / (math.Pi * d)
		}
		out[j] = sinc * window(wtype, n, j)
	}
	normalizeSum(out)
}

// BandpassKernel fills out with a windowed-sinc band-pass FIR kernel between
// f1 and f2 (fractions of sample rate), normalised for unity gain at the
// passband centre.
func BandpassKernel(f1, f2 float64, out []float64, wtype WindowType) {
	n := len(out)
	center := 0.5 * float64(n-1)
	for j := 0; j < n; j++ {
		d := float64(j) - center
		var sinc float64
		if d == 0 {
			sinc = 2 * (f2 - f1)
		} else {
			sinc = math.Sin(2*math.Pi*f2*d)/(math.Pi*d) - math.Sin(2*math.Pi*f1*d)/(math.Pi*d)
		}
		out[j] = sinc * window(wtype, n, j)
	}

	w := 2 * math.Pi * (f1 + f2) / 2
	var g float64
	for j, v := range out {
		g += 2 * v * math.Cos((float64(j)-center)*w)
	}
	if math.Abs(g) > 1e-12 {
		for j := range out {
			out[j] /= g
		}
	}
}

func normalizeSum(buf []float64) {
	var sum float64
	for _, v := range buf {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		for i := range buf {
			buf[i] /= sum
		}
	}
}
