package dsp

import "testing"

func TestDelayOutputsImpulseAtTargetSampleOffset(t *testing.T) {
	d := NewDelay(16)
	d.SetTargetSamples(5)

	const n = 12
	var out [n]float64
	for i := 0; i < n; i++ {
		x := 0.0
		if i == 0 {
			x = 1.0
		}
		out[i] = d.Process(x, 1.0)
	}

	for i, y := range out {
		if i == 5 {
			if y != 1.0 {
				t.Fatalf("out[%d] = %v, want 1.0 (the delayed impulse)", i, y)
			}
			continue
		}
		if y != 0.0 {
			t.Fatalf("out[%d] = %v, want 0.0", i, y)
		}
	}
}

func TestDelayInterpolatesFractionalOffset(t *testing.T) {
	d := NewDelay(16)
	d.SetTargetSamples(2.5)

	var out [6]float64
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1.0
		}
		out[i] = d.Process(x, 1.0)
	}

	if out[2] != 0.5 || out[3] != 0.5 {
		t.Fatalf("fractional delay taps = %v, %v, want 0.5, 0.5", out[2], out[3])
	}
}

func TestDelayClampsTargetToCapacity(t *testing.T) {
	d := NewDelay(4)
	d.SetTargetSamples(1000)
	if d.target > float64(d.buf.Len()-2) {
		t.Fatalf("target %v exceeds capacity %v", d.target, d.buf.Len()-2)
	}
}

func TestDelayResetSnapsCurrentToTarget(t *testing.T) {
	d := NewDelay(16)
	d.SetTargetSamples(7)
	d.Reset()
	if d.current != d.target {
		t.Fatalf("current = %v after Reset, want target %v", d.current, d.target)
	}
}
