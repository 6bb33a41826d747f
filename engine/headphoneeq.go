package engine

import "github.com/jmannall/roomacoustigo/dsp"

// headphoneEQ is the optional final 2-channel FIR stage set via
// set_headphone_eq (spec §6, supplemented feature): bypassed entirely when
// no impulse response has been loaded (spec §8 property 7 "headphone-EQ
// bypass").
type headphoneEQ struct {
	left, right *dsp.FIRConvolver
	enabled     bool
}

func newHeadphoneEQ() *headphoneEQ { return &headphoneEQ{} }

// Set installs a new pair of impulse responses, both of the same length.
// Mismatched lengths are rejected (spec §7 config errors).
func (h *headphoneEQ) Set(leftIR, rightIR []float64) error {
	if len(leftIR) != len(rightIR) {
		return errLengthMismatch
	}
	if len(leftIR) == 0 {
		h.enabled = false
		return nil
	}
	h.left = dsp.NewFIRConvolver(len(leftIR))
	h.right = dsp.NewFIRConvolver(len(rightIR))
	h.left.SetImpulseResponse(leftIR, 0)
	h.right.SetImpulseResponse(rightIR, 0)
	h.enabled = true
	return nil
}

// Process runs one stereo sample through the EQ, or passes it through
// untouched if no EQ is loaded.
func (h *headphoneEQ) Process(left, right float64) (float64, float64) {
	if !h.enabled {
		return left, right
	}
	return h.left.Process(left), h.right.Process(right)
}

var errLengthMismatch = fmtError("engine: headphone EQ left/right impulse responses must be the same length")

func fmtError(s string) error { return simpleError(s) }

type simpleError string

func (e simpleError) Error() string { return string(e) }
