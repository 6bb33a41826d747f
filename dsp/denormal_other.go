//go:build !amd64

package dsp

func hasHardwareFTZ() bool {
	return true
}
