package dsp

import "golang.org/x/sys/cpu"

func hasHardwareFTZ() bool {
	return cpu.X86.HasSSE2
}
