// Command roomplay is a demo host loop: it opens a real output device via
// portaudio and pulls engine.Context's audio path once per callback,
// standing in for the "host audio driver" that spec §1 places out of scope
// for the engine itself (this binary is that driver, not part of the
// library's public API surface). Grounded on the teacher's
// src/audio.go callback-driven capture/playback loop, reimplemented here
// with a pure-Go portaudio backend instead of cgo ALSA/OSS.
package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/jmannall/roomacoustigo/engine"
	"github.com/jmannall/roomacoustigo/fdn"
	"github.com/jmannall/roomacoustigo/rtlog"
	"github.com/jmannall/roomacoustigo/spatial"
)

var (
	flagConfig = pflag.StringP("config", "c", "", "path to an engine config YAML file (defaults built in)")
	flagTone   = pflag.Float64P("tone", "f", 220.0, "test-tone frequency fed to the one demo source, in Hz")
	flagVolume = pflag.Float64P("volume", "v", 60.0, "shoebox room volume in cubic metres, for the late-reverb estimate")
)

func main() {
	pflag.Parse()

	cfg := engine.DefaultConfig()
	if *flagConfig != "" {
		loaded, err := engine.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "roomplay: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := engine.New(cfg)
	if !ctx.Init() {
		fmt.Fprintln(os.Stderr, "roomplay: engine init failed, check config")
		os.Exit(1)
	}
	defer ctx.Exit()

	buildShoebox(ctx, cfg.NumBands())
	ctx.UpdateListener(spatial.NewVec3(2, 1.5, 1.5), spatial.IdentityQuat)
	srcID := ctx.InitSource()
	ctx.UpdateSource(srcID, spatial.NewVec3(3, 1.5, 2), spatial.IdentityQuat)

	if !ctx.InitLateReverb(*flagVolume, []float64{4, 5, 3}, fdn.MatrixRandomOrthogonal) {
		fmt.Fprintln(os.Stderr, "roomplay: init_late_reverb failed")
		os.Exit(1)
	}
	ctx.UpdateReverbTime(engine.ReverbFormulaSabine)

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "roomplay: portaudio init: %v\n", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	tone := newToneGenerator(*flagTone, cfg.SampleRate)
	frames := cfg.FramesPerCallback
	toneBuf := make([]float64, frames)

	callback := func(out []float32) {
		tone.next(toneBuf)
		ctx.SubmitAudio(srcID, toneBuf)

		if !ctx.ProcessOutput() {
			rtlog.Warnf("roomplay: process_output dropped a NaN buffer")
			for i := range out {
				out[i] = 0
			}
			return
		}
		interleaved := ctx.GetOutputBuffer()
		for i := range out {
			if i < len(interleaved) {
				out[i] = float32(interleaved[i])
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, cfg.SampleRate, frames, callback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomplay: open stream: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "roomplay: start stream: %v\n", err)
		os.Exit(1)
	}
	defer stream.Stop()

	fmt.Println("roomplay: streaming, press ctrl+c to stop")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
}

// buildShoebox mirrors roomctl's demo scene: six rectangular walls
// bounding a 4x5x3 m room, each with a flat mid-range-absorptive finish.
func buildShoebox(ctx *engine.Context, numBands int) {
	const w, d, h = 4.0, 5.0, 3.0
	absorb := make([]float64, numBands)
	for i := range absorb {
		absorb[i] = 0.15
	}

	v := func(x, y, z float64) spatial.Vec3 { return spatial.NewVec3(x, y, z) }
	faces := [][]spatial.Vec3{
		{v(0, 0, 0), v(w, 0, 0), v(w, 0, d), v(0, 0, d)},
		{v(0, h, d), v(w, h, d), v(w, h, 0), v(0, h, 0)},
		{v(0, 0, 0), v(0, h, 0), v(w, h, 0), v(w, 0, 0)},
		{v(w, 0, d), v(w, h, d), v(0, h, d), v(0, 0, d)},
		{v(0, 0, d), v(0, h, d), v(0, h, 0), v(0, 0, 0)},
		{v(w, 0, 0), v(w, h, 0), v(w, h, d), v(w, 0, d)},
	}
	for _, face := range faces {
		ctx.InitWall(face, absorb)
	}
	ctx.UpdatePlanesAndEdges()
}

// toneGenerator renders a continuous sine test tone at a fixed frequency,
// used as the one demo source's input in place of a real host-captured
// signal.
type toneGenerator struct {
	phaseInc float64
	phase    float64
}

func newToneGenerator(freqHz, sampleRate float64) *toneGenerator {
	return &toneGenerator{phaseInc: 2 * math.Pi * freqHz / sampleRate}
}

func (t *toneGenerator) next(buf []float64) {
	for i := range buf {
		buf[i] = 0.2 * math.Sin(t.phase)
		t.phase += t.phaseInc
		if t.phase > 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
}
