package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/fdn"
	"github.com/jmannall/roomacoustigo/geq"
	"github.com/jmannall/roomacoustigo/iem"
	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/rtlog"
	"github.com/jmannall/roomacoustigo/slotpool"
	"github.com/jmannall/roomacoustigo/source"
	"github.com/jmannall/roomacoustigo/spatial"
)

// iemCyclePeriod is the IEM background thread's cadence (spec §5 "Runs
// ~10ms periods").
const iemCyclePeriod = 10 * time.Millisecond

// ReverbFormula selects how UpdateReverbTime derives the FDN's target T60
// (spec §6 "update_reverb_time(formula_enum)").
type ReverbFormula int

const (
	ReverbFormulaSabine ReverbFormula = iota
	ReverbFormulaEyring
	ReverbFormulaCustom
)

// iemCycle is the per-cycle payload the IEM background thread publishes
// through a Latest/ReleasePool pair (spec §5 "Publication / atomic
// handoff"), giving any audio callback that acquired it a consistent view
// of the cycle's results for the callback's whole duration.
type iemCycle struct {
	result iem.Result
}

// Context is the spatialiser's public orchestrator (spec §4.8): it owns the
// room model, the source registry, the IEM background thread, the
// image-source slot pool, the FDN, and the worker pool, and exposes the
// stable public API of spec §6. Scene-construction and reverb-configuration
// methods are safe to call from any host thread; SubmitAudio/ProcessOutput/
// GetOutputBuffer are intended for the single real-time audio callback.
type Context struct {
	cfg Config

	room     *room.Room
	registry *source.Registry
	solver   *iem.Solver
	pool     *imageSourcePool
	workers  *workerPool

	latest      slotpool.Latest[iemCycle]
	releasePool *slotpool.ReleasePool[iemCycle]

	renderer        DirectionalRenderer
	spatialMode     SpatialisationMode
	prevSpatialMode SpatialisationMode
	modeCrossfade   int
	headphoneEQ     *headphoneEQ

	fdnMu          sync.Mutex
	fdn            *fdn.FDN
	reverbSources  []source.ReverbSource
	lateReverbGain geq.Param
	roomVolume     float64

	impulseResponseMode bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	slotScratch   [][]float64
	slotTransform []spatial.Vec3
	slotActive    []bool

	outputLeft  []float64
	outputRight []float64
	interleaved []float64
}

// New constructs a Context from cfg. Call Init to validate the
// configuration and start the background threads.
func New(cfg Config) *Context {
	return &Context{cfg: cfg, renderer: NullRenderer{}, headphoneEQ: newHeadphoneEQ()}
}

// UseRenderer installs the directional-rendering backend (spec §1's
// "third-party directional-rendering service" collaborator). Call before
// Init; defaults to NullRenderer otherwise.
func (c *Context) UseRenderer(r DirectionalRenderer) {
	if r != nil {
		c.renderer = r
	}
}

// Init validates the configuration, builds the room/source/IEM/slot-pool
// machinery, and starts the IEM background thread and the worker pool
// (spec §6 "init", §4.8). Returns false and logs on a config error (spec
// §7).
func (c *Context) Init() bool {
	if err := c.cfg.Validate(); err != nil {
		rtlog.Errorf("engine: init: %v", err)
		return false
	}
	c.cfg.MaxFDNChannels = ClampFDNChannels(c.cfg.MaxFDNChannels)
	numBands := c.cfg.NumBands()

	c.room = room.New(numBands)
	c.registry = source.NewRegistry(numBands)
	c.solver = iem.NewSolver(iem.DefaultConfig())
	c.pool = newImageSourcePool(maxImageSources, numBands, c.cfg.SampleRate, c.cfg.ShelvingQ, c.solver.Config().SpeedOfSound)
	c.workers = newWorkerPool()
	c.releasePool = slotpool.NewReleasePool[iemCycle]()
	c.releasePool.Run(time.Second)
	c.lateReverbGain = geq.NewParam(1.0)

	frames := c.cfg.FramesPerCallback
	c.outputLeft = make([]float64, frames)
	c.outputRight = make([]float64, frames)
	c.interleaved = make([]float64, 2*frames)

	c.slotScratch = make([][]float64, maxImageSources)
	for i := range c.slotScratch {
		c.slotScratch[i] = make([]float64, frames)
	}
	c.slotTransform = make([]spatial.Vec3, maxImageSources)
	c.slotActive = make([]bool, maxImageSources)

	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	go c.runIEMLoop()
	return true
}

// Exit stops the IEM background thread, the release pool, and the worker
// pool, and joins all of them before returning (spec §5 "The release pool
// and worker pool join on context destruction").
func (c *Context) Exit() {
	if c.stopCh != nil {
		close(c.stopCh)
		c.wg.Wait()
		c.stopCh = nil
	}
	if c.workers != nil {
		c.workers.Close()
	}
	if c.releasePool != nil {
		c.releasePool.Stop()
	}
}

func (c *Context) runIEMLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(iemCyclePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.runIEMCycle()
		}
	}
}

// runIEMCycle runs one full solve cycle: snapshot the room and sources,
// solve every path, reconcile the image-source slot pool, push the
// reverb-direction reflection gains into the FDN, and publish the cycle's
// result (spec §4.2, §5).
func (c *Context) runIEMCycle() {
	snap := c.room.Snapshot()
	sources, listener := c.registry.Snapshot()
	result := c.solver.Solve(snap, sources, listener, c.reverbDirections())

	var all []*slotpool.ImageSourceData
	for _, data := range result.BySource {
		all = append(all, data...)
	}
	c.pool.Sync(all, listener.Position)
	c.applyReverbGains(result.ReverbGains)

	h := slotpool.NewHandle(iemCycle{result: result})
	old := c.latest.Publish(h)
	c.releasePool.Retire(old)
}

func (c *Context) reverbDirections() []spatial.Vec3 {
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	dirs := make([]spatial.Vec3, len(c.reverbSources))
	for i, rs := range c.reverbSources {
		dirs[i] = rs.Direction
	}
	return dirs
}

func (c *Context) applyReverbGains(gains [][]float64) {
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	if c.fdn == nil {
		return
	}
	for i, rs := range c.reverbSources {
		if i >= len(gains) {
			break
		}
		c.fdn.SetChannelReflectionGains(rs.Channel, gains[i])
	}
}

// effectiveLerp returns the per-sample interpolation rate in effect,
// forced to 1 (no smoothing) while impulse-response measurement mode is
// enabled (spec §6 "update_impulse_response_mode").
func (c *Context) effectiveLerp() float64 {
	if c.impulseResponseMode {
		return 1.0
	}
	return c.cfg.LerpFactor
}

// UpdateImpulseResponseMode enables or disables impulse-response
// measurement mode (supplemented feature, see SPEC_FULL.md). lerpFactor is
// accepted for ABI symmetry with the reference call but has no effect
// while enabled is true, since 1.0 is forced.
func (c *Context) UpdateImpulseResponseMode(lerpFactor float64, enabled bool) {
	if !enabled {
		c.cfg.LerpFactor = lerpFactor
	}
	c.impulseResponseMode = enabled
}

// LoadSpatialisationFiles loads the HRTF/ILD tables through the installed
// DirectionalRenderer (spec §6).
func (c *Context) LoadSpatialisationFiles(hrtfResampleStep int, paths [3]string) bool {
	return c.renderer.LoadSpatialisationFiles(hrtfResampleStep, paths)
}

// SetHeadphoneEQ installs the final 2-channel FIR stage (supplemented
// feature; spec §8 property 7 "headphone-EQ bypass").
func (c *Context) SetHeadphoneEQ(leftIR, rightIR []float64) bool {
	if err := c.headphoneEQ.Set(leftIR, rightIR); err != nil {
		rtlog.Warnf("engine: set_headphone_eq: %v", err)
		return false
	}
	return true
}

// spatialModeCrossfadeSamples matches slotpool's own (unexported)
// diffraction-model crossfade window, ~10ms at 48kHz (spec's "each slot
// crossfades over its existing diffraction-model crossfade machinery
// rather than popping").
const spatialModeCrossfadeSamples = 480

// UpdateSpatialisationMode switches the directional-rendering quality tier
// for every image source, crossfading the output over
// spatialModeCrossfadeSamples rather than popping (spec §6; supplemented
// feature, see SPEC_FULL.md).
func (c *Context) UpdateSpatialisationMode(mode SpatialisationMode) {
	if mode == c.spatialMode {
		return
	}
	c.prevSpatialMode = c.spatialMode
	c.spatialMode = mode
	c.modeCrossfade = spatialModeCrossfadeSamples
}

// spatialise renders one sample from direction dir, blending the outgoing
// and incoming SpatialisationMode across an in-flight mode switch.
// frameOffset is this sample's position within the current block, used to
// track how much of the crossfade window remains without mutating
// modeCrossfade until the whole block has been rendered.
func (c *Context) spatialise(dir spatial.Vec3, x float64, frameOffset int) (float64, float64) {
	remaining := c.modeCrossfade - frameOffset
	if remaining <= 0 {
		return c.renderer.Spatialise(dir, c.spatialMode, x)
	}
	frac := 1 - float64(remaining)/float64(spatialModeCrossfadeSamples)
	lOld, rOld := c.renderer.Spatialise(dir, c.prevSpatialMode, x)
	lNew, rNew := c.renderer.Spatialise(dir, c.spatialMode, x)
	return lOld*(1-frac) + lNew*frac, rOld*(1-frac) + rNew*frac
}

// InitSource creates a new source and returns its stable ID (spec §6
// "init_source").
func (c *Context) InitSource() int {
	return int(c.registry.AddSource(spatial.Zero3, spatial.IdentityQuat, source.Omni))
}

// UpdateSource moves/reorients a source (spec §6 "update_source").
func (c *Context) UpdateSource(id int, position spatial.Vec3, orientation spatial.Quat) {
	c.registry.UpdateSourceTransform(source.ID(id), position, orientation)
}

// UpdateSourceDirectivity swaps a source's directivity pattern (spec §6
// "update_source_directivity"). measuredCoefficients is only consulted
// when kind is source.Measured.
func (c *Context) UpdateSourceDirectivity(id int, kind source.Kind, measuredCoefficients [][]complex128) {
	c.registry.UpdateSourceDirectivity(source.ID(id), kind, measuredCoefficients)
}

// RemoveSource destroys a source (spec §6 "remove_source").
func (c *Context) RemoveSource(id int) {
	c.registry.RemoveSource(source.ID(id))
}

// InitWall creates a wall from an ordered vertex loop and a per-band
// absorption vector, returning its stable ID (spec §6 "init_wall"). Its
// area is derived from the polygon itself via fan triangulation.
func (c *Context) InitWall(vertices []spatial.Vec3, absorption []float64) (int, bool) {
	id, err := c.room.AddWall(vertices, room.NewAbsorption(absorption, polygonArea(vertices)))
	if err != nil {
		rtlog.Warnf("engine: init_wall: %v", err)
		return 0, false
	}
	return int(id), true
}

// UpdateWall replaces a wall's vertex loop (spec §6 "update_wall").
func (c *Context) UpdateWall(id int, vertices []spatial.Vec3) {
	c.room.UpdateWall(room.WallID(id), vertices)
}

// UpdateWallAbsorption replaces a wall's absorption vector, preserving its
// existing surface area (spec §6 "update_wall_absorption").
func (c *Context) UpdateWallAbsorption(id int, absorption []float64) {
	area := 0.0
	if w, ok := c.room.Snapshot().WallByID(room.WallID(id)); ok {
		area = w.Absorption.Area()
	}
	c.room.UpdateWallAbsorption(room.WallID(id), room.NewAbsorption(absorption, area))
}

// RemoveWall deletes a wall (spec §6 "remove_wall").
func (c *Context) RemoveWall(id int) { c.room.RemoveWall(room.WallID(id)) }

// UpdatePlanesAndEdges forces the deferred edge rebuild after a batch of
// wall edits (spec §6 "update_planes_and_edges").
func (c *Context) UpdatePlanesAndEdges() { c.room.UpdatePlanesAndEdges() }

// InitLateReverb builds the FDN and the reverb-source directional ring for
// a given enclosure volume and dimensions (spec §6 "init_late_reverb").
func (c *Context) InitLateReverb(volume float64, dimensions []float64, matrixKind fdn.MatrixKind) bool {
	if volume <= 0 || len(dimensions) == 0 {
		rtlog.Errorf("engine: init_late_reverb: invalid volume/dimensions")
		return false
	}

	t60 := c.room.GetReverbTime(volume, room.Sabine)
	rng := rand.New(rand.NewSource(1))

	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	c.fdn = fdn.New(c.cfg.MaxFDNChannels, dimensions, c.cfg.FrequencyBandsHz, t60, c.cfg.SampleRate, matrixKind, rng)
	c.fdn.SetShelvingQ(c.cfg.ShelvingQ)
	c.reverbSources = source.NewReverbSourceRing(c.cfg.NumReverbSources)
	for i := range c.reverbSources {
		c.reverbSources[i].Channel = i % c.fdn.NumChannels()
	}
	c.roomVolume = volume
	return true
}

// UpdateReverbTime recomputes the FDN's target T60 from the room's current
// absorption using the requested statistical formula (spec §6
// "update_reverb_time"). ReverbFormulaCustom is a no-op here; use
// UpdateReverbTimeCustom instead.
func (c *Context) UpdateReverbTime(formula ReverbFormula) {
	if formula == ReverbFormulaCustom {
		return
	}
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	if c.fdn == nil {
		return
	}
	model := room.Sabine
	if formula == ReverbFormulaEyring {
		model = room.Eyring
	}
	c.fdn.SetTargetT60(c.room.GetReverbTime(c.roomVolume, model))
}

// UpdateReverbTimeCustom installs an explicit per-band T60 (spec §6
// "update_reverb_time_custom").
func (c *Context) UpdateReverbTimeCustom(t60 []float64) {
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	if c.fdn == nil {
		return
	}
	c.fdn.SetTargetT60(t60)
}

// UpdateLateReverbGain sets the late-reverb send gain (spec §6
// "update_late_reverb_gain").
func (c *Context) UpdateLateReverbGain(g float64) { c.lateReverbGain.SetTarget(g) }

// ResetFDN clears every FDN channel's delay line and filter state (spec §6
// "reset_fdn").
func (c *Context) ResetFDN() {
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	if c.fdn != nil {
		c.fdn.Reset()
	}
}

// UpdateIEMConfig publishes a new IEM solver configuration (spec §6
// "update_iem_config").
func (c *Context) UpdateIEMConfig(directSound iem.DirectSoundKind, reflOrder, shadowDiffOrder, specularDiffOrder int, lateReverbEnabled bool, minEdgeLength float64) {
	cfg := c.solver.Config()
	cfg.DirectSound = directSound
	cfg.ReflOrder = reflOrder
	cfg.ShadowDiffOrder = shadowDiffOrder
	cfg.SpecularDiffOrder = specularDiffOrder
	cfg.LateReverbEnabled = lateReverbEnabled
	cfg.MinEdgeLength = minEdgeLength
	c.solver.SetConfig(cfg)
}

// UpdateDiffractionModel switches the diffraction model kind every
// diffracting image source targets (spec §6 "update_diffraction_model").
func (c *Context) UpdateDiffractionModel(kind diffraction.Kind) {
	cfg := c.solver.Config()
	cfg.DiffractKind = kind
	c.solver.SetConfig(cfg)
}

// UpdateListener moves/reorients the listener (spec §6 "update_listener").
func (c *Context) UpdateListener(position spatial.Vec3, orientation spatial.Quat) {
	c.registry.UpdateListener(position, orientation)
	c.room.UpdateListener(position)
}

// SubmitAudio appends samples to a source's input ring (spec §6
// "submit_audio"). Returns the number of frames accepted.
func (c *Context) SubmitAudio(sourceID int, samples []float64) int {
	return c.registry.SubmitAudio(source.ID(sourceID), samples)
}

// Stats reports lightweight diagnostics from the most recently published
// IEM cycle, for a host's debug/inspection surface (e.g. cmd/roomctl).
type Stats struct {
	ActiveImageSources int
	LatestCycleTag     uint64
}

// Stats acquires the latest published IEM cycle (spec §5's RCU-style
// handoff) just long enough to summarise it.
func (c *Context) Stats() Stats {
	h := c.latest.Acquire()
	defer h.Release()
	if h == nil {
		return Stats{}
	}
	var st Stats
	for _, data := range h.Value().result.BySource {
		for _, d := range data {
			if d.Visible {
				st.ActiveImageSources++
			}
			if d.CycleTag > st.LatestCycleTag {
				st.LatestCycleTag = d.CycleTag
			}
		}
	}
	return st
}

// ProcessOutput renders one callback's worth of stereo output (spec §6
// "process_output"): it acquires the IEM cycle in effect for the whole
// callback (spec §5 "Ordering"), fans per-slot chain processing across the
// worker pool, mixes the spatialised partial outputs, sums the dry source
// signal into the FDN and mixes its spatialised reverb-source output, and
// finally runs the optional headphone EQ. Returns false if the result
// contains a NaN (spec §7 numerical hazard: clamp/flush and drop frames).
func (c *Context) ProcessOutput() bool {
	// Pins this callback to one consistent IEM-cycle view; the slot pool
	// itself was already reconciled against this same result by the IEM
	// thread before publishing it, so nothing here reads h.Value() — holding
	// the reference is what keeps the release pool from reclaiming cycle
	// state concurrently with this callback (spec §5 "Ordering").
	h := c.latest.Acquire()
	defer h.Release()

	frames := c.cfg.FramesPerCallback
	for i := range c.outputLeft {
		c.outputLeft[i] = 0
		c.outputRight[i] = 0
	}

	lerp := c.effectiveLerp()
	inputs := c.collectSourceInputs(frames)

	slots := c.pool.Slots()
	for i, slot := range slots {
		if slot.State() != slotpool.Attached {
			c.slotActive[i] = false
			continue
		}
		idx, s := i, slot
		c.workers.Dispatch(func() { c.renderSlot(s, idx, inputs, frames, lerp) })
	}
	c.workers.Wait()

	for i, active := range c.slotActive {
		if !active {
			continue
		}
		scratch := c.slotScratch[i]
		dir := c.slotTransform[i]
		for n := 0; n < frames; n++ {
			l, r := c.spatialise(dir, scratch[n], n)
			c.outputLeft[n] += l
			c.outputRight[n] += r
		}
	}

	c.processReverb(inputs, frames, lerp)

	ok := true
	for n := 0; n < frames; n++ {
		l, r := c.outputLeft[n], c.outputRight[n]
		if math.IsNaN(l) || math.IsNaN(r) {
			l, r, ok = 0, 0, false
		}
		l, r = c.headphoneEQ.Process(l, r)
		c.interleaved[2*n] = l
		c.interleaved[2*n+1] = r
	}

	if c.modeCrossfade > 0 {
		c.modeCrossfade -= frames
		if c.modeCrossfade < 0 {
			c.modeCrossfade = 0
		}
	}
	return ok
}

// GetOutputBuffer returns the interleaved stereo buffer produced by the
// most recent ProcessOutput call (spec §6 "get_output_buffer").
func (c *Context) GetOutputBuffer() []float64 { return c.interleaved }

// renderSlot runs one attached slot's DSP chain across the whole block,
// recording its direction and rendered mono signal for the serial mixing
// pass that follows the worker-pool barrier. Safe to run concurrently with
// any other slot's renderSlot call.
func (c *Context) renderSlot(s *slotpool.Slot, idx int, inputs map[int][]float64, frames int, lerp float64) {
	data := s.Data()
	if data == nil {
		c.slotActive[idx] = false
		return
	}
	if !s.Guard.Enter() {
		c.slotActive[idx] = false
		return
	}
	defer s.Guard.Exit()

	c.slotActive[idx] = true
	c.slotTransform[idx] = data.Transform

	in := inputs[data.SourceID]
	out := c.slotScratch[idx]
	for n := 0; n < frames; n++ {
		x := 0.0
		if n < len(in) {
			x = in[n]
		}
		out[n] = s.Process(x, lerp)
	}
}

// collectSourceInputs reads one block's worth of samples for every source
// currently backing an attached slot.
func (c *Context) collectSourceInputs(frames int) map[int][]float64 {
	ids := make(map[int]bool)
	for _, slot := range c.pool.Slots() {
		if d := slot.Data(); d != nil {
			ids[d.SourceID] = true
		}
	}
	out := make(map[int][]float64, len(ids))
	for id := range ids {
		s, ok := c.registry.Source(source.ID(id))
		if !ok {
			continue
		}
		buf := make([]float64, frames)
		s.Input.Read(buf)
		out[id] = buf
	}
	return out
}

// processReverb sums this block's dry source signal into every FDN
// channel, runs the feedback loop one sample at a time, and spatialises
// each reverb source's channel output into the mix (spec §4.6, §4.7).
func (c *Context) processReverb(inputs map[int][]float64, frames int, lerp float64) {
	c.fdnMu.Lock()
	defer c.fdnMu.Unlock()
	if c.fdn == nil {
		return
	}

	numCh := c.fdn.NumChannels()
	fdnIn := make([]float64, numCh)
	nSources := len(inputs)
	if nSources == 0 {
		nSources = 1
	}

	for n := 0; n < frames; n++ {
		var mono float64
		for _, buf := range inputs {
			mono += buf[n]
		}
		g := c.lateReverbGain.Advance(lerp)
		mono = mono * g / float64(nSources)
		for ch := range fdnIn {
			fdnIn[ch] = mono
		}

		out := c.fdn.ProcessSample(fdnIn, lerp)
		for _, rs := range c.reverbSources {
			if rs.Channel < 0 || rs.Channel >= len(out) {
				continue
			}
			l, r := c.spatialise(rs.Direction, out[rs.Channel], n)
			c.outputLeft[n] += l
			c.outputRight[n] += r
		}
	}
}

// polygonArea computes a planar polygon's area via fan triangulation from
// its first vertex, summing each triangle's cross-product area (used by
// InitWall to derive a wall's surface area from its vertex loop alone).
func polygonArea(vertices []spatial.Vec3) float64 {
	if len(vertices) < 3 {
		return 0
	}
	origin := vertices[0]
	var sum spatial.Vec3
	for i := 1; i+1 < len(vertices); i++ {
		sum = sum.Add(vertices[i].Sub(origin).Cross(vertices[i+1].Sub(origin)))
	}
	return 0.5 * sum.Length()
}
