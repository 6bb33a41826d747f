// Package iem implements the Image-Edge Model: the background geometric
// solver that enumerates currently-audible reflection, diffraction, and
// combined propagation paths from each source to the listener (spec §4.2).
package iem

import (
	"sync/atomic"

	"github.com/jmannall/roomacoustigo/diffraction"
)

// DirectSoundKind selects how the direct path's audibility is decided
// (spec §6 init_iem_config).
type DirectSoundKind int

const (
	// DirectSoundAlwaysAudible skips the occlusion test entirely.
	DirectSoundAlwaysAudible DirectSoundKind = iota
	// DirectSoundOccluderTested requires an unobstructed line of sight.
	DirectSoundOccluderTested
)

// Config holds the target settings pushed atomically into the solve loop
// (spec §4.2 "Configuration").
type Config struct {
	DirectSound         DirectSoundKind
	ReflOrder           int
	ShadowDiffOrder     int
	SpecularDiffOrder   int
	LateReverbEnabled   bool
	MinEdgeLength       float64
	SpeedOfSound        float64
	DiffractKind        diffraction.Kind
}

// maxSupportedDiffOrder is the highest shadow/specular diffraction order
// this solver actually enumerates. The solver only walks first-order
// diffraction (plus the single combined reflection<->diffraction steps of
// spec §4.2 step e); it does not recurse diffraction-after-diffraction to
// arbitrary order. See DESIGN.md "iem package implementation notes" for the
// justification. Clamp rather than silently accept-and-ignore a higher
// configured order (spec §7 "Config errors... surfaced... safe state").
const maxSupportedDiffOrder = 1

// clamp rounds any diffraction order above maxSupportedDiffOrder down to
// it, so a caller requesting an order the solver can't honour gets the
// solver's real behaviour reflected back rather than a silently ignored
// setting.
func (c Config) clamp() Config {
	if c.ShadowDiffOrder > maxSupportedDiffOrder {
		c.ShadowDiffOrder = maxSupportedDiffOrder
	}
	if c.SpecularDiffOrder > maxSupportedDiffOrder {
		c.SpecularDiffOrder = maxSupportedDiffOrder
	}
	return c
}

// DefaultConfig matches the reference's conservative defaults: reflections
// up to second order, first-order diffraction, direct sound always tested.
func DefaultConfig() Config {
	return Config{
		DirectSound:       DirectSoundOccluderTested,
		ReflOrder:         2,
		ShadowDiffOrder:   1,
		SpecularDiffOrder: 1,
		LateReverbEnabled: true,
		MinEdgeLength:     0.05,
		SpeedOfSound:      343.0,
		DiffractKind:      diffraction.KindUDFA,
	}
}

// configBox lets any thread atomically publish a new Config for the next
// solve cycle to pick up (spec §4.2 "all target settings are pushed
// atomically into the loop").
type configBox struct {
	ptr atomic.Pointer[Config]
}

func (c *configBox) store(cfg Config) { cfg = cfg.clamp(); c.ptr.Store(&cfg) }

func (c *configBox) load() Config {
	p := c.ptr.Load()
	if p == nil {
		return DefaultConfig()
	}
	return *p
}
