package iem

import (
	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/slotpool"
	"github.com/jmannall/roomacoustigo/source"
	"github.com/jmannall/roomacoustigo/spatial"
)

// Solver enumerates, once per cycle, every currently-audible propagation
// path from each source to the listener: the direct sound, specular
// reflections up to ReflOrder, first-order shadowed/specular diffractions,
// and a bounded set of combined reflection-and-diffraction paths (spec
// §4.2). It never blocks: the caller feeds it a room.Snapshot and source
// snapshots taken outside any lock.
type Solver struct {
	cfg configBox

	cycle map[source.ID]uint64
}

// NewSolver creates a solver with the given initial configuration.
func NewSolver(cfg Config) *Solver {
	s := &Solver{cycle: make(map[source.ID]uint64)}
	s.cfg.store(cfg)
	return s
}

// SetConfig publishes a new target configuration, picked up at the start of
// the solver's next cycle (spec §4.2 "Configuration").
func (s *Solver) SetConfig(cfg Config) { s.cfg.store(cfg) }

// Config returns the configuration currently in effect.
func (s *Solver) Config() Config { return s.cfg.load() }

// Result is one cycle's output: the per-source image-source data list and
// the reverb reflection filter gains for every reverb-source direction
// (spec §4.2 step f).
type Result struct {
	BySource    map[source.ID][]*slotpool.ImageSourceData
	ReverbGains [][]float64
}

// reflChain is one candidate sequence of reflecting planes, built by
// successively mirroring the source position (spec §4.2 step e "reflection
// + reflection").
type reflChain struct {
	planes []room.PlaneID
	images []spatial.Vec3 // cumulative image after reflecting through planes[0..i]
}

// Solve runs one full IEM cycle over every source snapshot against the
// given room snapshot and listener, per spec §4.2's main loop.
func (s *Solver) Solve(snap *room.Snapshot, sources []source.SourceSnapshot, listener source.Listener, reverbDirs []spatial.Vec3) Result {
	cfg := s.cfg.load()
	res := Result{BySource: make(map[source.ID][]*slotpool.ImageSourceData, len(sources))}

	for _, src := range sources {
		s.cycle[src.ID]++
		cycleTag := s.cycle[src.ID]
		res.BySource[src.ID] = s.solveSource(snap, src, listener, cfg, cycleTag)
	}

	if cfg.LateReverbEnabled {
		res.ReverbGains = reverbReflectionGains(snap, listener.Position, reverbDirs)
	}

	return res
}

func (s *Solver) solveSource(snap *room.Snapshot, src source.SourceSnapshot, listener source.Listener, cfg Config, cycleTag uint64) []*slotpool.ImageSourceData {
	var out []*slotpool.ImageSourceData
	numBands := snap.NumBands
	identity := room.Identity(numBands)

	emit := func(parts []slotpool.PathPart, imagePos spatial.Vec3, absorption room.Absorption, diff *diffraction.Path, visible bool) {
		kind := cfg.DiffractKind
		if diff == nil {
			kind = diffraction.KindNone
		}
		out = append(out, &slotpool.ImageSourceData{
			Key:          pathKey(int(src.ID), parts),
			SourceID:     int(src.ID),
			Parts:        parts,
			ImagePosition: imagePos,
			Absorption:   absorption,
			Diffraction:  diff,
			DiffractKind: kind,
			Transform:    imagePos.Sub(listener.Position).Normalized(),
			Visible:      visible,
			FeedsFDN:     false,
			CycleTag:     cycleTag,
		})
	}

	// (b) Direct sound.
	direct := true
	if cfg.DirectSound == DirectSoundOccluderTested {
		direct = !segmentObstructed(snap, src.Position, listener.Position, nil)
	}
	emit(nil, src.Position, identity, nil, direct)

	// (c) First-order diffraction.
	if cfg.ShadowDiffOrder >= 1 || cfg.SpecularDiffOrder >= 1 {
		for i := range snap.Edges {
			e := &snap.Edges[i]
			if e.Length() < cfg.MinEdgeLength {
				continue
			}
			if e.ReceiverZone == room.ZoneInvalid {
				continue
			}
			p := diffraction.NewPath(e, src.Position, listener.Position)
			if !p.Valid {
				continue
			}
			if !(p.InShadow && cfg.ShadowDiffOrder >= 1) && !(!p.InShadow && cfg.SpecularDiffOrder >= 1) {
				continue
			}
			apex := e.PointAt(p.ApexZ)
			visible := !segmentObstructed(snap, apex, listener.Position, map[room.PlaneID]bool{e.PlaneA: true, e.PlaneB: true}) &&
				!segmentObstructed(snap, src.Position, apex, map[room.PlaneID]bool{e.PlaneA: true, e.PlaneB: true})
			parts := []slotpool.PathPart{{IsReflection: false, EdgeID: e.ID}}
			emit(parts, apex, identity, &p, visible)
		}
	}

	// (d)/(e) Reflections up to ReflOrder, extended order-by-order.
	var chains []reflChain
	for order := 1; order <= cfg.ReflOrder; order++ {
		var next []reflChain
		if order == 1 {
			for i := range snap.Planes {
				pl := &snap.Planes[i]
				if !planeFrontOf(pl, src.Position) || !pl.ReceiverValid {
					continue
				}
				img := reflectAcrossPlane(pl, src.Position)
				next = append(next, reflChain{planes: []room.PlaneID{pl.ID}, images: []spatial.Vec3{img}})
			}
		} else {
			for _, c := range chains {
				lastPlane, _ := snap.PlaneByID(c.planes[len(c.planes)-1])
				lastImage := c.images[len(c.images)-1]
				for i := range snap.Planes {
					pl := &snap.Planes[i]
					if pl.ID == c.planes[len(c.planes)-1] {
						continue
					}
					if pl.Normal.Dot(lastPlane.Normal) > 1-planeNormalParallelEps {
						continue // skip same-facing parallel/coplanar repeat (spec step e)
					}
					if !planeFrontOf(pl, lastImage) {
						continue
					}
					img := reflectAcrossPlane(pl, lastImage)
					planes := append(append([]room.PlaneID(nil), c.planes...), pl.ID)
					images := append(append([]spatial.Vec3(nil), c.images...), img)
					next = append(next, reflChain{planes: planes, images: images})
				}
			}
		}

		for _, c := range next {
			points, walls, ok := validateReflChain(snap, src.Position, listener.Position, c)
			if !ok && points == nil {
				continue // no geometric solution at all: nothing to emit, but the chain is still extended at the next order
			}
			parts := make([]slotpool.PathPart, len(c.planes))
			absorption := identity
			for i, pid := range c.planes {
				parts[i] = slotpool.PathPart{IsReflection: true, PlaneID: pid}
				if w, found := snap.WallByID(walls[i]); found {
					absorption = room.Compose(absorption, w.Absorption)
				}
			}
			emit(parts, c.images[len(c.images)-1], absorption, nil, ok)

			if order == cfg.ReflOrder {
				continue
			}
			// (e) diffraction after reflections: from the final real
			// reflection point, look for a still-valid edge toward the
			// listener (one combined step; see DESIGN.md "iem package
			// implementation notes" for the scope limitation versus the
			// spec's fully general recursion).
			if points != nil && (cfg.ShadowDiffOrder >= 1 || cfg.SpecularDiffOrder >= 1) {
				lastPoint := points[len(points)-1]
				exclude := map[room.PlaneID]bool{c.planes[len(c.planes)-1]: true}
				for i := range snap.Edges {
					e := &snap.Edges[i]
					if exclude[e.PlaneA] || exclude[e.PlaneB] {
						continue
					}
					if e.Length() < cfg.MinEdgeLength {
						continue
					}
					p := diffraction.NewPath(e, lastPoint, listener.Position)
					if !p.Valid {
						continue
					}
					if !(p.InShadow && cfg.ShadowDiffOrder >= 1) && !(!p.InShadow && cfg.SpecularDiffOrder >= 1) {
						continue
					}
					apex := e.PointAt(p.ApexZ)
					exclude2 := map[room.PlaneID]bool{e.PlaneA: true, e.PlaneB: true}
					visible := !segmentObstructed(snap, apex, listener.Position, exclude2) &&
						!segmentObstructed(snap, lastPoint, apex, exclude2)
					combinedParts := append(append([]slotpool.PathPart(nil), parts...), slotpool.PathPart{EdgeID: e.ID})
					emit(combinedParts, apex, absorption, &p, visible && ok)
				}
			}
		}
		chains = next
	}

	// Reflection after first-order diffraction: from each valid diffraction
	// path's apex, reflect once more toward the listener.
	if cfg.ReflOrder >= 1 {
		for i := range snap.Edges {
			e := &snap.Edges[i]
			if e.Length() < cfg.MinEdgeLength || e.ReceiverZone == room.ZoneInvalid {
				continue
			}
			p := diffraction.NewPath(e, src.Position, listener.Position)
			if !p.Valid {
				continue
			}
			apex := e.PointAt(p.ApexZ)
			for j := range snap.Planes {
				pl := &snap.Planes[j]
				if pl.ID == e.PlaneA || pl.ID == e.PlaneB {
					continue
				}
				if !planeFrontOf(pl, apex) {
					continue
				}
				img := reflectAcrossPlane(pl, apex)
				pt, wallID, ok := wallIntersection(snap, pl, listener.Position, img)
				if !ok {
					continue
				}
				exclude := map[room.PlaneID]bool{e.PlaneA: true, e.PlaneB: true}
				obstructed := segmentObstructed(snap, src.Position, apex, exclude) ||
					segmentObstructed(snap, apex, pt, map[room.PlaneID]bool{pl.ID: true}) ||
					segmentObstructed(snap, pt, listener.Position, map[room.PlaneID]bool{pl.ID: true})
				absorption := identity
				if w, found := snap.WallByID(wallID); found {
					absorption = w.Absorption
				}
				parts := []slotpool.PathPart{{EdgeID: e.ID}, {IsReflection: true, PlaneID: pl.ID}}
				emit(parts, img, absorption, &p, !obstructed)
			}
		}
	}

	return out
}

const planeNormalParallelEps = 1e-6

// validateReflChain reconstructs the real reflection points for chain c,
// walking backward from the listener to the source through each plane's
// wall intersection (spec §4.2 step e "re-walk the path from source
// outwards computing intersections on each plane"), then tests every
// resulting segment for obstruction, excluding the planes that terminate
// it. Returns (nil, nil, false) if no wall intersection exists at all
// (nothing to emit; the caller still extends the chain at the next order);
// otherwise returns the
// vertex chain and per-step wall IDs with ok=false if only obstruction
// failed (still usable for further extension per spec step e "otherwise
// keep the image-source data in the working array for further extension").
func validateReflChain(snap *room.Snapshot, source, listener spatial.Vec3, c reflChain) (points []spatial.Vec3, walls []room.WallID, ok bool) {
	n := len(c.planes)
	points = make([]spatial.Vec3, n+2)
	walls = make([]room.WallID, n)
	points[n+1] = listener

	for k := n; k >= 1; k-- {
		pl, found := snap.PlaneByID(c.planes[k-1])
		if !found {
			return nil, nil, false
		}
		pt, wallID, hit := wallIntersection(snap, &pl, points[k+1], c.images[k-1])
		if !hit {
			return nil, nil, false
		}
		points[k] = pt
		walls[k-1] = wallID
	}
	points[0] = source

	for i := 0; i <= n; i++ {
		exclude := map[room.PlaneID]bool{}
		if i > 0 {
			exclude[c.planes[i-1]] = true
		}
		if i < n {
			exclude[c.planes[i]] = true
		}
		if segmentObstructed(snap, points[i], points[i+1], exclude) {
			return points, walls, false
		}
	}
	return points, walls, true
}
