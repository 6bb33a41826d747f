package iem

import (
	"math"

	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/spatial"
)

// reverbReflectionGains implements spec §4.2 step f: for each reverb-source
// arrival direction, cast a ray from the listener along that direction and
// accumulate the wall absorption of the closest plane it exits through.
// Per §9 Open Question 2, only the first plane exited is used, and only
// among planes where the listener lies on their interior (receiver-valid)
// side.
func reverbReflectionGains(snap *room.Snapshot, listener spatial.Vec3, directions []spatial.Vec3) [][]float64 {
	out := make([][]float64, len(directions))
	for i, dir := range directions {
		out[i] = castReverbRay(snap, listener, dir)
	}
	return out
}

func castReverbRay(snap *room.Snapshot, listener, dir spatial.Vec3) []float64 {
	flat := make([]float64, snap.NumBands)
	for i := range flat {
		flat[i] = 1.0
	}
	d := dir.Normalized()
	if d.LengthSq() < 1e-18 {
		return flat
	}

	bestT := math.Inf(1)
	var bestWall *room.Wall

	for i := range snap.Planes {
		pl := &snap.Planes[i]
		if !planeFrontOf(pl, listener) {
			continue
		}
		denom := pl.Normal.Dot(d)
		if denom > -geomEps && denom < geomEps {
			continue
		}
		t := (pl.Distance - pl.Normal.Dot(listener)) / denom
		if t <= geomEps || t >= bestT {
			continue
		}
		hit := listener.Add(d.Scale(t))
		for _, wid := range pl.WallIDs {
			w, ok := snap.WallByID(wid)
			if !ok || !pointInWall(&w, hit) {
				continue
			}
			bestT = t
			bestWall = &w
			break
		}
	}

	if bestWall == nil {
		return flat
	}
	return bestWall.Absorption.ReflectionCoefficients()
}
