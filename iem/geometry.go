package iem

import (
	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/spatial"
)

const geomEps = 1e-6

// planeFrontOf reports whether p lies strictly on the outward side of the
// plane (n.Dot(p) > d).
func planeFrontOf(pl *room.Plane, p spatial.Vec3) bool {
	return pl.Normal.Dot(p)-pl.Distance > geomEps
}

// planePoint returns an arbitrary point lying on the plane, n.Dot(x) = d.
func planePoint(pl *room.Plane) spatial.Vec3 {
	return pl.Normal.Scale(pl.Distance)
}

// reflectAcrossPlane mirrors p across pl.
func reflectAcrossPlane(pl *room.Plane, p spatial.Vec3) spatial.Vec3 {
	return p.ReflectAcrossPlane(planePoint(pl), pl.Normal)
}

// segmentPlaneIntersection finds the parametric point t in (0,1) at which
// segment a->b crosses the plane, if any.
func segmentPlaneIntersection(pl *room.Plane, a, b spatial.Vec3) (spatial.Vec3, bool) {
	denom := pl.Normal.Dot(b.Sub(a))
	if denom > -geomEps && denom < geomEps {
		return spatial.Zero3, false
	}
	t := (pl.Distance - pl.Normal.Dot(a)) / denom
	if t < geomEps || t > 1-geomEps {
		return spatial.Zero3, false
	}
	return a.Add(b.Sub(a).Scale(t)), true
}

// pointInWall reports whether p (assumed coplanar with w) lies inside w's
// convex polygon, using the right-hand-rule outward-normal vertex winding
// (spec §4.1).
func pointInWall(w *room.Wall, p spatial.Vec3) bool {
	n := len(w.Vertices)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := w.Vertices[i]
		b := w.Vertices[(i+1)%n]
		edge := b.Sub(a)
		toP := p.Sub(a)
		if w.Normal.Dot(edge.Cross(toP)) < -geomEps {
			return false
		}
	}
	return true
}

// wallIntersection finds the wall of plane pl whose polygon contains the
// intersection point of segment a->b with pl's plane, if any.
func wallIntersection(snap *room.Snapshot, pl *room.Plane, a, b spatial.Vec3) (spatial.Vec3, room.WallID, bool) {
	pt, ok := segmentPlaneIntersection(pl, a, b)
	if !ok {
		return spatial.Zero3, 0, false
	}
	for _, wid := range pl.WallIDs {
		w, ok := snap.WallByID(wid)
		if !ok {
			continue
		}
		if pointInWall(&w, pt) {
			return pt, wid, true
		}
	}
	return spatial.Zero3, 0, false
}

// segmentObstructed reports whether any wall in the snapshot, other than
// those on an excluded plane, blocks the line segment a->b.
func segmentObstructed(snap *room.Snapshot, a, b spatial.Vec3, exclude map[room.PlaneID]bool) bool {
	for i := range snap.Planes {
		pl := &snap.Planes[i]
		if exclude[pl.ID] {
			continue
		}
		if _, _, hit := wallIntersection(snap, pl, a, b); hit {
			return true
		}
	}
	return false
}
