package room

import "github.com/jmannall/roomacoustigo/spatial"

// UpdateListener recomputes each plane's receiver_valid flag (is the
// listener on the outward side of the plane, so a specular reflection off
// it is geometrically possible) and each edge's receiver_zone, per spec
// §4.1 "recomputed each listener update".
//
// receiver_zone here is a cheap, listener-only pre-filter: ZoneInvalid when
// the listener sits on (or behind) the wedge's solid material, ZoneIlluminated
// otherwise. The authoritative shadow/reflection split for a given
// source-receiver pair is a property of the diffraction path itself (spec
// §4.3 Path.InShadow/InReflectionZone), which also accounts for the source's
// position; this method cannot determine that alone.
func (r *Room) UpdateListener(position spatial.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.planes {
		p.ReceiverValid = p.Normal.Dot(position)-p.Distance > planeDistanceEps
	}

	for _, e := range r.edges {
		e.ReceiverZone = listenerEdgeZone(e, r.planes[e.PlaneA], position)
	}
}

// ReceiverValid reports whether the listener (as of the last UpdateListener
// call) sits on the outward side of the given plane.
func (r *Room) ReceiverValid(id PlaneID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.planes[id]
	if !ok {
		return false
	}
	return p.ReceiverValid
}

// EdgeReceiverZone reports the given edge's listener-only zone
// classification, as of the last UpdateListener call.
func (r *Room) EdgeReceiverZone(id EdgeID) ReceiverZone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.edges[id]
	if !ok {
		return ZoneInvalid
	}
	return e.ReceiverZone
}

// listenerEdgeZone computes the listener's angular coordinate around the
// edge, measured from plane A's half-plane through the exterior wedge, and
// classifies it against [0, WedgeAngle].
func listenerEdgeZone(e *Edge, planeA *Plane, position spatial.Vec3) ReceiverZone {
	axis := e.Axis()
	if axis.LengthSq() < 1e-18 || planeA == nil {
		return ZoneInvalid
	}

	rel := position.Sub(e.Base)
	alongAxis := axis.Scale(rel.Dot(axis))
	radial := rel.Sub(alongAxis)
	if radial.LengthSq() < 1e-12 {
		return ZoneInvalid // listener sits on the edge line itself
	}

	// Reference direction: the outward face of plane A, projected
	// perpendicular to the edge axis.
	ref := e.NormalA.Sub(axis.Scale(e.NormalA.Dot(axis))).Normalized()
	if ref.LengthSq() < 1e-12 {
		return ZoneInvalid
	}

	perp := axis.Cross(ref)
	x := radial.Dot(ref)
	y := radial.Dot(perp)
	theta := atan2(y, x)
	if theta < 0 {
		theta += 2 * pi
	}

	if theta < -vertexMatchEps || theta > e.WedgeAngle+vertexMatchEps {
		return ZoneInvalid
	}
	return ZoneIlluminated
}
