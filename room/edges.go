package room

import "github.com/jmannall/roomacoustigo/spatial"

// discoverEdgesForWallLocked finds shared boundaries between w and every
// other wall with a different plane, per spec §4.1 "Edge discovery". Callers
// must already hold r.mu.
func (r *Room) discoverEdgesForWallLocked(w *Wall) {
	for _, other := range r.walls {
		if other.ID == w.ID || other.PlaneID == w.PlaneID {
			continue
		}
		if e, ok := findSharedEdge(w, other); ok {
			id := r.allocEdgeID()
			e.ID = id
			r.edges[id] = e
		}
	}
}

// findSharedEdge looks for two consecutive vertices of wall a that also
// appear (consecutively, in either order) in wall b's vertex loop, and
// checks that the exterior wedge between the two walls is reflex (a test
// vertex of a lies behind b's plane), per spec §4.1.
func findSharedEdge(a, b *Wall) (*Edge, bool) {
	if a.Normal.Dot(b.Normal) > 1-planeNormalEps {
		return nil, false // parallel, same-facing: never forms a diffracting edge
	}

	na := len(a.Vertices)
	for i := 0; i < na; i++ {
		v0 := a.Vertices[i]
		v1 := a.Vertices[(i+1)%na]
		j0, ok0 := matchVertex(b, v0)
		j1, ok1 := matchVertex(b, v1)
		if !ok0 || !ok1 {
			continue
		}
		if !consecutiveIndices(j0, j1, len(b.Vertices)) {
			continue
		}

		// Reflex check: a vertex of a not on this edge should lie behind b's
		// plane (confirms the two walls meet at an exterior, not interior,
		// angle).
		if !hasVertexBehindPlane(a, i, (i+1)%na, b.Normal, b.Distance) {
			continue
		}

		normalA, normalB := a.Normal, b.Normal
		base, top := v0, v1
		// Orient base->top so cross(normalA, normalB) points from base to top.
		curl := normalA.Cross(normalB)
		if curl.Dot(top.Sub(base)) < 0 {
			base, top = top, base
		}

		wedge := exteriorWedgeAngle(normalA, normalB)
		return &Edge{
			Base: base, Top: top,
			PlaneA: a.PlaneID, PlaneB: b.PlaneID,
			NormalA: normalA, NormalB: normalB,
			WedgeAngle: wedge,
		}, true
	}
	return nil, false
}

func matchVertex(w *Wall, v spatial.Vec3) (int, bool) {
	for i, wv := range w.Vertices {
		if wv.Distance(v) < vertexMatchEps {
			return i, true
		}
	}
	return -1, false
}

func consecutiveIndices(i, j, n int) bool {
	return (i+1)%n == j || (j+1)%n == i
}

func hasVertexBehindPlane(w *Wall, skip0, skip1 int, normal spatial.Vec3, dist float64) bool {
	for i, v := range w.Vertices {
		if i == skip0 || i == skip1 {
			continue
		}
		if normal.Dot(v)-dist < -vertexMatchEps {
			return true
		}
	}
	return false
}

// exteriorWedgeAngle returns the angle (in (0, 2*pi)) swept through the
// exterior (air) side of two walls meeting at an edge, given their outward
// normals. Coplanar-opposing walls (a flat partition) give pi; a reflex
// corner (the common case, e.g. the inside of a room) gives > pi.
func exteriorWedgeAngle(normalA, normalB spatial.Vec3) float64 {
	cosTheta := clamp(normalA.Dot(normalB), -1, 1)
	interior := acos(cosTheta)
	return 2*pi - interior
}
