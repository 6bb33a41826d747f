package room

import "github.com/jmannall/roomacoustigo/spatial"

// Snapshot is a point-in-time, lock-free copy of the room geometry for the
// IEM background thread to solve against without holding r.mu for the
// duration of path enumeration (spec §5 "the geometry thread... takes a
// read-snapshot once per cycle rather than holding the lock while solving").
type Snapshot struct {
	NumBands int
	Walls    []Wall
	Planes   []Plane
	Edges    []Edge
}

// WallByID looks up a wall by ID within the snapshot.
func (s *Snapshot) WallByID(id WallID) (Wall, bool) {
	for _, w := range s.Walls {
		if w.ID == id {
			return w, true
		}
	}
	return Wall{}, false
}

// PlaneByID looks up a plane by ID within the snapshot.
func (s *Snapshot) PlaneByID(id PlaneID) (Plane, bool) {
	for _, p := range s.Planes {
		if p.ID == id {
			return p, true
		}
	}
	return Plane{}, false
}

// Snapshot copies out every wall, plane, and edge under a single read lock.
// Copies are intentionally value types (Wall.Vertices/Absorption are copied
// too) so the IEM thread can read them after the lock is released without
// racing a concurrent AddWall/RemoveWall.
func (r *Room) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &Snapshot{
		NumBands: r.numBands,
		Walls:    make([]Wall, 0, len(r.walls)),
		Planes:   make([]Plane, 0, len(r.planes)),
		Edges:    make([]Edge, 0, len(r.edges)),
	}
	for _, w := range r.walls {
		cp := *w
		cp.Vertices = append([]spatial.Vec3(nil), w.Vertices...)
		s.Walls = append(s.Walls, cp)
	}
	for _, p := range r.planes {
		cp := *p
		cp.WallIDs = append([]WallID(nil), p.WallIDs...)
		s.Planes = append(s.Planes, cp)
	}
	for _, e := range r.edges {
		s.Edges = append(s.Edges, *e)
	}
	return s
}
