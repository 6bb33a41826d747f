package room

import (
	"fmt"
	"math"
	"sync"

	"github.com/jmannall/roomacoustigo/rtlog"
	"github.com/jmannall/roomacoustigo/spatial"
)

const (
	planeNormalEps   = 1e-6
	planeDistanceEps = 1e-5
	vertexMatchEps   = 1e-5
)

// Room owns the wall/plane/edge registry. All mutation is guarded by a
// coarse RWMutex (spec §4.1 "Guarded by a coarse lock", §5 "Host threads may
// block on registry mutexes only") — the IEM background thread takes a
// read-snapshot once per cycle rather than holding the lock while solving.
type Room struct {
	mu sync.RWMutex

	numBands int

	walls  map[WallID]*Wall
	planes map[PlaneID]*Plane
	edges  map[EdgeID]*Edge

	freeWallIDs  []WallID
	nextWallID   WallID
	freePlaneIDs []PlaneID
	nextPlaneID  PlaneID
	freeEdgeIDs  []EdgeID
	nextEdgeID   EdgeID

	changed    bool
	edgesDirty bool
}

// New creates an empty room whose walls carry numBands absorption bands.
func New(numBands int) *Room {
	return &Room{
		numBands: numBands,
		walls:    make(map[WallID]*Wall),
		planes:   make(map[PlaneID]*Plane),
		edges:    make(map[EdgeID]*Edge),
	}
}

func computeWallPlane(vertices []spatial.Vec3) (normal spatial.Vec3, distance float64, ok bool) {
	if len(vertices) < 3 {
		return spatial.Zero3, 0, false
	}
	normal = vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0])).Normalized()
	if normal.LengthSq() < 1e-18 {
		return spatial.Zero3, 0, false
	}
	distance = normal.Dot(vertices[0])
	return normal, distance, true
}

// AddWall creates a wall from an ordered (right-hand-rule outward normal)
// vertex loop and an absorption vector, merges it into an existing plane
// when one shares its normal and signed distance, and discovers any edges
// it shares with existing walls (spec §4.1 add_wall).
func (r *Room) AddWall(vertices []spatial.Vec3, absorption Absorption) (WallID, error) {
	normal, dist, ok := computeWallPlane(vertices)
	if !ok {
		return 0, fmt.Errorf("room: degenerate wall (fewer than 3 non-collinear vertices)")
	}
	if absorption.NumBands() != r.numBands {
		return 0, fmt.Errorf("room: absorption has %d bands, want %d", absorption.NumBands(), r.numBands)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.allocWallID()
	w := &Wall{
		ID:         id,
		Vertices:   append([]spatial.Vec3(nil), vertices...),
		Normal:     normal,
		Distance:   dist,
		Absorption: absorption,
	}
	w.PlaneID = r.findOrCreatePlaneLocked(normal, dist)
	r.walls[id] = w
	r.planes[w.PlaneID].WallIDs = append(r.planes[w.PlaneID].WallIDs, id)

	r.discoverEdgesForWallLocked(w)

	r.changed = true
	return id, nil
}

func (r *Room) allocWallID() WallID {
	if n := len(r.freeWallIDs); n > 0 {
		id := r.freeWallIDs[n-1]
		r.freeWallIDs = r.freeWallIDs[:n-1]
		return id
	}
	r.nextWallID++
	return r.nextWallID
}

func (r *Room) allocPlaneID() PlaneID {
	if n := len(r.freePlaneIDs); n > 0 {
		id := r.freePlaneIDs[n-1]
		r.freePlaneIDs = r.freePlaneIDs[:n-1]
		return id
	}
	r.nextPlaneID++
	return r.nextPlaneID
}

func (r *Room) allocEdgeID() EdgeID {
	if n := len(r.freeEdgeIDs); n > 0 {
		id := r.freeEdgeIDs[n-1]
		r.freeEdgeIDs = r.freeEdgeIDs[:n-1]
		return id
	}
	r.nextEdgeID++
	return r.nextEdgeID
}

func (r *Room) findOrCreatePlaneLocked(normal spatial.Vec3, dist float64) PlaneID {
	for id, p := range r.planes {
		if p.Normal.Dot(normal) > 1-planeNormalEps && abs(p.Distance-dist) < planeDistanceEps {
			return id
		}
	}
	id := r.allocPlaneID()
	r.planes[id] = &Plane{ID: id, Normal: normal, Distance: dist}
	return id
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

const pi = math.Pi

func acos(x float64) float64 { return math.Acos(x) }

func atan2(y, x float64) float64 { return math.Atan2(y, x) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// UpdateWall replaces a wall's vertex loop in place and marks the room
// changed; out-of-range IDs are silently ignored (spec §4.1 failure
// semantics — the geometry thread's view is advisory).
func (r *Room) UpdateWall(id WallID, vertices []spatial.Vec3) {
	normal, dist, ok := computeWallPlane(vertices)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, found := r.walls[id]
	if !found {
		return
	}
	w.Vertices = append([]spatial.Vec3(nil), vertices...)
	w.Normal = normal
	w.Distance = dist
	r.changed = true
	r.edgesDirty = true
}

// UpdateWallAbsorption replaces a wall's absorption vector. A band-count
// mismatch is rejected with a warning (spec §4.1 failure semantics) rather
// than silently truncating or panicking.
func (r *Room) UpdateWallAbsorption(id WallID, absorption Absorption) {
	if absorption.NumBands() != r.numBands {
		rtlog.Warnf("room: UpdateWallAbsorption(%d): got %d bands, want %d", id, absorption.NumBands(), r.numBands)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, found := r.walls[id]
	if !found {
		return
	}
	w.Absorption = absorption
	r.changed = true
}

// RemoveWall deletes a wall, detaches it from its plane (removing the plane
// too if it becomes empty), drops any edges that referenced it, and
// recycles its ID.
func (r *Room) RemoveWall(id WallID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, found := r.walls[id]
	if !found {
		return
	}
	delete(r.walls, id)
	r.freeWallIDs = append(r.freeWallIDs, id)

	if p, ok := r.planes[w.PlaneID]; ok {
		p.WallIDs = removeWallID(p.WallIDs, id)
		if len(p.WallIDs) == 0 {
			delete(r.planes, w.PlaneID)
			r.freePlaneIDs = append(r.freePlaneIDs, w.PlaneID)
		}
	}

	for eid, e := range r.edges {
		if e.PlaneA == w.PlaneID || e.PlaneB == w.PlaneID {
			delete(r.edges, eid)
			r.freeEdgeIDs = append(r.freeEdgeIDs, eid)
		}
	}

	r.changed = true
	r.edgesDirty = true
}

func removeWallID(s []WallID, id WallID) []WallID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// UpdatePlanesAndEdges performs the deferred full edge rebuild after a batch
// of wall edits (spec §4.1). AddWall already discovers edges incrementally;
// this is for callers that prefer to batch several UpdateWall calls first.
func (r *Room) UpdatePlanesAndEdges() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.edgesDirty {
		return
	}
	r.edges = make(map[EdgeID]*Edge)
	r.freeEdgeIDs = nil
	r.nextEdgeID = 0
	for _, w := range r.walls {
		r.discoverEdgesForWallLocked(w)
	}
	r.edgesDirty = false
}

// Changed reports and clears the room's dirty flag, for the IEM's
// once-per-cycle snapshot check (spec §4.2 step 1).
func (r *Room) Changed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.changed
	r.changed = false
	return c
}
