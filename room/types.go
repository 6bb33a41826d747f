package room

import "github.com/jmannall/roomacoustigo/spatial"

// WallID, PlaneID, and EdgeID are stable numeric identities. IDs are reused
// (recycled from a free list) when their owner is removed, so path keys
// built from them stay stable across short-lived edits (spec §3 Lifecycle).
type WallID int
type PlaneID int
type EdgeID int

// ReceiverZone classifies where the listener sits relative to a diffracting
// edge's wedge, recomputed on every listener update (spec §3 Edge).
type ReceiverZone int

const (
	ZoneInvalid ReceiverZone = iota
	ZoneShadowed
	ZoneIlluminated
	ZoneReflection
)

// Wall is a convex planar polygon with an outward normal (right-hand rule
// over its ordered vertex list) and an absorption vector.
type Wall struct {
	ID         WallID
	Vertices   []spatial.Vec3
	Normal     spatial.Vec3
	Distance   float64 // signed distance of the plane from the origin
	Absorption Absorption
	PlaneID    PlaneID
}

// Plane groups every wall sharing the same outward normal and signed
// distance (spec §3 Plane).
type Plane struct {
	ID            PlaneID
	Normal        spatial.Vec3
	Distance      float64
	WallIDs       []WallID
	ReceiverValid bool
}

// Edge is the directed shared boundary between two walls of different
// normals (spec §3 Edge). NormalA/NormalB follow the right-hand curl from
// PlaneA to PlaneB through the exterior wedge.
type Edge struct {
	ID           EdgeID
	Base, Top    spatial.Vec3
	PlaneA       PlaneID
	PlaneB       PlaneID
	NormalA      spatial.Vec3
	NormalB      spatial.Vec3
	WedgeAngle   float64
	ReceiverZone ReceiverZone
}

// Length returns the edge's physical length, Top-Base.
func (e *Edge) Length() float64 { return e.Top.Distance(e.Base) }

// Axis returns the unit vector from Base to Top.
func (e *Edge) Axis() spatial.Vec3 { return e.Top.Sub(e.Base).Normalized() }

// PointAt returns the world position at parameter z along [0, Length()].
func (e *Edge) PointAt(z float64) spatial.Vec3 {
	return e.Base.Add(e.Axis().Scale(z))
}
