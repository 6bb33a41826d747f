// Package spatial provides the 3-vector and quaternion primitives shared by
// every geometric and DSP component of the spatialiser: source/listener
// positions and orientations, wall normals, edge axes, and image-source
// transforms.
package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vec3 is a position, direction, or normal in the room's right-handed
// coordinate system. It is a thin wrapper over r3.Vector so the rest of the
// engine gets real vector algebra without hand-rolling it.
type Vec3 struct {
	r3.Vector
}

// NewVec3 builds a Vec3 from components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{r3.Vector{X: x, Y: y, Z: z}}
}

// Zero3 is the origin / zero vector.
var Zero3 = Vec3{}

func (v Vec3) Add(o Vec3) Vec3   { return Vec3{v.Vector.Add(o.Vector)} }
func (v Vec3) Sub(o Vec3) Vec3   { return Vec3{v.Vector.Sub(o.Vector)} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.Vector.Mul(s)} }
func (v Vec3) Dot(o Vec3) float64   { return v.Vector.Dot(o.Vector) }
func (v Vec3) Cross(o Vec3) Vec3    { return Vec3{v.Vector.Cross(o.Vector)} }
func (v Vec3) Length() float64      { return v.Vector.Norm() }
func (v Vec3) LengthSq() float64    { return v.Vector.Norm2() }

// Normalized returns a unit vector in the direction of v, or the zero vector
// if v is (numerically) zero-length — geometric kernels must never panic on
// degenerate input (spec §4.2 failure semantics).
func (v Vec3) Normalized() Vec3 {
	n := v.Length()
	if n < 1e-12 {
		return Zero3
	}
	return v.Scale(1 / n)
}

func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// ReflectAcrossPlane mirrors v across the plane with the given outward unit
// normal passing through planePoint — used to construct image positions
// (spec §4.2 step d).
func (v Vec3) ReflectAcrossPlane(planePoint, normal Vec3) Vec3 {
	d := v.Sub(planePoint).Dot(normal)
	return v.Sub(normal.Scale(2 * d))
}

// IsFinite reports whether every component is finite — callers use this to
// reject degenerate geometry per spec §4.2 ("never throws").
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
