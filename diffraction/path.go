// Package diffraction computes per-edge diffraction path geometry (§4.3)
// and the family of diffraction-model DSP stages that render a shadowed or
// grazing image source (§4.4).
package diffraction

import (
	"math"

	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/spatial"
)

// Path is the geometric state of one diffraction event: a source and
// receiver position relative to one edge, their cylindrical coordinates
// around the edge axis, the apex position, and the derived shadow/
// reflection classification (spec §4.3).
type Path struct {
	EdgeID     room.EdgeID
	Length     float64
	WedgeAngle float64

	SourceR, SourceZ, SourceTheta     float64
	ReceiverR, ReceiverZ, ReceiverTheta float64

	ApexZ   float64
	ZValid  bool

	BendingAngle float64
	MinAngle     float64

	InShadow         bool
	InReflectionZone bool
	Valid            bool
}

// cylindrical projects a world point onto (r, z, theta) around the edge:
// z is the signed projection along the axis, r is the perpendicular
// distance, and theta is the angle from planeA's outward face, through the
// exterior wedge, in [0, 2*pi).
func cylindrical(e *room.Edge, p spatial.Vec3) (r, z, theta float64) {
	axis := e.Axis()
	rel := p.Sub(e.Base)
	z = rel.Dot(axis)
	radial := rel.Sub(axis.Scale(z))
	r = radial.Length()
	if r < 1e-12 {
		return 0, z, 0
	}

	ref := e.NormalA.Sub(axis.Scale(e.NormalA.Dot(axis))).Normalized()
	if ref.LengthSq() < 1e-12 {
		return r, z, 0
	}
	perp := axis.Cross(ref)
	x := radial.Dot(ref)
	y := radial.Dot(perp)
	theta = math.Atan2(y, x)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return r, z, theta
}

// NewPath builds the diffraction geometry for source/receiver positions
// around e, per spec §4.3. It never panics: degenerate edges (near-zero
// length) produce an all-invalid Path.
func NewPath(e *room.Edge, source, receiver spatial.Vec3) Path {
	length := e.Length()
	p := Path{EdgeID: e.ID, Length: length, WedgeAngle: e.WedgeAngle}
	if length < 1e-9 {
		return p
	}

	rs, zs, thetaS := cylindrical(e, source)
	rr, zr, thetaR := cylindrical(e, receiver)
	p.SourceR, p.SourceZ, p.SourceTheta = rs, zs, thetaS
	p.ReceiverR, p.ReceiverZ, p.ReceiverTheta = rr, zr, thetaR

	sumR := rs + rr
	apex := zs // degenerate fallback when both radii are ~0
	if sumR > 1e-12 {
		apex = (zs*rr + zr*rs) / sumR
	}
	clamped := apex
	if clamped < 0 {
		clamped = 0
	}
	if clamped > length {
		clamped = length
	}
	p.ApexZ = clamped
	p.ZValid = clamped == apex

	p.BendingAngle = thetaS + thetaR
	p.MinAngle = math.Abs(thetaR - thetaS)

	p.InShadow = p.BendingAngle > math.Pi
	p.InReflectionZone = p.BendingAngle < math.Pi-2*math.Abs(thetaS-math.Pi/2)

	endpointsExterior := thetaS >= -1e-9 && thetaS <= e.WedgeAngle+1e-9 &&
		thetaR >= -1e-9 && thetaR <= e.WedgeAngle+1e-9
	p.Valid = endpointsExterior && apex >= 0 && apex <= length

	return p
}

// TimeDelaySeconds returns the propagation-time difference (seconds) between
// the straight-line source-apex-receiver diffracted path and the direct
// source-receiver path, at the given speed of sound. No diffraction model
// in this package calls it.
func (p Path) TimeDelaySeconds(source, receiver spatial.Vec3, apex spatial.Vec3, speedOfSound float64) float64 {
	diffracted := source.Distance(apex) + apex.Distance(receiver)
	direct := source.Distance(receiver)
	if diffracted < direct {
		diffracted = direct
	}
	return (diffracted - direct) / speedOfSound
}
