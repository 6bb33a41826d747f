package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmannall/roomacoustigo/spatial"
)

func squareWall(corner, du, dv spatial.Vec3, size float64) []spatial.Vec3 {
	return []spatial.Vec3{
		corner,
		corner.Add(du.Scale(size)),
		corner.Add(du.Scale(size)).Add(dv.Scale(size)),
		corner.Add(dv.Scale(size)),
	}
}

// buildCorner constructs two walls meeting at a 90 degree interior corner
// (the common "inside of a room" case, exterior wedge angle 270 degrees, as
// used in spec scenario SC-1/SC-2).
func buildCorner(t *testing.T) (*Room, WallID, WallID) {
	t.Helper()
	r := New(2)
	alpha := []float64{0.1, 0.1}

	// Floor, normal -Y (right-hand rule over this vertex order), spanning
	// the XZ plane at y=0.
	floor := squareWall(
		spatial.NewVec3(0, 0, 0),
		spatial.NewVec3(1, 0, 0),
		spatial.NewVec3(0, 0, 1),
		2,
	)
	// Wall, normal -X, spanning the YZ plane at x=0, sharing the z=0..2 edge
	// with the floor along x=0.
	wall := []spatial.Vec3{
		spatial.NewVec3(0, 0, 0),
		spatial.NewVec3(0, 0, 2),
		spatial.NewVec3(0, 2, 2),
		spatial.NewVec3(0, 2, 0),
	}

	floorID, err := r.AddWall(floor, NewAbsorption(alpha, 4))
	require.NoError(t, err)
	wallID, err := r.AddWall(wall, NewAbsorption(alpha, 4))
	require.NoError(t, err)
	return r, floorID, wallID
}

func TestAddWallDiscoversSharedEdge(t *testing.T) {
	r, _, _ := buildCorner(t)
	s := r.Snapshot()
	require.Len(t, s.Edges, 1)
	e := s.Edges[0]
	assert.InDelta(t, 2.0, e.Length(), 1e-9)
}

func TestRemoveWallDropsItsEdges(t *testing.T) {
	r, floorID, _ := buildCorner(t)
	require.Len(t, r.Snapshot().Edges, 1)
	r.RemoveWall(floorID)
	assert.Len(t, r.Snapshot().Edges, 0)
}

func TestUpdateListenerMarksIlluminatedInsideRoom(t *testing.T) {
	r, _, _ := buildCorner(t)
	r.UpdateListener(spatial.NewVec3(1, 1, 1))
	s := r.Snapshot()
	require.Len(t, s.Edges, 1)
	assert.Equal(t, ZoneIlluminated, r.EdgeReceiverZone(s.Edges[0].ID))
}

func TestUpdateWallAbsorptionRejectsBandMismatch(t *testing.T) {
	r, floorID, _ := buildCorner(t)
	r.UpdateWallAbsorption(floorID, NewAbsorption([]float64{0.2}, 4))
	s := r.Snapshot()
	w, ok := s.WallByID(floorID)
	require.True(t, ok)
	assert.Equal(t, 2, w.Absorption.NumBands())
}

func TestGetReverbTimeSabinePositive(t *testing.T) {
	r, _, _ := buildCorner(t)
	t60 := r.GetReverbTime(60, Sabine)
	for _, v := range t60 {
		assert.Greater(t, v, 0.0)
	}
}
