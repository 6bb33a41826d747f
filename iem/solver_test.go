package iem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/slotpool"
	"github.com/jmannall/roomacoustigo/source"
	"github.com/jmannall/roomacoustigo/spatial"
)

// bigFloor returns a single large wall spanning [-10,10]x[-10,10] at y=0
// with outward normal +Y, so a source/listener pair above it always has an
// unambiguous single candidate reflecting plane.
func bigFloor(t *testing.T, alpha float64) (*room.Room, room.WallID) {
	t.Helper()
	r := room.New(1)
	vertices := []spatial.Vec3{
		spatial.NewVec3(-10, 0, -10),
		spatial.NewVec3(-10, 0, 10),
		spatial.NewVec3(10, 0, 10),
		spatial.NewVec3(10, 0, -10),
	}
	id, err := r.AddWall(vertices, room.NewAbsorption([]float64{alpha}, 400))
	require.NoError(t, err)
	w, ok := r.Snapshot().WallByID(id)
	require.True(t, ok)
	require.InDelta(t, 1.0, w.Normal.Y, 1e-9, "expected +Y outward normal")
	return r, id
}

func findPath(data []*slotpool.ImageSourceData, nparts int) *slotpool.ImageSourceData {
	for _, d := range data {
		if len(d.Parts) == nparts {
			return d
		}
	}
	return nil
}

func TestSolveEmitsVisibleFirstOrderFloorReflection(t *testing.T) {
	r, floorID := bigFloor(t, 0.36) // reflection coefficient sqrt(1-0.36) = 0.8
	src := spatial.NewVec3(0, 2, 0)
	lst := spatial.NewVec3(2, 2, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	cfg := DefaultConfig()
	cfg.ReflOrder = 1
	cfg.ShadowDiffOrder = 0
	cfg.SpecularDiffOrder = 0
	s := NewSolver(cfg)

	res := s.Solve(snap, []source.SourceSnapshot{{ID: 1, Position: src}}, source.Listener{Position: lst}, nil)
	data := res.BySource[1]
	require.NotEmpty(t, data)

	direct := findPath(data, 0)
	require.NotNil(t, direct)
	assert.True(t, direct.Visible)
	assert.Nil(t, direct.Diffraction)

	refl := findPath(data, 1)
	require.NotNil(t, refl)
	require.Len(t, refl.Parts, 1)
	assert.True(t, refl.Parts[0].IsReflection)
	w, ok := snap.WallByID(floorID)
	require.True(t, ok)
	assert.Equal(t, w.PlaneID, refl.Parts[0].PlaneID)
	assert.True(t, refl.Visible)
	assert.InDelta(t, 0.8, refl.Absorption.ReflectionCoefficients()[0], 1e-9)
	assert.Equal(t, diffraction.KindNone, refl.DiffractKind)
}

func TestSolveOmitsReflectionsWhenReflOrderZero(t *testing.T) {
	r, _ := bigFloor(t, 0.1)
	src := spatial.NewVec3(0, 2, 0)
	lst := spatial.NewVec3(2, 2, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	cfg := DefaultConfig()
	cfg.ReflOrder = 0
	cfg.ShadowDiffOrder = 0
	cfg.SpecularDiffOrder = 0
	s := NewSolver(cfg)

	res := s.Solve(snap, []source.SourceSnapshot{{ID: 1, Position: src}}, source.Listener{Position: lst}, nil)
	data := res.BySource[1]
	require.Len(t, data, 1)
	assert.Len(t, data[0].Parts, 0)
}

func TestDirectSoundOccludedByInterveningWall(t *testing.T) {
	r := room.New(1)
	// A vertical wall spanning the full height between source and
	// listener, directly on the line between them.
	vertices := []spatial.Vec3{
		spatial.NewVec3(1, -10, -10),
		spatial.NewVec3(1, -10, 10),
		spatial.NewVec3(1, 10, 10),
		spatial.NewVec3(1, 10, -10),
	}
	_, err := r.AddWall(vertices, room.NewAbsorption([]float64{0.1}, 400))
	require.NoError(t, err)

	src := spatial.NewVec3(0, 0, 0)
	lst := spatial.NewVec3(2, 0, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	cfg := DefaultConfig()
	cfg.ReflOrder = 0
	cfg.ShadowDiffOrder = 0
	cfg.SpecularDiffOrder = 0
	s := NewSolver(cfg)

	res := s.Solve(snap, []source.SourceSnapshot{{ID: 1, Position: src}}, source.Listener{Position: lst}, nil)
	data := res.BySource[1]
	require.Len(t, data, 1)
	assert.False(t, data[0].Visible)
}

func TestSolveCycleTagIncrementsPerCycle(t *testing.T) {
	r, _ := bigFloor(t, 0.1)
	src := spatial.NewVec3(0, 2, 0)
	lst := spatial.NewVec3(2, 2, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	cfg := DefaultConfig()
	cfg.ReflOrder = 0
	s := NewSolver(cfg)

	res1 := s.Solve(snap, []source.SourceSnapshot{{ID: 1, Position: src}}, source.Listener{Position: lst}, nil)
	res2 := s.Solve(snap, []source.SourceSnapshot{{ID: 1, Position: src}}, source.Listener{Position: lst}, nil)
	assert.Equal(t, res1.BySource[1][0].CycleTag+1, res2.BySource[1][0].CycleTag)
}

func TestReverbReflectionGainsUseClosestWall(t *testing.T) {
	r, _ := bigFloor(t, 0.36)
	lst := spatial.NewVec3(0, 2, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	gains := reverbReflectionGains(snap, lst, []spatial.Vec3{spatial.NewVec3(0, -1, 0)})
	require.Len(t, gains, 1)
	assert.InDelta(t, 0.8, gains[0][0], 1e-9)
}

func TestReverbReflectionGainsFlatWhenNothingHit(t *testing.T) {
	r, _ := bigFloor(t, 0.36)
	lst := spatial.NewVec3(0, 2, 0)
	r.UpdateListener(lst)
	snap := r.Snapshot()

	gains := reverbReflectionGains(snap, lst, []spatial.Vec3{spatial.NewVec3(0, 1, 0)})
	require.Len(t, gains, 1)
	assert.InDelta(t, 1.0, gains[0][0], 1e-9)
}

func TestPathKeyFormat(t *testing.T) {
	k := pathKey(42, []slotpool.PathPart{
		{IsReflection: true, PlaneID: 7},
		{IsReflection: true, PlaneID: 13},
		{EdgeID: 2},
	})
	assert.Equal(t, "s42r7r13d2", k)
}
