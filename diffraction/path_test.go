package diffraction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/spatial"
)

func testEdge() *room.Edge {
	return &room.Edge{
		ID:         1,
		Base:       spatial.NewVec3(0, 0, 0),
		Top:        spatial.NewVec3(0, 0, 2),
		NormalA:    spatial.NewVec3(-1, 0, 0),
		NormalB:    spatial.NewVec3(0, -1, 0),
		WedgeAngle: 1.5 * math.Pi,
	}
}

func TestPathBendingAngleSymmetricUnderSourceReceiverSwap(t *testing.T) {
	e := testEdge()
	source := spatial.NewVec3(1, 1, 1)
	receiver := spatial.NewVec3(2, 0.5, 1.2)

	p1 := NewPath(e, source, receiver)
	p2 := NewPath(e, receiver, source)

	assert.InDelta(t, p1.BendingAngle, p2.BendingAngle, 1e-9)
	assert.InDelta(t, p1.MinAngle, p2.MinAngle, 1e-9)
}

func TestPathApexClampedMarksZInvalid(t *testing.T) {
	e := testEdge()
	// Source and receiver both far "above" the top endpoint along z relative
	// to their radial distances forces the unfolded apex beyond edge_length.
	source := spatial.NewVec3(1, 1, 10)
	receiver := spatial.NewVec3(2, 0.5, 10.5)

	p := NewPath(e, source, receiver)
	require.GreaterOrEqual(t, p.ApexZ, 0.0)
	require.LessOrEqual(t, p.ApexZ, p.Length)
	assert.False(t, p.ZValid)
}

func TestPathDegenerateEdgeIsInvalid(t *testing.T) {
	e := &room.Edge{Base: spatial.NewVec3(0, 0, 0), Top: spatial.NewVec3(0, 0, 0)}
	p := NewPath(e, spatial.NewVec3(1, 0, 0), spatial.NewVec3(-1, 0, 0))
	assert.False(t, p.Valid)
}

func TestAttenuateGatesOnShadowAndValid(t *testing.T) {
	a := NewAttenuate()
	a.SetTargetParameters(Path{Valid: true, InShadow: true})
	var y float64
	for i := 0; i < 1000; i++ {
		y = a.Process(1.0, 0.05)
	}
	assert.InDelta(t, 1.0, y, 1e-3)

	a.SetTargetParameters(Path{Valid: false, InShadow: true})
	for i := 0; i < 1000; i++ {
		y = a.Process(1.0, 0.05)
	}
	assert.InDelta(t, 0.0, y, 1e-3)
}
