package slotpool

import (
	"github.com/jmannall/roomacoustigo/diffraction"
	"github.com/jmannall/roomacoustigo/room"
	"github.com/jmannall/roomacoustigo/spatial"
)

// PathPart is one step of an image-source path's construction (spec "Path
// entities"): either a reflection in a plane or a diffraction at an edge.
type PathPart struct {
	IsReflection bool
	PlaneID      room.PlaneID // valid when IsReflection
	EdgeID       room.EdgeID  // valid when !IsReflection
}

// ImageSourceData is the IEM's description of one audible path, published
// once per solve cycle for the audio thread to realise (spec "Path
// entities"). Key uniquely identifies the geometric path, e.g. "s42r7r13d2"
// for source 42 reflecting in planes 7 and 13 then diffracting at edge 2.
type ImageSourceData struct {
	Key      string
	SourceID int

	Parts         []PathPart
	ImagePosition spatial.Vec3
	Absorption    room.Absorption

	Diffraction   *diffraction.Path
	DiffractKind  diffraction.Kind
	Transform     spatial.Vec3
	Orientation   spatial.Quat

	Visible  bool
	FeedsFDN bool
	FDNChannel int

	CycleTag uint64
}
