package source

import "github.com/jmannall/roomacoustigo/spatial"

// ID identifies a source within a Registry; stable for the source's
// lifetime and recycled via the registry's free list once removed (spec
// "Lifecycle": "Freed IDs are recycled via an 'empty-slots' free list").
type ID int

// Source is one sound emitter: position, orientation, directivity pattern,
// and a ring of audio frames submitted by the host (spec "Source/listener
// entities"). Position/Orientation/Kind are mutated only by the Registry
// under its lock; Input is its own lock-free producer/consumer buffer.
type Source struct {
	ID          ID
	Position    spatial.Vec3
	Orientation spatial.Quat
	Kind        Kind
	directivity Directivity
	Input       *InputBuffer

	changed bool
}

func newSource(id ID, position spatial.Vec3, orientation spatial.Quat, kind Kind, numBands, inputCapacity int) *Source {
	return &Source{
		ID:          id,
		Position:    position,
		Orientation: orientation,
		Kind:        kind,
		directivity: directivityFor(kind, numBands, nil),
		Input:       NewInputBuffer(inputCapacity),
		changed:     true,
	}
}

// Directivity returns the source's current directivity pattern.
func (s *Source) Directivity() Directivity { return s.directivity }

// Changed reports whether the source has been mutated since the last
// ClearChanged call (spec "A monotonic changed flag tells the IEM whether
// the source must be re-solved").
func (s *Source) Changed() bool { return s.changed }

// ClearChanged resets the changed flag; called by the IEM once it has
// re-solved this source's paths.
func (s *Source) ClearChanged() { s.changed = false }

func directivityFor(kind Kind, numBands int, measured [][]complex128) Directivity {
	if kind == Measured && measured != nil {
		return NewMeasured(measured)
	}
	return NewCardioidFamily(kind, numBands)
}

// Listener is the single global listener (spec "Source/listener
// entities"): a position and orientation that drive receiver_valid and
// receiver_zone on every room update.
type Listener struct {
	Position    spatial.Vec3
	Orientation spatial.Quat
}
