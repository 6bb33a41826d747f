package source

import (
	"sync"

	"github.com/jmannall/roomacoustigo/spatial"
)

// defaultInputCapacitySamples sizes each source's input ring generously
// for one audio callback's worth of frames at typical buffer sizes/sample
// rates, so the host rarely overruns it between callbacks.
const defaultInputCapacitySamples = 8192

// Registry owns every Source and the single Listener, serialising host
// mutation behind one mutex the way room.Room serialises walls and planes
// (spec "Lifecycle", §5 "Host / control threads ... serialised by the
// relevant registry's mutex").
type Registry struct {
	mu        sync.RWMutex
	sources   map[ID]*Source
	freeIDs   []ID
	nextID    ID
	numBands  int
	listener  Listener
}

// NewRegistry creates an empty registry sized for numBands absorption
// bands (matching the room model's band count).
func NewRegistry(numBands int) *Registry {
	return &Registry{
		sources:  make(map[ID]*Source),
		numBands: numBands,
	}
}

func (r *Registry) allocID() ID {
	if n := len(r.freeIDs); n > 0 {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		return id
	}
	r.nextID++
	return r.nextID
}

// AddSource creates a new source and returns its stable ID.
func (r *Registry) AddSource(position spatial.Vec3, orientation spatial.Quat, kind Kind) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.allocID()
	r.sources[id] = newSource(id, position, orientation, kind, r.numBands, defaultInputCapacitySamples)
	return id
}

// RemoveSource destroys a source and recycles its ID (spec "Lifecycle").
func (r *Registry) RemoveSource(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[id]; !ok {
		return
	}
	delete(r.sources, id)
	r.freeIDs = append(r.freeIDs, id)
}

// UpdateSourceTransform moves/reorients a source and marks it changed.
func (r *Registry) UpdateSourceTransform(id ID, position spatial.Vec3, orientation spatial.Quat) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sources[id]
	if !ok {
		return
	}
	s.Position = position
	s.Orientation = orientation
	s.changed = true
}

// UpdateSourceDirectivity swaps a source's directivity pattern and marks
// it changed. measuredCoefficients is only consulted when kind is Measured.
func (r *Registry) UpdateSourceDirectivity(id ID, kind Kind, measuredCoefficients [][]complex128) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sources[id]
	if !ok {
		return
	}
	s.Kind = kind
	s.directivity = directivityFor(kind, r.numBands, measuredCoefficients)
	s.changed = true
}

// SubmitAudio appends frames to a source's input ring. Safe to call from a
// host thread concurrently with the audio thread's Read.
func (r *Registry) SubmitAudio(id ID, frames []float64) int {
	r.mu.RLock()
	s, ok := r.sources[id]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return s.Input.Submit(frames)
}

// UpdateListener moves/reorients the single global listener.
func (r *Registry) UpdateListener(position spatial.Vec3, orientation spatial.Quat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = Listener{Position: position, Orientation: orientation}
}

// Listener returns the current listener state.
func (r *Registry) Listener() Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listener
}

// SourceSnapshot is an immutable, point-in-time copy of one source's state
// for the IEM background thread to solve against without holding the
// registry lock (mirrors room.Snapshot, spec §5).
type SourceSnapshot struct {
	ID          ID
	Position    spatial.Vec3
	Orientation spatial.Quat
	Kind        Kind
	Directivity Directivity
	Changed     bool
}

// Snapshot copies every source's current state and clears their changed
// flags, and returns the listener alongside them.
func (r *Registry) Snapshot() ([]SourceSnapshot, Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SourceSnapshot, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, SourceSnapshot{
			ID:          s.ID,
			Position:    s.Position,
			Orientation: s.Orientation,
			Kind:        s.Kind,
			Directivity: s.directivity,
			Changed:     s.changed,
		})
		s.changed = false
	}
	return out, r.listener
}

// Source returns the live source for audio-thread access to its input
// buffer (the only field the audio thread touches directly).
func (r *Registry) Source(id ID) (*Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[id]
	return s, ok
}
