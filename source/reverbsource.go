package source

import (
	"math"

	"github.com/jmannall/roomacoustigo/spatial"
)

// ReverbSource is a lightweight image source pinned at unit distance,
// rendering one FDN channel's output as though it arrived from a fixed
// direction around the listener (spec §4.7). Its direction is fixed at
// init; only the IEM's per-direction reflection EQ changes afterward.
type ReverbSource struct {
	Channel   int
	Direction spatial.Vec3 // unit vector, listener-relative, fixed at init
}

// NewReverbSourceRing places numChannels reverb sources evenly around a
// horizontal ring at the listener's height, one per FDN channel (spec
// §4.7 "a fixed ring of directional emitters around the listener").
func NewReverbSourceRing(numChannels int) []ReverbSource {
	sources := make([]ReverbSource, numChannels)
	for i := range sources {
		angle := 2 * math.Pi * float64(i) / float64(numChannels)
		sources[i] = ReverbSource{
			Channel:   i,
			Direction: spatial.NewVec3(math.Cos(angle), 0, math.Sin(angle)),
		}
	}
	return sources
}

// Position returns the reverb source's world position for a given
// listener, at unit distance along its fixed direction.
func (s ReverbSource) Position(listener Listener) spatial.Vec3 {
	return listener.Position.Add(s.Direction)
}
