package iem

import (
	"strconv"
	"strings"

	"github.com/jmannall/roomacoustigo/slotpool"
)

// pathKey builds the stable string key identifying one geometric path, e.g.
// "s42r7r13d2" for source 42 reflecting in planes 7 and 13 then diffracting
// at edge 2 (spec "Path entities").
func pathKey(sourceID int, parts []slotpool.PathPart) string {
	var b strings.Builder
	b.WriteByte('s')
	b.WriteString(strconv.Itoa(sourceID))
	for _, p := range parts {
		if p.IsReflection {
			b.WriteByte('r')
			b.WriteString(strconv.Itoa(int(p.PlaneID)))
		} else {
			b.WriteByte('d')
			b.WriteString(strconv.Itoa(int(p.EdgeID)))
		}
	}
	return b.String()
}
