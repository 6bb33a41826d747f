package room

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComposeMatchesClosedForm(t *testing.T) {
	a := NewAbsorption([]float64{0.5, 0.7}, 2)
	b := NewAbsorption([]float64{0.5, 0.7}, 5)
	c := Compose(a, b)

	want0 := math.Sqrt(1-0.5) * math.Sqrt(1-0.7)
	want1 := math.Sqrt(1-0.7) * math.Sqrt(1-0.5)
	got := c.ReflectionCoefficients()
	assert.InDelta(t, want0, got[0], 1e-12)
	assert.InDelta(t, want1, got[1], 1e-12)
}

func TestComposeAssociative(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		n := 3
		alphaGen := rapid.SliceOfN(rapid.Float64Range(0, 1), n, n)
		a := NewAbsorption(alphaGen.Draw(tt, "a"), 1)
		b := NewAbsorption(alphaGen.Draw(tt, "b"), 1)
		c := NewAbsorption(alphaGen.Draw(tt, "c"), 1)

		left := Compose(Compose(a, b), c)
		right := Compose(a, Compose(b, c))

		lr := left.ReflectionCoefficients()
		rr := right.ReflectionCoefficients()
		for i := range lr {
			assert.InDelta(tt, rr[i], lr[i], 1e-12)
		}
	})
}

func TestIdentityIsComposeIdentity(t *testing.T) {
	a := NewAbsorption([]float64{0.3, 0.6, 0.1}, 4)
	id := Identity(3)
	got := Compose(a, id).ReflectionCoefficients()
	want := a.ReflectionCoefficients()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}
