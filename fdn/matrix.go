package fdn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// FeedbackMatrix maps an FDN's N channel outputs to N feedback inputs
// (spec §4.6).
type FeedbackMatrix interface {
	Apply(y []float64, x []float64)
}

// Householder implements x = y - (2/N)*sum(y)*1, the reflection of y about
// the all-ones vector's orthogonal complement. It needs no stored matrix.
type Householder struct{ n int }

func NewHouseholder(n int) *Householder { return &Householder{n: n} }

func (h *Householder) Apply(y []float64, x []float64) {
	var sum float64
	for _, v := range y {
		sum += v
	}
	scale := 2.0 / float64(h.n)
	for i, v := range y {
		x[i] = v - scale*sum
	}
}

// RandomOrthogonal is a precomputed orthonormal basis built by Gram-Schmidt
// from uniform random column vectors (spec §4.6).
type RandomOrthogonal struct {
	n int
	m *mat.Dense
}

// NewRandomOrthogonal builds an n x n orthonormal matrix via Gram-Schmidt,
// redrawing any column whose residual norm falls below tol after
// projecting out the already-accepted columns.
func NewRandomOrthogonal(n int, rng *rand.Rand) *RandomOrthogonal {
	const tol = 1e-6
	cols := make([][]float64, n)

	first := randomUnitVector(n, rng)
	cols[0] = first

	for j := 1; j < n; j++ {
		var candidate []float64
		for {
			v := randomVector(n, rng)
			for k := 0; k < j; k++ {
				proj := dot(cols[k], v)
				for i := range v {
					v[i] -= proj * cols[k][i]
				}
			}
			norm := math.Sqrt(dot(v, v))
			if norm >= tol {
				for i := range v {
					v[i] /= norm
				}
				candidate = v
				break
			}
		}
		cols[j] = candidate
	}

	m := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			m.Set(i, j, cols[j][i])
		}
	}
	return &RandomOrthogonal{n: n, m: m}
}

func (r *RandomOrthogonal) Apply(y []float64, x []float64) {
	yv := mat.NewVecDense(r.n, y)
	xv := mat.NewVecDense(r.n, nil)
	xv.MulVec(r.m, yv)
	for i := 0; i < r.n; i++ {
		x[i] = xv.AtVec(i)
	}
}

func randomVector(n int, rng *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.Float64()*2 - 1
	}
	return v
}

func randomUnitVector(n int, rng *rand.Rand) []float64 {
	v := randomVector(n, rng)
	norm := math.Sqrt(dot(v, v))
	for i := range v {
		v[i] /= norm
	}
	return v
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
