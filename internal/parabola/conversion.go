// Package parabola converts between the vertex and normal form of a
// quadratic function and extracts its geometric features.
package parabola

import (
	"errors"

	"github.com/pavelanni/parabola/internal/model"
)

// ErrDegenerate is returned when a = 0, which does not define a parabola.
var ErrDegenerate = errors.New(`parameter "a" must not be zero: a = 0 does not define a parabola`)

// VertexToNormal expands a(x - d)² + e into ax² + bx + c.
func VertexToNormal(v model.VertexForm) (model.NormalForm, error) {
	if v.A == 0 {
		return model.NormalForm{}, ErrDegenerate
	}
	b := -2 * v.A * v.D
	c := v.A*v.D*v.D + v.E
	return model.NormalForm{A: v.A, B: noNegZero(b), C: noNegZero(c)}, nil
}

// NormalToVertex computes the vertex form of ax² + bx + c.
func NormalToVertex(n model.NormalForm) (model.VertexForm, error) {
	if n.A == 0 {
		return model.VertexForm{}, ErrDegenerate
	}
	d := -n.B / (2 * n.A)
	e := n.C - (n.B*n.B)/(4*n.A)
	return model.VertexForm{A: n.A, D: noNegZero(d), E: noNegZero(e)}, nil
}

// noNegZero maps -0 to +0.
func noNegZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}
