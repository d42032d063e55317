package parabola

import (
	"errors"
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
)

// ErrInvalidSteps is returned by SamplePoints when steps < 1.
var ErrInvalidSteps = errors.New("steps must be at least 1")

// Evaluate returns a(x - d)² + e.
func Evaluate(v model.VertexForm, x float64) float64 {
	dx := x - v.D
	return v.A*dx*dx + v.E
}

// SamplePoints returns steps+1 evenly spaced points from xMin to xMax inclusive.
func SamplePoints(v model.VertexForm, xMin, xMax float64, steps int) ([]model.Point, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSteps, steps)
	}
	stepSize := (xMax - xMin) / float64(steps)
	points := make([]model.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		x := xMin + float64(i)*stepSize
		points = append(points, model.Point{X: x, Y: Evaluate(v, x)})
	}
	return points, nil
}

// Vertex returns S(d | e).
func Vertex(v model.VertexForm) model.Point {
	return model.Point{X: v.D, Y: v.E}
}

// Zeros returns the x-intercepts sorted by ascending x.
// (x - d)² = -e/a has no, one or two real solutions depending on the sign of -e/a.
func Zeros(v model.VertexForm) ([]model.Point, error) {
	if v.A == 0 {
		return nil, ErrDegenerate
	}
	disc := -v.E / v.A
	switch {
	case disc < 0:
		return []model.Point{}, nil
	case disc == 0:
		return []model.Point{{X: noNegZero(v.D), Y: 0}}, nil
	}
	root := math.Sqrt(disc)
	return []model.Point{
		{X: noNegZero(v.D - root), Y: 0},
		{X: noNegZero(v.D + root), Y: 0},
	}, nil
}

// YIntercept returns (0, f(0)).
func YIntercept(v model.VertexForm) model.Point {
	return model.Point{X: 0, Y: Evaluate(v, 0)}
}
