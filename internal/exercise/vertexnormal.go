package exercise

import (
	"fmt"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

func (g *Generator) vertexToNormal(difficulty model.Difficulty, seed int64) (model.Exercise, error) {
	r := NewRandom(seed)
	v := vertexParams(r, difficulty)
	n, err := parabola.VertexToNormal(v)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("vertex to normal: %w", err)
	}

	steps := []model.Step{
		g.step("vertex-to-normal-b", "VertexToNormalB", "b = -2 · a · d = {b}",
			[]model.Blank{exact("b", n.B, "b")}, nil),
		g.step("vertex-to-normal-c", "VertexToNormalC", "c = a · d² + e = {c}",
			[]model.Blank{exact("c", n.C, "c")}, nil),
	}

	return model.Exercise{
		ID:             "vertex-to-normal-" + string(difficulty),
		Title:          g.text("VertexToNormalTitle", nil),
		Description:    g.text("VertexToNormalDescription", map[string]any{"Formula": parabola.FormatVertexForm(v)}),
		Steps:          steps,
		ParabolaParams: &v,
	}, nil
}

func (g *Generator) normalToVertex(difficulty model.Difficulty, seed int64) (model.Exercise, error) {
	r := NewRandom(seed + 7)
	v := vertexParams(r, difficulty)
	n, err := parabola.VertexToNormal(v)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("normal to vertex: %w", err)
	}
	restored, err := parabola.NormalToVertex(n)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("normal to vertex: %w", err)
	}

	steps := []model.Step{
		g.step("normal-to-vertex-d", "NormalToVertexD", "d = -b / (2a) = {d}",
			[]model.Blank{{ID: "d", CorrectAnswer: restored.D, Tolerance: fractionTolerance, Label: "d"}}, nil),
		g.step("normal-to-vertex-e", "NormalToVertexE", "e = c - b² / (4a) = {e}",
			[]model.Blank{{ID: "e", CorrectAnswer: restored.E, Tolerance: fractionTolerance, Label: "e"}}, nil),
	}

	return model.Exercise{
		ID:             "normal-to-vertex-" + string(difficulty),
		Title:          g.text("NormalToVertexTitle", nil),
		Description:    g.text("NormalToVertexDescription", map[string]any{"Formula": parabola.FormatNormalForm(n)}),
		Steps:          steps,
		ParabolaParams: &restored,
	}, nil
}
