package exercise

import (
	"strings"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

var (
	stretchFactors = []float64{2, 3, -2}
	reflectFactors = []float64{-1, -2}
)

// transformation builds a single-step exercise that reads the parameters of
// a shifted, stretched or reflected standard parabola. Difficulty is ignored.
func (g *Generator) transformation(topic model.Topic, seed int64) model.Exercise {
	r := NewRandom(seed + 19)

	var (
		v        model.VertexForm
		prefix   string
		template string
		blanks   []model.Blank
	)
	switch topic {
	case model.TopicShift:
		d := float64(r.Int(-4, 4))
		e := float64(r.Int(-4, 4))
		v = model.VertexForm{A: 1, D: d, E: e}
		prefix = "TransformShift"
		template = "g(x) = (x - {d})² + {e}"
		blanks = []model.Blank{exact("d", d, "d"), exact("e", e, "e")}
	case model.TopicStretch:
		a := Pick(r, stretchFactors)
		v = model.VertexForm{A: a}
		prefix = "TransformStretch"
		template = "g(x) = {a}x²"
		blanks = []model.Blank{exact("a", a, "a")}
	default:
		a := Pick(r, reflectFactors)
		d := float64(r.Int(-3, 3))
		v = model.VertexForm{A: a, D: d}
		prefix = "TransformReflect"
		template = "g(x) = {a}(x - {d})²"
		blanks = []model.Blank{exact("a", a, "a"), exact("d", d, "d")}
	}

	formula := "g" + strings.TrimPrefix(parabola.FormatVertexForm(v), "f")
	id := "term-transformation-" + string(topic)
	step := model.Step{
		ID:          id,
		Instruction: g.text(prefix+"Instruction", nil),
		Explanation: g.text("TransformExplanation", nil),
		Template:    template,
		Blanks:      blanks,
		Hint:        g.text("TransformHint", nil),
	}

	return model.Exercise{
		ID:             id,
		Title:          g.text("TransformTitle", nil),
		Description:    g.text(prefix+"Description", map[string]any{"Formula": formula}),
		Steps:          []model.Step{step},
		ParabolaParams: &v,
	}
}
