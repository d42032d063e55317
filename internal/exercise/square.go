package exercise

import (
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

var (
	nonZeroSmall = []float64{-5, -4, -3, -2, -1, 1, 2, 3, 4, 5}
	nonZeroLarge = []float64{-9, -8, -7, -6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	hardFactors  = []float64{-2, -1, 2, 3}
)

// squareParams draws the normal form for completing the square.
// easy: a = 1 with even b; medium: a = 1 with any non-zero b; hard: a ≠ 1.
func squareParams(r *Random, difficulty model.Difficulty) (model.NormalForm, error) {
	switch difficulty {
	case model.DifficultyEasy:
		d := Pick(r, nonZeroSmall)
		e := float64(r.Int(-5, 5))
		return parabola.VertexToNormal(model.VertexForm{A: 1, D: d, E: e})
	case model.DifficultyMedium:
		b := Pick(r, nonZeroLarge)
		c := float64(r.Int(-5, 5))
		return model.NormalForm{A: 1, B: b, C: c}, nil
	default:
		a := Pick(r, hardFactors)
		d := Pick(r, nonZeroSmall)
		e := float64(r.Int(-5, 5))
		return parabola.VertexToNormal(model.VertexForm{A: a, D: d, E: e})
	}
}

// completingTheSquare converts normal form to vertex form by quadratic
// completion. With a ≠ 1 the factor is pulled out first and the remaining
// steps run on p = b/a.
func (g *Generator) completingTheSquare(difficulty model.Difficulty, seed int64) (model.Exercise, error) {
	r := NewRandom(seed + 11)
	n, err := squareParams(r, difficulty)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("completing the square: %w", err)
	}
	v, err := parabola.NormalToVertex(n)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("completing the square: %w", err)
	}

	a, c := n.A, n.C
	p := n.B / a
	half := p / 2
	q := half * half
	aq := a * q
	scaled := a != 1

	data := map[string]any{
		"A":    num(a),
		"B":    num(n.B),
		"C":    num(c),
		"P":    num(p),
		"Half": num(half),
		"Q":    num(q),
		"AQ":   num(aq),
		"D":    num(v.D),
		"E":    num(v.E),
	}

	// wrap puts the bracketed part behind the factor a when a ≠ 1.
	wrap := func(inner string) string {
		if !scaled {
			return inner
		}
		return parabola.CoefficientPrefix(a) + "(" + inner + ")"
	}
	cSuffix := parabola.SignedTerm(c)

	steps := make([]model.Step, 0, 7)
	if scaled {
		steps = append(steps, g.step("module2-step-factor", "SquareFactor",
			"f(x) = {aFactor}(x² + {bOverA}x)"+cSuffix,
			[]model.Blank{
				exact("aFactor", a, "a"),
				approx("bOverA", p, "b/a"),
			}, data))
	}

	steps = append(steps,
		g.step("module2-step-half", "SquareHalf",
			paren(p)+" / 2 = {bHalf}",
			[]model.Blank{approx("bHalf", half, "b/2")}, data),
		g.step("module2-step-square", "SquareSquare",
			"("+num(half)+")² = {bHalfSq}",
			[]model.Blank{approx("bHalfSq", q, "(b/2)²")}, data),
		g.step("module2-step-supplement", "SquareSupplement",
			"f(x) = "+wrap("x²"+linearTerm(p)+" + "+num(q)+" - "+num(q))+cSuffix,
			nil, data),
		g.step("module2-step-binomial", "SquareBinomial",
			"f(x) = "+wrap("(x "+parabola.Sign(half)+" {dAbs})² - "+num(q))+cSuffix,
			[]model.Blank{approx("dAbs", math.Abs(half), "|b/2|")}, data),
	)

	if scaled {
		steps = append(steps, g.step("module2-step-constant", "SquareConstantScaled",
			num(c)+" - "+paren(a)+" · "+num(q)+" = "+num(c)+" - {aHalfSq} = {eValue}",
			[]model.Blank{
				approx("aHalfSq", aq, "a·(b/2)²"),
				approx("eValue", v.E, "e"),
			}, data))
	} else {
		steps = append(steps, g.step("module2-step-constant", "SquareConstant",
			num(c)+" - "+num(q)+" = {eValue}",
			[]model.Blank{approx("eValue", v.E, "e")}, data))
	}

	prefix := ""
	if scaled {
		prefix = parabola.CoefficientPrefix(a)
	}
	steps = append(steps, g.step("module2-step-result", "SquareResult",
		"f(x) = "+prefix+"(x - {d})² + {e}",
		[]model.Blank{
			approx("d", v.D, "d"),
			approx("e", v.E, "e"),
		}, data))

	return model.Exercise{
		ID:             fmt.Sprintf("module2-normal-to-vertex-%s-%d", difficulty, seed),
		Title:          g.text("SquareTitle", nil),
		Description:    g.text("SquareDescription", map[string]any{"Formula": parabola.FormatNormalForm(n)}),
		Steps:          steps,
		ParabolaParams: &v,
	}, nil
}

// linearTerm renders " + 6x", " - x" and so on; p is never zero here.
func linearTerm(p float64) string {
	abs := math.Abs(p)
	coef := num(abs)
	if abs == 1 {
		coef = ""
	}
	if p < 0 {
		return " - " + coef + "x"
	}
	return " + " + coef + "x"
}

// paren wraps negative numbers in parentheses.
func paren(x float64) string {
	if x < 0 {
		return "(" + num(x) + ")"
	}
	return num(x)
}
