package exercise

import (
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

var hardExpandFactors = []float64{-3, -2, 2, 3}

// The term drills below carry no parabola parameters.

func (g *Generator) expanding(difficulty model.Difficulty, seed int64) model.Exercise {
	r := NewRandom(seed + 23)
	var steps []model.Step
	var expression string

	switch difficulty {
	case model.DifficultyEasy:
		k := float64(r.Int(2, 6))
		m := Pick(r, nonZeroSmall)
		expression = num(k) + "(" + parabola.Binomial(-m) + ")"
		data := map[string]any{"Expression": expression, "K": num(k), "M": paren(m)}
		steps = []model.Step{
			g.step("expanding-step1", "ExpandingEasy",
				expression+" = {coef}x "+parabola.Sign(k*m)+" {constAbs}",
				[]model.Blank{
					exact("coef", k, "k"),
					exact("constAbs", math.Abs(k*m), "|k·m|"),
				}, data),
		}
	case model.DifficultyMedium:
		m := Pick(r, nonZeroSmall)
		expression = "(" + parabola.Binomial(-m) + ")²"
		data := map[string]any{"Expression": expression, "M": num(math.Abs(m))}
		steps = []model.Step{
			g.step("expanding-step1", "ExpandingMedium",
				expression+" = x² "+parabola.Sign(m)+" {twoM}x + {mSq}",
				squareBlanks(m), data),
		}
	default:
		k := Pick(r, hardExpandFactors)
		m := Pick(r, nonZeroSmall)
		inner := "(" + parabola.Binomial(-m) + ")²"
		expression = num(k) + inner
		expanded := "x² " + parabola.Sign(m) + " " + num(math.Abs(2*m)) + "x + " + num(m*m)
		data := map[string]any{"Expression": expression, "K": num(k), "M": num(math.Abs(m)), "Inner": inner}
		steps = []model.Step{
			g.step("expanding-step1", "ExpandingHard1",
				inner+" = x² "+parabola.Sign(m)+" {twoM}x + {mSq}",
				squareBlanks(m), data),
			g.step("expanding-step2", "ExpandingHard2",
				num(k)+"("+expanded+") = {kA}x² "+parabola.Sign(2*k*m)+" {kBAbs}x "+parabola.Sign(k)+" {kCAbs}",
				[]model.Blank{
					exact("kA", k, "a"),
					exact("kBAbs", math.Abs(2*k*m), "|b|"),
					exact("kCAbs", math.Abs(k*m*m), "|c|"),
				}, data),
		}
	}

	return g.drill(model.TopicExpanding, difficulty, seed, expression, steps)
}

func (g *Generator) factoring(difficulty model.Difficulty, seed int64) model.Exercise {
	r := NewRandom(seed + 29)
	var step model.Step
	var expression string

	switch difficulty {
	case model.DifficultyEasy:
		k := float64(r.Int(2, 6))
		m := Pick(r, nonZeroSmall)
		expression = num(k) + "x" + parabola.SignedTerm(k*m)
		data := map[string]any{"Expression": expression, "K": num(k)}
		step = g.step("factoring-step1", "FactoringEasy",
			expression+" = {factor}(x "+parabola.Sign(m)+" {inner})",
			[]model.Blank{
				exact("factor", k, "k"),
				exact("inner", math.Abs(m), "m"),
			}, data)
	case model.DifficultyMedium:
		q := Pick(r, nonZeroLarge)
		expression = "x²" + linearTerm(q)
		data := map[string]any{"Expression": expression}
		step = g.step("factoring-step1", "FactoringMedium",
			expression+" = x(x "+parabola.Sign(q)+" {q})",
			[]model.Blank{exact("q", math.Abs(q), "q")}, data)
	default:
		m := Pick(r, nonZeroSmall)
		expression = "x²" + linearTerm(2*m) + " + " + num(m*m)
		data := map[string]any{"Expression": expression, "M": num(math.Abs(m)), "MSquared": num(m * m)}
		step = g.step("factoring-step1", "FactoringHard",
			expression+" = (x "+parabola.Sign(m)+" {m})²",
			[]model.Blank{exact("m", math.Abs(m), "m")}, data)
	}

	return g.drill(model.TopicFactoring, difficulty, seed, expression, []model.Step{step})
}

func (g *Generator) rearranging(difficulty model.Difficulty, seed int64) model.Exercise {
	r := NewRandom(seed + 31)
	var step model.Step
	var expression string

	switch difficulty {
	case model.DifficultyEasy:
		k := float64(r.Int(2, 6))
		x := float64(r.Int(-6, 6))
		n := Pick(r, nonZeroLarge)
		expression = num(k) + "x" + parabola.SignedTerm(n) + " = " + num(k*x+n)
		data := map[string]any{"Expression": expression, "K": num(k), "N": num(n)}
		step = g.step("rearranging-step1", "RearrangingEasy",
			"x = {x}", []model.Blank{exact("x", x, "x")}, data)
	case model.DifficultyMedium:
		s := float64(r.Int(1, 9))
		expression = "x² - " + num(s*s) + " = 0"
		data := map[string]any{"Expression": expression, "S": num(s), "SSquared": num(s * s)}
		step = g.step("rearranging-step1", "RearrangingMedium",
			"x₁ = {x1}, x₂ = {x2}",
			[]model.Blank{exact("x1", -s, "x₁"), exact("x2", s, "x₂")}, data)
	default:
		k := float64(r.Int(2, 5))
		rhs := float64(r.Int(-5, 5))
		n := Pick(r, nonZeroSmall)
		x := k * (rhs - n)
		expression = "x / " + num(k) + parabola.SignedTerm(n) + " = " + num(rhs)
		data := map[string]any{"Expression": expression, "K": num(k), "N": num(n)}
		step = g.step("rearranging-step1", "RearrangingHard",
			"x = {x}", []model.Blank{exact("x", x, "x")}, data)
	}

	return g.drill(model.TopicRearranging, difficulty, seed, expression, []model.Step{step})
}

func (g *Generator) drill(topic model.Topic, difficulty model.Difficulty, seed int64, expression string, steps []model.Step) model.Exercise {
	prefix := topicMessagePrefix(topic)
	return model.Exercise{
		ID:          fmt.Sprintf("module3-%s-%s-%d", topic, difficulty, seed),
		Title:       g.text(prefix+"Title", nil),
		Description: g.text(prefix+"Description", map[string]any{"Expression": expression}),
		Steps:       steps,
	}
}

func topicMessagePrefix(topic model.Topic) string {
	switch topic {
	case model.TopicExpanding:
		return "Expanding"
	case model.TopicFactoring:
		return "Factoring"
	default:
		return "Rearranging"
	}
}

// squareBlanks are the blanks of (x + m)² = x² + 2mx + m².
func squareBlanks(m float64) []model.Blank {
	return []model.Blank{
		exact("twoM", math.Abs(2*m), "2m"),
		exact("mSq", m*m, "m²"),
	}
}
