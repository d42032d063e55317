package exercise

import (
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

// binomialExpansion walks from vertex form to normal form in four steps:
// binomial formula, substitution, distributing a, combining constants.
func (g *Generator) binomialExpansion(difficulty model.Difficulty, seed int64) (model.Exercise, error) {
	r := NewRandom(seed)
	v := vertexParams(r, difficulty)
	a, d, e := v.A, v.D, v.E
	n, err := parabola.VertexToNormal(v)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("binomial expansion: %w", err)
	}

	twiceAbsD := math.Abs(2 * d)
	dSquared := d * d
	absD := math.Abs(d)
	aTimesD2 := a * dSquared
	content := parabola.Binomial(d)
	eSuffix := parabola.SignedTerm(e)
	expansionSign := "+"
	if d > 0 {
		expansionSign = "-"
	}

	data := map[string]any{
		"A":          num(a),
		"AbsD":       num(absD),
		"TwiceAbsD":  num(twiceAbsD),
		"DSquared":   num(dSquared),
		"ATimesD2":   num(aTimesD2),
		"E":          num(e),
		"FinalA":     num(n.A),
		"FinalBSign": parabola.Sign(n.B),
		"FinalBAbs":  num(math.Abs(n.B)),
		"FinalC":     num(n.C),
		"FinalCSign": parabola.Sign(n.C),
		"FinalCAbs":  num(math.Abs(n.C)),
		"Content":    content,
	}

	steps := make([]model.Step, 0, 4)

	// Step 1: binomial formula.
	switch {
	case d == 0:
		steps = append(steps, g.step("module1-step1", "BinomialStep1Zero",
			"("+content+")² = x²", nil, data))
	case d > 0:
		steps = append(steps, g.step("module1-step1", "BinomialStep1Second",
			"("+content+")² = x² - {twoD}x + {dSq}", binomialBlanks(twiceAbsD, dSquared), data))
	default:
		steps = append(steps, g.step("module1-step1", "BinomialStep1First",
			"("+content+")² = x² + {twoD}x + {dSq}", binomialBlanks(twiceAbsD, dSquared), data))
	}

	// Step 2: substitute back, display only.
	expandedInner := "x²"
	if d != 0 {
		expandedInner = fmt.Sprintf("x² %s %sx + %s", expansionSign, num(twiceAbsD), num(dSquared))
	}
	aPrefix := parabola.CoefficientPrefix(a)
	if a != 1 && a != -1 {
		aPrefix += " · "
	}
	steps = append(steps, g.step("module1-step2", "BinomialStep2",
		"f(x) = "+aPrefix+"("+expandedInner+")"+eSuffix, nil, data))

	// Step 3: distribute a.
	switch {
	case a == 1 && e == 0:
		tmpl := "f(x) = x²"
		if d != 0 {
			tmpl = "f(x) = " + expandedInner
		}
		steps = append(steps, g.step("module1-step3", "BinomialStep3Trivial", tmpl, nil, data))
	case d == 0:
		steps = append(steps, g.step("module1-step3", "BinomialStep3NoLinear",
			"f(x) = {aCoeff}x²"+eSuffix,
			[]model.Blank{exact("aCoeff", a, "a")}, data))
	default:
		steps = append(steps, g.step("module1-step3", "BinomialStep3",
			"f(x) = {aCoeff}x² "+parabola.Sign(n.B)+" {bAbs}x + {ad2}"+eSuffix,
			[]model.Blank{
				exact("aCoeff", a, "a"),
				exact("bAbs", math.Abs(n.B), "|b|"),
				exact("ad2", aTimesD2, "ad²"),
			}, data))
	}

	// Step 4: combine constants.
	switch {
	case d == 0 && e == 0:
		steps = append(steps, g.step("module1-step4", "BinomialStep4Pure",
			"f(x) = {finalA}x²",
			[]model.Blank{exact("finalA", n.A, "a")}, data))
	case d == 0:
		steps = append(steps, g.step("module1-step4", "BinomialStep4NoLinear",
			"f(x) = {finalA}x² "+parabola.Sign(n.C)+" {finalCabs}",
			[]model.Blank{
				exact("finalA", n.A, "a"),
				exact("finalCabs", math.Abs(n.C), "|c|"),
			}, data))
	default:
		steps = append(steps, g.step("module1-step4", "BinomialStep4",
			"f(x) = {finalA}x² "+parabola.Sign(n.B)+" {finalBabs}x "+parabola.Sign(n.C)+" {finalCabs}",
			[]model.Blank{
				exact("finalA", n.A, "a"),
				exact("finalBabs", math.Abs(n.B), "|b|"),
				exact("finalCabs", math.Abs(n.C), "|c|"),
			}, data))
	}

	formula := "f(x) = " + parabola.CoefficientPrefix(a) + "(" + content + ")²" + eSuffix
	return model.Exercise{
		ID:             fmt.Sprintf("module1-vertex-to-normal-%s-%d", difficulty, seed),
		Title:          g.text("BinomialTitle", nil),
		Description:    g.text("BinomialDescription", map[string]any{"Formula": formula}),
		Steps:          steps,
		ParabolaParams: &v,
	}, nil
}

func binomialBlanks(twiceAbsD, dSquared float64) []model.Blank {
	return []model.Blank{
		exact("twoD", twiceAbsD, "2d"),
		exact("dSq", dSquared, "d²"),
	}
}
