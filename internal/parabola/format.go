package parabola

import (
	"math"
	"strconv"
	"strings"

	"github.com/pavelanni/parabola/internal/model"
)

// FormatNumber prints the shortest decimal that round-trips; -0 prints as 0.
func FormatNumber(x float64) string {
	return strconv.FormatFloat(noNegZero(x), 'f', -1, 64)
}

// FormatVertexForm renders f(x) = a(x - d)² + e in textbook style,
// e.g. "f(x) = -(x + 2)²" or "f(x) = x² - 4".
func FormatVertexForm(v model.VertexForm) string {
	var sb strings.Builder
	sb.WriteString("f(x) = ")
	sb.WriteString(CoefficientPrefix(v.A))
	if v.D == 0 {
		sb.WriteString("x²")
	} else {
		sb.WriteString("(" + Binomial(v.D) + ")²")
	}
	sb.WriteString(SignedTerm(v.E))
	return sb.String()
}

// FormatNormalForm renders f(x) = ax² + bx + c, e.g. "f(x) = 2x² - 12x + 19".
func FormatNormalForm(n model.NormalForm) string {
	var sb strings.Builder
	sb.WriteString("f(x) = ")
	sb.WriteString(CoefficientPrefix(n.A) + "x²")
	if n.B != 0 {
		sign := " + "
		if n.B < 0 {
			sign = " - "
		}
		abs := math.Abs(n.B)
		if abs == 1 {
			sb.WriteString(sign + "x")
		} else {
			sb.WriteString(sign + FormatNumber(abs) + "x")
		}
	}
	sb.WriteString(SignedTerm(n.C))
	return sb.String()
}

// CoefficientPrefix returns "" for 1, "-" for -1 and the number otherwise.
func CoefficientPrefix(a float64) string {
	switch a {
	case 1:
		return ""
	case -1:
		return "-"
	default:
		return FormatNumber(a)
	}
}

// Binomial renders the inner term of (x - d), e.g. "x - 3", "x + 2" or "x" for d = 0.
func Binomial(d float64) string {
	switch {
	case d == 0:
		return "x"
	case d > 0:
		return "x - " + FormatNumber(d)
	default:
		return "x + " + FormatNumber(-d)
	}
}

// SignedTerm renders a trailing constant: " + 3", " - 4" or "" for zero.
func SignedTerm(c float64) string {
	switch {
	case c == 0:
		return ""
	case c > 0:
		return " + " + FormatNumber(c)
	default:
		return " - " + FormatNumber(-c)
	}
}

// Sign returns "+" for non-negative values and "-" otherwise.
func Sign(x float64) string {
	if x >= 0 {
		return "+"
	}
	return "-"
}
