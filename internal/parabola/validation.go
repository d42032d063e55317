package parabola

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
)

// ValidateVertexForm checks untyped input (typically a decoded JSON object)
// against DefaultBounds. All problems are reported, not just the first.
func ValidateVertexForm(input any) model.ValidationResult {
	return ValidateVertexFormWithin(input, model.DefaultBounds)
}

// ValidateVertexFormWithin is ValidateVertexForm with explicit bounds.
func ValidateVertexFormWithin(input any, bounds model.ParameterBounds) model.ValidationResult {
	obj, ok := input.(map[string]any)
	if !ok || obj == nil {
		return model.ValidationResult{Valid: false, Errors: []string{"Input must be a non-null object."}}
	}

	fields := []struct {
		name  string
		bound model.Range
	}{
		{"a", bounds.A},
		{"d", bounds.D},
		{"e", bounds.E},
	}

	errs := []string{}
	for _, f := range fields {
		value, ok := toFloat(obj[f.name])
		if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
			errs = append(errs, fmt.Sprintf("%q must be a finite number.", f.name))
			continue
		}
		errs = appendRangeError(errs, f.name, value, f.bound)
	}

	// a = 0 is a semantic error, reported separately from the range check.
	if a, ok := toFloat(obj["a"]); ok && a == 0 {
		errs = append(errs, degenerateMessage)
	}

	return model.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// CheckVertexForm applies the same rules to a typed value.
func CheckVertexForm(v model.VertexForm, bounds model.ParameterBounds) model.ValidationResult {
	return ValidateVertexFormWithin(map[string]any{"a": v.A, "d": v.D, "e": v.E}, bounds)
}

// Clamp limits value to the closed interval [min, max].
func Clamp(value, min, max float64) float64 {
	return math.Min(max, math.Max(min, value))
}

const degenerateMessage = `"a" must not be zero: a = 0 does not define a parabola.`

func appendRangeError(errs []string, name string, value float64, r model.Range) []string {
	if value < r.Min || value > r.Max {
		return append(errs, fmt.Sprintf("%q must be between %s and %s, got %s.",
			name, FormatNumber(r.Min), FormatNumber(r.Max), FormatNumber(value)))
	}
	return errs
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
