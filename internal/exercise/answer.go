package exercise

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pavelanni/parabola/internal/model"
)

// decimalNumber matches plain decimal notation with an optional exponent.
// strconv.ParseFloat alone would also take hex floats, underscores and "inf".
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Check evaluates raw learner input against a blank.
// A single decimal comma is accepted when the input has no dot.
func Check(blank model.Blank, input string) model.AnswerState {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return model.AnswerEmpty
	}
	if !strings.Contains(trimmed, ".") {
		trimmed = strings.Replace(trimmed, ",", ".", 1)
	}
	if !decimalNumber.MatchString(trimmed) {
		return model.AnswerIncorrect
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) {
		return model.AnswerIncorrect
	}
	if math.Abs(value-blank.CorrectAnswer) <= blank.Tolerance {
		return model.AnswerCorrect
	}
	return model.AnswerIncorrect
}
