// Package exercise generates reproducible fill-in-the-blank exercises for
// quadratic functions and checks learner answers against them.
package exercise

import (
	"errors"
	"fmt"
	"math"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

// DefaultSeed is used when a caller does not pick a seed.
const DefaultSeed int64 = 1337

var (
	// ErrUnknownTopic is returned for a topic without a generator.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrUnknownDifficulty is returned for a difficulty outside easy/medium/hard.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// fractionTolerance is accepted around answers that are not whole numbers.
const fractionTolerance = 0.001

// Translator resolves localized prose by message ID.
type Translator interface {
	Text(id string, data map[string]any) string
}

// Generator builds exercises with prose in one language.
type Generator struct {
	tr Translator
}

// New returns a Generator that looks up all prose through tr.
func New(tr Translator) *Generator {
	return &Generator{tr: tr}
}

// Generate builds the exercise for topic at the given difficulty.
// The same arguments always produce an identical exercise.
func (g *Generator) Generate(topic model.Topic, difficulty model.Difficulty, seed int64) (model.Exercise, error) {
	if !ValidDifficulty(difficulty) {
		return model.Exercise{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	switch topic {
	case model.TopicVertexToNormal:
		return g.vertexToNormal(difficulty, seed)
	case model.TopicNormalToVertex:
		return g.normalToVertex(difficulty, seed)
	case model.TopicBinomialExpansion:
		return g.binomialExpansion(difficulty, seed)
	case model.TopicCompletingTheSquare:
		return g.completingTheSquare(difficulty, seed)
	case model.TopicShift, model.TopicStretch, model.TopicReflect:
		return g.transformation(topic, seed), nil
	case model.TopicExpanding:
		return g.expanding(difficulty, seed), nil
	case model.TopicFactoring:
		return g.factoring(difficulty, seed), nil
	case model.TopicRearranging:
		return g.rearranging(difficulty, seed), nil
	default:
		return model.Exercise{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
}

// ValidDifficulty reports whether d is one of the known levels.
func ValidDifficulty(d model.Difficulty) bool {
	for _, known := range model.Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ValidTopic reports whether t has a generator.
func ValidTopic(t model.Topic) bool {
	for _, known := range model.Topics {
		if t == known {
			return true
		}
	}
	return false
}

// ModuleFor maps a topic to the learning module its completions count toward.
func ModuleFor(t model.Topic) string {
	switch t {
	case model.TopicVertexToNormal, model.TopicBinomialExpansion:
		return "module1"
	case model.TopicNormalToVertex, model.TopicCompletingTheSquare:
		return "module2"
	case model.TopicExpanding, model.TopicFactoring, model.TopicRearranging:
		return "module3"
	default:
		return "transformations"
	}
}

var (
	mediumAValues = []float64{-2, -1, 1, 2, 3}
	hardValues    = []float64{-4.5, -3.5, -2.5, -1.5, -0.5, 0.5, 1.5, 2.5, 3.5, 4.5}
)

// vertexParams draws a, d and e for the difficulty, in that order.
func vertexParams(r *Random, difficulty model.Difficulty) model.VertexForm {
	switch difficulty {
	case model.DifficultyEasy:
		return model.VertexForm{
			A: 1,
			D: float64(r.Int(-5, 5)),
			E: float64(r.Int(-5, 5)),
		}
	case model.DifficultyMedium:
		a := Pick(r, mediumAValues)
		d := float64(r.Int(-5, 5))
		e := float64(r.Int(-5, 5))
		return model.VertexForm{A: a, D: d, E: e}
	default:
		a := Pick(r, hardValues)
		d := Pick(r, hardValues)
		e := Pick(r, hardValues)
		return model.VertexForm{A: a, D: d, E: e}
	}
}

func (g *Generator) text(id string, data map[string]any) string {
	return g.tr.Text(id, data)
}

func (g *Generator) step(id, msgPrefix, template string, blanks []model.Blank, data map[string]any) model.Step {
	if blanks == nil {
		blanks = []model.Blank{}
	}
	return model.Step{
		ID:          id,
		Instruction: g.text(msgPrefix+"Instruction", data),
		Explanation: g.text(msgPrefix+"Explanation", data),
		Template:    template,
		Blanks:      blanks,
		Hint:        g.text(msgPrefix+"Hint", data),
	}
}

func exact(id string, answer float64, label string) model.Blank {
	return model.Blank{ID: id, CorrectAnswer: answer, Label: label}
}

// approx attaches a tolerance when answer is not a whole number.
func approx(id string, answer float64, label string) model.Blank {
	b := exact(id, answer, label)
	if answer != math.Trunc(answer) {
		b.Tolerance = fractionTolerance
	}
	return b
}

func num(x float64) string {
	return parabola.FormatNumber(x)
}

func numInt(x int) string {
	return parabola.FormatNumber(float64(x))
}
