package exercise

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

// echoTranslator renders the message ID and its data so tests can see which
// message was chosen without loading locale files.
type echoTranslator struct{}

func (echoTranslator) Text(id string, data map[string]any) string {
	if len(data) == 0 {
		return id
	}
	return fmt.Sprintf("%s %v", id, data)
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return New(echoTranslator{})
}

func generate(t *testing.T, g *Generator, topic model.Topic, d model.Difficulty, seed int64) model.Exercise {
	t.Helper()
	ex, err := g.Generate(topic, d, seed)
	if err != nil {
		t.Fatalf("Generate(%s, %s, %d): %v", topic, d, seed, err)
	}
	return ex
}

func TestRandomSequence(t *testing.T) {
	r := NewRandom(0)
	if got, want := r.Float(), 1013904223.0/(1<<32); got != want {
		t.Errorf("first draw = %v, want %v", got, want)
	}

	// Negative seeds wrap modulo 2³².
	neg := NewRandom(-1)
	if got, want := neg.Float(), 1012239698.0/(1<<32); got != want {
		t.Errorf("first draw for seed -1 = %v, want %v", got, want)
	}
	if NewRandom(-1).Float() != NewRandom(1<<32-1).Float() {
		t.Error("seed -1 and 2³²-1 should produce the same sequence")
	}
}

func TestRandomRanges(t *testing.T) {
	r := NewRandom(42)
	values := []string{"a", "b", "c"}
	for i := 0; i < 1000; i++ {
		f := r.Float()
		if f < 0 || f >= 1 {
			t.Fatalf("Float() = %v out of [0, 1)", f)
		}
		n := r.Int(-5, 5)
		if n < -5 || n > 5 {
			t.Fatalf("Int(-5, 5) = %d", n)
		}
		_ = Pick(r, values)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := newTestGenerator(t)
	for _, topic := range model.Topics {
		for _, d := range model.Difficulties {
			for _, seed := range []int64{0, 1, 42, 1337, -7} {
				first, err := json.Marshal(generate(t, g, topic, d, seed))
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				second, err := json.Marshal(generate(t, g, topic, d, seed))
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				if string(first) != string(second) {
					t.Errorf("%s/%s/%d not deterministic", topic, d, seed)
				}
			}
		}
	}
}

func TestGenerateSeedsVary(t *testing.T) {
	g := newTestGenerator(t)
	seen := map[string]bool{}
	for seed := int64(1); seed <= 20; seed++ {
		ex := generate(t, g, model.TopicVertexToNormal, model.DifficultyMedium, seed)
		seen[fmt.Sprint(*ex.ParabolaParams)] = true
	}
	if len(seen) < 5 {
		t.Errorf("expected varied parameters across seeds, got %d distinct", len(seen))
	}
}

func TestGenerateErrors(t *testing.T) {
	g := newTestGenerator(t)
	if _, err := g.Generate("bogus", model.DifficultyEasy, 1); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("unknown topic error = %v, want ErrUnknownTopic", err)
	}
	if _, err := g.Generate(model.TopicShift, "extreme", 1); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("unknown difficulty error = %v, want ErrUnknownDifficulty", err)
	}
}

func TestExerciseShape(t *testing.T) {
	g := newTestGenerator(t)
	for _, topic := range model.Topics {
		for _, d := range model.Difficulties {
			for seed := int64(0); seed < 30; seed++ {
				ex := generate(t, g, topic, d, seed)
				if ex.ID == "" || ex.Title == "" || len(ex.Steps) == 0 {
					t.Fatalf("%s/%s/%d: incomplete exercise %+v", topic, d, seed, ex)
				}
				ids := map[string]bool{}
				for _, step := range ex.Steps {
					if step.Blanks == nil {
						t.Errorf("%s: step %s has nil blanks", ex.ID, step.ID)
					}
					for _, b := range step.Blanks {
						if ids[b.ID] {
							t.Errorf("%s: duplicate blank %q", ex.ID, b.ID)
						}
						ids[b.ID] = true
						if !strings.Contains(step.Template, "{"+b.ID+"}") {
							t.Errorf("%s: template %q lacks {%s}", ex.ID, step.Template, b.ID)
						}
						if math.IsNaN(b.CorrectAnswer) || math.IsInf(b.CorrectAnswer, 0) || b.Tolerance < 0 {
							t.Errorf("%s: bad blank %+v", ex.ID, b)
						}
					}
				}
			}
		}
	}
}

func TestDifficultyPolicy(t *testing.T) {
	g := newTestGenerator(t)
	isHardValue := func(x float64) bool {
		for _, v := range hardValues {
			if v == x {
				return true
			}
		}
		return false
	}
	for seed := int64(0); seed < 100; seed++ {
		easy := *generate(t, g, model.TopicVertexToNormal, model.DifficultyEasy, seed).ParabolaParams
		if easy.A != 1 || easy.D < -5 || easy.D > 5 || easy.E < -5 || easy.E > 5 || easy.D != math.Trunc(easy.D) {
			t.Errorf("easy params out of policy: %+v", easy)
		}
		medium := *generate(t, g, model.TopicVertexToNormal, model.DifficultyMedium, seed).ParabolaParams
		if medium.A == 0 || medium.A < -2 || medium.A > 3 || medium.D < -5 || medium.D > 5 {
			t.Errorf("medium params out of policy: %+v", medium)
		}
		hard := *generate(t, g, model.TopicVertexToNormal, model.DifficultyHard, seed).ParabolaParams
		if !isHardValue(hard.A) || !isHardValue(hard.D) || !isHardValue(hard.E) {
			t.Errorf("hard params out of policy: %+v", hard)
		}
	}
}

func TestVertexToNormalAnswers(t *testing.T) {
	g := newTestGenerator(t)
	ex := generate(t, g, model.TopicVertexToNormal, model.DifficultyMedium, 5)
	v := *ex.ParabolaParams
	if len(ex.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(ex.Steps))
	}
	if got, want := ex.Steps[0].Blanks[0].CorrectAnswer, -2*v.A*v.D; got != want && !(got == 0 && want == 0) {
		t.Errorf("b = %v, want %v", got, want)
	}
	if got, want := ex.Steps[1].Blanks[0].CorrectAnswer, v.A*v.D*v.D+v.E; got != want {
		t.Errorf("c = %v, want %v", got, want)
	}
	if ex.ID != "vertex-to-normal-medium" {
		t.Errorf("ID = %q", ex.ID)
	}
}

func TestNormalToVertexUsesOffsetSeed(t *testing.T) {
	g := newTestGenerator(t)
	n2v := generate(t, g, model.TopicNormalToVertex, model.DifficultyEasy, 3)
	v2n := generate(t, g, model.TopicVertexToNormal, model.DifficultyEasy, 10)
	if *n2v.ParabolaParams != *v2n.ParabolaParams {
		t.Errorf("normal-to-vertex seed 3 should draw like seed 10: %+v vs %+v", *n2v.ParabolaParams, *v2n.ParabolaParams)
	}
	for _, step := range n2v.Steps {
		if step.Blanks[0].Tolerance != 0.001 {
			t.Errorf("step %s tolerance = %v, want 0.001", step.ID, step.Blanks[0].Tolerance)
		}
	}
}

func TestBinomialExpansion(t *testing.T) {
	g := newTestGenerator(t)
	var sawZero, sawNonZero bool
	for seed := int64(0); seed < 300; seed++ {
		ex := generate(t, g, model.TopicBinomialExpansion, model.DifficultyEasy, seed)
		if len(ex.Steps) != 4 {
			t.Fatalf("seed %d: expected 4 steps, got %d", seed, len(ex.Steps))
		}
		v := *ex.ParabolaParams
		step1 := ex.Steps[0]
		if v.D == 0 {
			sawZero = true
			if len(step1.Blanks) != 0 || step1.Template != "(x)² = x²" {
				t.Errorf("seed %d: d = 0 step 1 = %+v", seed, step1)
			}
		} else {
			sawNonZero = true
			if len(step1.Blanks) != 2 {
				t.Fatalf("seed %d: expected 2 blanks, got %d", seed, len(step1.Blanks))
			}
			if step1.Blanks[0].ID != "twoD" || step1.Blanks[0].CorrectAnswer != math.Abs(2*v.D) {
				t.Errorf("seed %d: twoD blank = %+v", seed, step1.Blanks[0])
			}
			if step1.Blanks[1].ID != "dSq" || step1.Blanks[1].CorrectAnswer != v.D*v.D {
				t.Errorf("seed %d: dSq blank = %+v", seed, step1.Blanks[1])
			}
		}
		if len(ex.Steps[1].Blanks) != 0 {
			t.Errorf("seed %d: substitution step should be display only", seed)
		}
		if v.E == 0 && len(ex.Steps[2].Blanks) != 0 {
			t.Errorf("seed %d: a = 1 and e = 0 should have no distribution blanks", seed)
		}
		want := fmt.Sprintf("module1-vertex-to-normal-easy-%d", seed)
		if ex.ID != want {
			t.Errorf("ID = %q, want %q", ex.ID, want)
		}
	}
	if !sawZero || !sawNonZero {
		t.Errorf("expected both d = 0 and d ≠ 0 cases (zero %v, non-zero %v)", sawZero, sawNonZero)
	}
}

func TestBinomialFinalStepMatchesConversion(t *testing.T) {
	g := newTestGenerator(t)
	for seed := int64(0); seed < 50; seed++ {
		ex := generate(t, g, model.TopicBinomialExpansion, model.DifficultyMedium, seed)
		v := *ex.ParabolaParams
		n, err := parabola.VertexToNormal(v)
		if err != nil {
			t.Fatalf("VertexToNormal: %v", err)
		}
		final := ex.Steps[3]
		for _, b := range final.Blanks {
			var want float64
			switch b.ID {
			case "finalA":
				want = n.A
			case "finalBabs":
				want = math.Abs(n.B)
			case "finalCabs":
				want = math.Abs(n.C)
			default:
				t.Fatalf("unexpected blank %q", b.ID)
			}
			if b.CorrectAnswer != want {
				t.Errorf("seed %d: %s = %v, want %v", seed, b.ID, b.CorrectAnswer, want)
			}
		}
	}
}

func TestCompletingTheSquare(t *testing.T) {
	g := newTestGenerator(t)
	tests := []struct {
		difficulty model.Difficulty
		wantSteps  int
	}{
		{model.DifficultyEasy, 6},
		{model.DifficultyMedium, 6},
		{model.DifficultyHard, 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			for seed := int64(0); seed < 40; seed++ {
				ex := generate(t, g, model.TopicCompletingTheSquare, tt.difficulty, seed)
				if len(ex.Steps) != tt.wantSteps {
					t.Fatalf("seed %d: expected %d steps, got %d", seed, tt.wantSteps, len(ex.Steps))
				}
				v := *ex.ParabolaParams
				if tt.difficulty == model.DifficultyHard && v.A == 1 {
					t.Errorf("seed %d: hard exercise with a = 1", seed)
				}
				if tt.difficulty == model.DifficultyEasy {
					n, _ := parabola.VertexToNormal(v)
					if math.Mod(n.B, 2) != 0 {
						t.Errorf("seed %d: easy b = %v is odd", seed, n.B)
					}
				}
				result := ex.Steps[len(ex.Steps)-1]
				if result.Blanks[0].ID != "d" || math.Abs(result.Blanks[0].CorrectAnswer-v.D) > 1e-9 {
					t.Errorf("seed %d: d blank = %+v, vertex %+v", seed, result.Blanks[0], v)
				}
				if result.Blanks[1].ID != "e" || math.Abs(result.Blanks[1].CorrectAnswer-v.E) > 1e-9 {
					t.Errorf("seed %d: e blank = %+v, vertex %+v", seed, result.Blanks[1], v)
				}
				for _, step := range ex.Steps {
					for _, b := range step.Blanks {
						if b.CorrectAnswer != math.Trunc(b.CorrectAnswer) && b.Tolerance != 0.001 {
							t.Errorf("seed %d: fractional blank %+v without tolerance", seed, b)
						}
					}
				}
			}
		})
	}
}

func TestTransformations(t *testing.T) {
	g := newTestGenerator(t)
	for seed := int64(0); seed < 50; seed++ {
		shift := generate(t, g, model.TopicShift, model.DifficultyEasy, seed)
		v := *shift.ParabolaParams
		if v.A != 1 || v.D < -4 || v.D > 4 || v.E < -4 || v.E > 4 {
			t.Errorf("shift params %+v", v)
		}
		if shift.ID != "term-transformation-shift" || len(shift.Steps) != 1 || len(shift.Steps[0].Blanks) != 2 {
			t.Errorf("shift exercise shape %+v", shift)
		}

		stretch := generate(t, g, model.TopicStretch, model.DifficultyEasy, seed)
		a := stretch.ParabolaParams.A
		if a != 2 && a != 3 && a != -2 {
			t.Errorf("stretch a = %v", a)
		}

		reflect := generate(t, g, model.TopicReflect, model.DifficultyEasy, seed)
		rv := *reflect.ParabolaParams
		if (rv.A != -1 && rv.A != -2) || rv.D < -3 || rv.D > 3 || rv.E != 0 {
			t.Errorf("reflect params %+v", rv)
		}

		// Difficulty does not influence transformations.
		hard := generate(t, g, model.TopicShift, model.DifficultyHard, seed)
		if *hard.ParabolaParams != v {
			t.Errorf("shift differs by difficulty: %+v vs %+v", *hard.ParabolaParams, v)
		}
	}
}

func TestAlgebraDrills(t *testing.T) {
	g := newTestGenerator(t)
	tests := []struct {
		topic      model.Topic
		difficulty model.Difficulty
		blanks     []int
	}{
		{model.TopicExpanding, model.DifficultyEasy, []int{2}},
		{model.TopicExpanding, model.DifficultyMedium, []int{2}},
		{model.TopicExpanding, model.DifficultyHard, []int{2, 3}},
		{model.TopicFactoring, model.DifficultyEasy, []int{2}},
		{model.TopicFactoring, model.DifficultyMedium, []int{1}},
		{model.TopicFactoring, model.DifficultyHard, []int{1}},
		{model.TopicRearranging, model.DifficultyEasy, []int{1}},
		{model.TopicRearranging, model.DifficultyMedium, []int{2}},
		{model.TopicRearranging, model.DifficultyHard, []int{1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.topic)+"/"+string(tt.difficulty), func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				ex := generate(t, g, tt.topic, tt.difficulty, seed)
				if ex.ParabolaParams != nil {
					t.Errorf("drill should not carry parabola params")
				}
				if len(ex.Steps) != len(tt.blanks) {
					t.Fatalf("expected %d steps, got %d", len(tt.blanks), len(ex.Steps))
				}
				for i, n := range tt.blanks {
					if len(ex.Steps[i].Blanks) != n {
						t.Errorf("step %d: expected %d blanks, got %d", i, n, len(ex.Steps[i].Blanks))
					}
				}
			}
		})
	}
}

func TestRearrangingMediumSymmetricZeros(t *testing.T) {
	g := newTestGenerator(t)
	ex := generate(t, g, model.TopicRearranging, model.DifficultyMedium, 9)
	blanks := ex.Steps[0].Blanks
	if blanks[0].CorrectAnswer != -blanks[1].CorrectAnswer || blanks[0].CorrectAnswer >= 0 {
		t.Errorf("zeros %v and %v should be symmetric, negative first", blanks[0].CorrectAnswer, blanks[1].CorrectAnswer)
	}
}

func TestModuleFor(t *testing.T) {
	tests := map[model.Topic]string{
		model.TopicBinomialExpansion:   "module1",
		model.TopicCompletingTheSquare: "module2",
		model.TopicFactoring:           "module3",
		model.TopicReflect:             "transformations",
	}
	for topic, want := range tests {
		if got := ModuleFor(topic); got != want {
			t.Errorf("ModuleFor(%s) = %q, want %q", topic, got, want)
		}
	}
}
