package parabola

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pavelanni/parabola/internal/model"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestVertexToNormal(t *testing.T) {
	tests := []struct {
		name string
		in   model.VertexForm
		want model.NormalForm
	}{
		{"shifted", model.VertexForm{A: 2, D: 3, E: 1}, model.NormalForm{A: 2, B: -12, C: 19}},
		{"origin", model.VertexForm{A: 1, D: 0, E: 0}, model.NormalForm{A: 1, B: 0, C: 0}},
		{"negative a", model.VertexForm{A: -1, D: 2, E: -3}, model.NormalForm{A: -1, B: 4, C: -7}},
		{"fractional", model.VertexForm{A: 0.5, D: -1.5, E: 2.5}, model.NormalForm{A: 0.5, B: 1.5, C: 3.625}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VertexToNormal(tt.in)
			if err != nil {
				t.Fatalf("VertexToNormal: %v", err)
			}
			if !almostEqual(got.A, tt.want.A) || !almostEqual(got.B, tt.want.B) || !almostEqual(got.C, tt.want.C) {
				t.Errorf("VertexToNormal(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConversionNormalizesNegativeZero(t *testing.T) {
	n, err := VertexToNormal(model.VertexForm{A: -1, D: 0, E: 0})
	if err != nil {
		t.Fatalf("VertexToNormal: %v", err)
	}
	if math.Signbit(n.B) || math.Signbit(n.C) {
		t.Errorf("expected +0 coefficients, got b=%v c=%v", n.B, n.C)
	}

	v, err := NormalToVertex(model.NormalForm{A: 1, B: 0, C: 0})
	if err != nil {
		t.Fatalf("NormalToVertex: %v", err)
	}
	if math.Signbit(v.D) || math.Signbit(v.E) {
		t.Errorf("expected +0 vertex, got d=%v e=%v", v.D, v.E)
	}
}

func TestConversionDegenerate(t *testing.T) {
	if _, err := VertexToNormal(model.VertexForm{A: 0, D: 1, E: 2}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("VertexToNormal(a=0) error = %v, want ErrDegenerate", err)
	}
	if _, err := NormalToVertex(model.NormalForm{A: 0, B: 1, C: 2}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("NormalToVertex(a=0) error = %v, want ErrDegenerate", err)
	}
}

func TestRoundTrip(t *testing.T) {
	values := []float64{-4.5, -2, -1, -0.5, 0, 0.5, 1, 2.5, 3}
	for _, a := range values {
		if a == 0 {
			continue
		}
		for _, d := range values {
			for _, e := range values {
				v := model.VertexForm{A: a, D: d, E: e}
				n, err := VertexToNormal(v)
				if err != nil {
					t.Fatalf("VertexToNormal(%+v): %v", v, err)
				}
				back, err := NormalToVertex(n)
				if err != nil {
					t.Fatalf("NormalToVertex(%+v): %v", n, err)
				}
				if !almostEqual(back.A, a) || !almostEqual(back.D, d) || !almostEqual(back.E, e) {
					t.Errorf("vertex round trip %+v -> %+v", v, back)
				}

				nf := model.NormalForm{A: a, B: d, C: e}
				vf, err := NormalToVertex(nf)
				if err != nil {
					t.Fatalf("NormalToVertex(%+v): %v", nf, err)
				}
				nback, err := VertexToNormal(vf)
				if err != nil {
					t.Fatalf("VertexToNormal(%+v): %v", vf, err)
				}
				if !almostEqual(nback.A, a) || !almostEqual(nback.B, d) || !almostEqual(nback.C, e) {
					t.Errorf("normal round trip %+v -> %+v", nf, nback)
				}
			}
		}
	}
}

func TestEvaluateAtVertex(t *testing.T) {
	for _, v := range []model.VertexForm{
		{A: 1, D: 0, E: 0},
		{A: -2.5, D: 3.5, E: -1.5},
		{A: 3, D: -4, E: 7},
	} {
		vx := Vertex(v)
		if got := Evaluate(v, vx.X); got != vx.Y {
			t.Errorf("Evaluate(%+v, %v) = %v, want %v", v, vx.X, got, vx.Y)
		}
	}
}

func TestSamplePoints(t *testing.T) {
	points, err := SamplePoints(model.VertexForm{A: 1}, 0, 3, 3)
	if err != nil {
		t.Fatalf("SamplePoints: %v", err)
	}
	wantY := []float64{0, 1, 4, 9}
	if len(points) != len(wantY) {
		t.Fatalf("expected %d points, got %d", len(wantY), len(points))
	}
	for i, p := range points {
		if p.X != float64(i) || p.Y != wantY[i] {
			t.Errorf("point %d = %+v, want (%d, %v)", i, p, i, wantY[i])
		}
	}

	for _, steps := range []int{0, -1} {
		if _, err := SamplePoints(model.VertexForm{A: 1}, 0, 1, steps); !errors.Is(err, ErrInvalidSteps) {
			t.Errorf("SamplePoints(steps=%d) error = %v, want ErrInvalidSteps", steps, err)
		}
	}
}

func TestZeros(t *testing.T) {
	tests := []struct {
		name string
		in   model.VertexForm
		want []model.Point
	}{
		{"two", model.VertexForm{A: 1, D: 0, E: -4}, []model.Point{{X: -2}, {X: 2}}},
		{"one", model.VertexForm{A: 1, D: 3, E: 0}, []model.Point{{X: 3}}},
		{"none", model.VertexForm{A: 1, D: 0, E: 1}, []model.Point{}},
		{"downward", model.VertexForm{A: -1, D: 1, E: 9}, []model.Point{{X: -2}, {X: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Zeros(tt.in)
			if err != nil {
				t.Fatalf("Zeros: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Zeros(%+v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if !almostEqual(got[i].X, tt.want[i].X) || got[i].Y != 0 {
					t.Errorf("zero %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := Zeros(model.VertexForm{A: 0, D: 1, E: 1}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("Zeros(a=0) error = %v, want ErrDegenerate", err)
	}
}

func TestYIntercept(t *testing.T) {
	got := YIntercept(model.VertexForm{A: 2, D: 3, E: 1})
	if got.X != 0 || got.Y != 19 {
		t.Errorf("YIntercept = %+v, want (0, 19)", got)
	}
}

func TestValidateVertexForm(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		wantValid  bool
		wantErrors int
		contains   string
	}{
		{"valid", map[string]any{"a": 1.0, "d": 2.0, "e": -3.0}, true, 0, ""},
		{"nil", nil, false, 1, "non-null object"},
		{"not an object", "abc", false, 1, "non-null object"},
		{"missing fields", map[string]any{}, false, 3, "must be a finite number"},
		{"string field", map[string]any{"a": "1", "d": 0.0, "e": 0.0}, false, 1, `"a" must be a finite number`},
		{"infinite", map[string]any{"a": 1.0, "d": math.Inf(1), "e": 0.0}, false, 1, `"d" must be a finite number`},
		{"out of range", map[string]any{"a": 6.0, "d": -11.0, "e": 0.0}, false, 2, "must be between"},
		{"integers", map[string]any{"a": 2, "d": 1, "e": int64(3)}, true, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateVertexForm(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors %v)", got.Valid, tt.wantValid, got.Errors)
			}
			if len(got.Errors) != tt.wantErrors {
				t.Errorf("expected %d errors, got %v", tt.wantErrors, got.Errors)
			}
			if tt.contains != "" && !strings.Contains(strings.Join(got.Errors, "\n"), tt.contains) {
				t.Errorf("errors %v should contain %q", got.Errors, tt.contains)
			}
		})
	}
}

func TestValidateZeroA(t *testing.T) {
	got := ValidateVertexForm(map[string]any{"a": 0.0, "d": 1.0, "e": 2.0})
	if got.Valid {
		t.Fatal("expected invalid result for a = 0")
	}
	if len(got.Errors) != 1 {
		t.Fatalf("expected exactly the zero error, got %v", got.Errors)
	}
	if !strings.Contains(got.Errors[0], "must not be zero") || strings.Contains(got.Errors[0], "between") {
		t.Errorf("unexpected message %q", got.Errors[0])
	}
}

func TestCheckVertexForm(t *testing.T) {
	if r := CheckVertexForm(model.VertexForm{A: 1, D: 0, E: 0}, model.DefaultBounds); !r.Valid {
		t.Errorf("expected valid, got %v", r.Errors)
	}
	if r := CheckVertexForm(model.VertexForm{A: 0, D: 20, E: 0}, model.DefaultBounds); r.Valid || len(r.Errors) != 2 {
		t.Errorf("expected range and zero errors, got %v", r.Errors)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestFormatVertexForm(t *testing.T) {
	tests := []struct {
		in   model.VertexForm
		want string
	}{
		{model.VertexForm{A: 2, D: 3, E: 1}, "f(x) = 2(x - 3)² + 1"},
		{model.VertexForm{A: 1, D: 0, E: 0}, "f(x) = x²"},
		{model.VertexForm{A: -1, D: -2, E: 0}, "f(x) = -(x + 2)²"},
		{model.VertexForm{A: 1, D: 0, E: -4}, "f(x) = x² - 4"},
		{model.VertexForm{A: 0.5, D: -1.5, E: 2.5}, "f(x) = 0.5(x + 1.5)² + 2.5"},
	}
	for _, tt := range tests {
		if got := FormatVertexForm(tt.in); got != tt.want {
			t.Errorf("FormatVertexForm(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNormalForm(t *testing.T) {
	tests := []struct {
		in   model.NormalForm
		want string
	}{
		{model.NormalForm{A: 2, B: -12, C: 19}, "f(x) = 2x² - 12x + 19"},
		{model.NormalForm{A: 1, B: 0, C: 0}, "f(x) = x²"},
		{model.NormalForm{A: -1, B: 4, C: -7}, "f(x) = -x² + 4x - 7"},
		{model.NormalForm{A: 1, B: 1, C: 0}, "f(x) = x² + x"},
		{model.NormalForm{A: 3, B: -1, C: 0.25}, "f(x) = 3x² - x + 0.25"},
	}
	for _, tt := range tests {
		if got := FormatNormalForm(tt.in); got != tt.want {
			t.Errorf("FormatNormalForm(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.5, "1.5"},
		{-4.5, "-4.5"},
		{20.25, "20.25"},
		{12, "12"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
