package expr

import (
	"math"
	"testing"
)

func TestReverseAngleExpressionWraps(t *testing.T) {
	cases := []struct{ in, want string }{
		{"60", "180 - (60)"},
		{"45 + 15", "180 - (45 + 15)"},
		{"60 °", "180 ° - (60 °)"},
		{"0.5 rad", "180 ° - (0.5 rad)"},
	}
	for _, c := range cases {
		if got := ReverseAngleExpression(c.in); got != c.want {
			t.Errorf("ReverseAngleExpression(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReverseAngleExpressionUnwraps(t *testing.T) {
	cases := []struct{ in, want string }{
		{"180 - (60)", "(60)"},
		{"180-(180)", "(180)"},
		{"180 ° - (60 °)", "(60 °)"},
		{"180 deg - (x)", "(x)"},
	}
	for _, c := range cases {
		if got := ReverseAngleExpression(c.in); got != c.want {
			t.Errorf("ReverseAngleExpression(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReverseAngleExpressionInvolution(t *testing.T) {
	// Reversing twice recovers the original up to redundant parens.
	got := StripOuterParens(ReverseAngleExpression(ReverseAngleExpression("60")))
	if got != "60" {
		t.Errorf("double reverse = %q, want %q", got, "60")
	}
}

func TestStripOuterParens(t *testing.T) {
	cases := []struct{ in, want string }{
		{"(60)", "60"},
		{"((x))", "x"},
		{"(a) + (b)", "(a) + (b)"},
		{"60", "60"},
		{" ( 60 ) ", "60"},
	}
	for _, c := range cases {
		if got := StripOuterParens(c.in); got != c.want {
			t.Errorf("StripOuterParens(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"60", 60},
		{"180 - (60)", 120},
		{"90 °", 90},
		{"3 * 4 + 2", 14},
		{"180 ° - (60 °)", 120},
	}
	for _, c := range cases {
		got, err := Evaluate(c.in)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", c.in, err)
			continue
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestEvaluateRadians(t *testing.T) {
	got, err := Evaluate("0.5 rad")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := 0.5 * 180 / math.Pi
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("0.5 rad = %f, want %f", got, want)
	}
}

func TestEvaluateRejectsGarbage(t *testing.T) {
	if _, err := Evaluate("width + 2"); err == nil {
		t.Error("want error for an unresolved identifier")
	}
	if _, err := Evaluate(""); err == nil {
		t.Error("want error for an empty expression")
	}
}
