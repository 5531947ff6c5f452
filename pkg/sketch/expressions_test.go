package sketch

import (
	"errors"
	"math"
	"testing"
)

func angleBetween(s *Sketch, t *testing.T, deg float64) int {
	t.Helper()
	c := NewConstraint(Angle)
	c.First = 0
	c.Second = 1
	c.Value = deg
	idx, err := s.AddConstraint(c)
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	return idx
}

func anglePair(t *testing.T) *Sketch {
	t.Helper()
	s := New()
	s.AddGeometry(line(0, 0, 1, 0))
	s.AddGeometry(line(0, 0, 1, 1))
	return s
}

func TestSetConstraintExpression(t *testing.T) {
	s := anglePair(t)
	idx := angleBetween(s, t, 0)

	if err := s.SetConstraintExpression(idx, "30 + 15"); err != nil {
		t.Fatalf("SetConstraintExpression: %v", err)
	}
	c, _ := s.Constraint(idx)
	if math.Abs(c.Value-45) > 1e-9 {
		t.Errorf("value = %g, want 45", c.Value)
	}
	e, err := s.ConstraintExpression(idx)
	if err != nil || e != "30 + 15" {
		t.Errorf("expression = %q (%v)", e, err)
	}
}

func TestSetConstraintExpressionStripsParens(t *testing.T) {
	s := anglePair(t)
	idx := angleBetween(s, t, 0)

	if err := s.SetConstraintExpression(idx, "((60))"); err != nil {
		t.Fatalf("SetConstraintExpression: %v", err)
	}
	e, _ := s.ConstraintExpression(idx)
	if e != "60" {
		t.Errorf("expression = %q, want 60", e)
	}
}

func TestSetConstraintExpressionRejectsGarbage(t *testing.T) {
	s := anglePair(t)
	idx := angleBetween(s, t, 0)

	var ve *ValueError
	if err := s.SetConstraintExpression(idx, "sixty degrees"); !errors.As(err, &ve) {
		t.Errorf("got %v, want ValueError", err)
	}
	// The constraint is untouched.
	c, _ := s.Constraint(idx)
	if c.Expression != "" || c.Value != 0 {
		t.Errorf("constraint changed: %q, %g", c.Expression, c.Value)
	}
}

func TestReverseAngleValueOnly(t *testing.T) {
	s := anglePair(t)
	idx := angleBetween(s, t, 60)

	if err := s.ReverseAngleConstraintToSupplementary(idx); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	c, _ := s.Constraint(idx)
	if math.Abs(c.Value-120) > 1e-9 {
		t.Errorf("value = %g, want 120", c.Value)
	}

	if err := s.ReverseAngleConstraintToSupplementary(idx); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	c, _ = s.Constraint(idx)
	if math.Abs(c.Value-60) > 1e-9 {
		t.Errorf("value = %g, want 60", c.Value)
	}
}

func TestReverseAngleExpressionRoundTrip(t *testing.T) {
	s := anglePair(t)
	idx := angleBetween(s, t, 0)
	if err := s.SetConstraintExpression(idx, "60"); err != nil {
		t.Fatalf("SetConstraintExpression: %v", err)
	}

	if err := s.ReverseAngleConstraintToSupplementary(idx); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	c, _ := s.Constraint(idx)
	if c.Expression != "180 - (60)" {
		t.Errorf("expression = %q, want %q", c.Expression, "180 - (60)")
	}
	if math.Abs(c.Value-120) > 1e-9 {
		t.Errorf("value = %g, want 120", c.Value)
	}

	// Reversing again unwraps back to the original expression.
	if err := s.ReverseAngleConstraintToSupplementary(idx); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	c, _ = s.Constraint(idx)
	if c.Expression != "60" {
		t.Errorf("expression = %q, want 60", c.Expression)
	}
	if math.Abs(c.Value-60) > 1e-9 {
		t.Errorf("value = %g, want 60", c.Value)
	}
}

func TestReverseAngleNeedsAngleConstraint(t *testing.T) {
	s := anglePair(t)
	idx, err := s.AddConstraint(coincidentBetween(0, 1))
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	var ve *ValueError
	if err := s.ReverseAngleConstraintToSupplementary(idx); !errors.As(err, &ve) {
		t.Errorf("got %v, want ValueError", err)
	}
	if err := s.ReverseAngleConstraintToSupplementary(99); err == nil {
		t.Error("want error for an out-of-range index")
	}
}
