package sketch

import (
	"errors"
	"testing"
)

func TestModifyKnotMultiplicityRaise(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	if err := s.ModifyBSplineKnotMultiplicity(0, 2, 1); err != nil {
		t.Fatalf("ModifyBSplineKnotMultiplicity: %v", err)
	}

	b := mustSpline(t, s, 0)
	if b.Mults[1] != 2 {
		t.Errorf("mult = %d, want 2", b.Mults[1])
	}
	// Raising the multiplicity adds a pole.
	if b.CountPoles() != 6 {
		t.Errorf("pole count = %d, want 6", b.CountPoles())
	}
}

func TestModifyKnotMultiplicityToZeroRemovesKnot(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	if err := s.ModifyBSplineKnotMultiplicity(0, 2, -1); err != nil {
		t.Fatalf("ModifyBSplineKnotMultiplicity: %v", err)
	}

	b := mustSpline(t, s, 0)
	if b.CountKnots() != 2 {
		t.Errorf("knot count = %d, want 2", b.CountKnots())
	}
	if b.CountPoles() != 4 {
		t.Errorf("pole count = %d, want 4", b.CountPoles())
	}
}

func TestModifyKnotMultiplicityErrors(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))
	s.AddGeometry(line(0, 5, 1, 5))

	var ie *IndexError
	if err := s.ModifyBSplineKnotMultiplicity(0, 4, 1); !errors.As(err, &ie) {
		t.Errorf("out-of-range knot: got %v, want IndexError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(0, 0, 1); !errors.As(err, &ie) {
		t.Errorf("zero knot index: got %v, want IndexError", err)
	}

	var ve *ValueError
	if err := s.ModifyBSplineKnotMultiplicity(0, 1, 1); !errors.As(err, &ve) {
		t.Errorf("end knot: got %v, want ValueError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(0, 3, -1); !errors.As(err, &ve) {
		t.Errorf("end knot: got %v, want ValueError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(0, 2, 0); !errors.As(err, &ve) {
		t.Errorf("zero delta: got %v, want ValueError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(0, 2, 3); !errors.As(err, &ve) {
		t.Errorf("beyond degree: got %v, want ValueError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(0, 2, -2); !errors.As(err, &ve) {
		t.Errorf("below zero: got %v, want ValueError", err)
	}
	if err := s.ModifyBSplineKnotMultiplicity(1, 1, 1); !errors.As(err, &ve) {
		t.Errorf("non-spline: got %v, want ValueError", err)
	}

	// Nothing was touched by the failed calls.
	b := mustSpline(t, s, 0)
	if b.CountPoles() != 5 || b.CountKnots() != 3 {
		t.Errorf("spline changed: %d poles, %d knots", b.CountPoles(), b.CountKnots())
	}
}

func TestModifyKnotMultiplicityPeriodicEndKnot(t *testing.T) {
	s := New()
	s.AddGeometry(periodicCubicSpline(t))

	// A periodic curve has no privileged end knots.
	if err := s.ModifyBSplineKnotMultiplicity(0, 1, 1); err != nil {
		t.Errorf("periodic first knot: %v", err)
	}
}

func TestModifyKnotMultiplicityReexposes(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))
	if _, err := s.ExposeInternalGeometry(0); err != nil {
		t.Fatalf("expose: %v", err)
	}

	if err := s.ModifyBSplineKnotMultiplicity(0, 2, 1); err != nil {
		t.Fatalf("ModifyBSplineKnotMultiplicity: %v", err)
	}

	// Helpers rebuilt for the new shape: 6 pole circles, 3 knot points.
	if n := countType(s, InternalAlignment); n != 9 {
		t.Errorf("alignment count = %d, want 9", n)
	}
	if s.GeometryCount() != 10 {
		t.Errorf("geometry count = %d, want 10", s.GeometryCount())
	}
}

func TestInsertKnot(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	if err := s.InsertBSplineKnot(0, 0.5, 1); err != nil {
		t.Fatalf("InsertBSplineKnot: %v", err)
	}

	b := mustSpline(t, s, 0)
	if b.CountKnots() != 4 {
		t.Errorf("knot count = %d, want 4", b.CountKnots())
	}
	if b.CountPoles() != 6 {
		t.Errorf("pole count = %d, want 6", b.CountPoles())
	}
}

func TestInsertKnotAtExistingRaisesMultiplicity(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	if err := s.InsertBSplineKnot(0, 1, 2); err != nil {
		t.Fatalf("InsertBSplineKnot: %v", err)
	}

	b := mustSpline(t, s, 0)
	if b.CountKnots() != 3 {
		t.Errorf("knot count = %d, want 3", b.CountKnots())
	}
	if b.Mults[1] != 3 {
		t.Errorf("mult = %d, want 3", b.Mults[1])
	}
}

func TestInsertKnotMultiplicityRange(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	var ve *ValueError
	if err := s.InsertBSplineKnot(0, 0.5, 0); !errors.As(err, &ve) {
		t.Errorf("zero multiplicity: got %v, want ValueError", err)
	}
	if err := s.InsertBSplineKnot(0, 0.5, 4); !errors.As(err, &ve) {
		t.Errorf("beyond degree: got %v, want ValueError", err)
	}
}

func TestInsertKnotReexposes(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))
	if _, err := s.ExposeInternalGeometry(0); err != nil {
		t.Fatalf("expose: %v", err)
	}

	if err := s.InsertBSplineKnot(0, 0.5, 1); err != nil {
		t.Fatalf("InsertBSplineKnot: %v", err)
	}

	// 6 pole circles plus 4 knot points.
	if n := countType(s, InternalAlignment); n != 10 {
		t.Errorf("alignment count = %d, want 10", n)
	}
}
