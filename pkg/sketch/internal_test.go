package sketch

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

func openCubicSpline(t *testing.T) *geom.BSplineCurve {
	t.Helper()
	b, err := geom.NewBSplineCurve(
		[]v3.Vec{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 0}, {X: 4, Y: 1}},
		[]float64{1, 1, 1, 1, 1},
		[]float64{0, 1, 2},
		[]int{4, 1, 4},
		3, false)
	if err != nil {
		t.Fatalf("spline fixture: %v", err)
	}
	return b
}

func periodicCubicSpline(t *testing.T) *geom.BSplineCurve {
	t.Helper()
	b, err := geom.NewBSplineCurve(
		[]v3.Vec{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}, {X: 1, Y: -1}},
		[]float64{1, 1, 1, 1, 1},
		[]float64{0, 0.4, 0.8, 1.2, 1.6, 2},
		[]int{1, 1, 1, 1, 1, 1},
		3, true)
	if err != nil {
		t.Fatalf("periodic spline fixture: %v", err)
	}
	return b
}

func countType(s *Sketch, ct ConstraintType) int {
	n := 0
	for _, c := range s.Constraints() {
		if c.Type == ct {
			n++
		}
	}
	return n
}

func TestExposeEllipse(t *testing.T) {
	s := New()
	s.AddGeometry(geom.NewEllipse(v3.Vec{X: 1, Y: 1}, 3, 2))

	added, err := s.ExposeInternalGeometry(0)
	if err != nil {
		t.Fatalf("ExposeInternalGeometry: %v", err)
	}
	if added != 4 {
		t.Errorf("added = %d, want 4", added)
	}
	if s.GeometryCount() != 5 {
		t.Errorf("geometry count = %d, want 5", s.GeometryCount())
	}
	if n := countType(s, InternalAlignment); n != 4 {
		t.Errorf("alignment count = %d, want 4", n)
	}
	// Helpers are construction geometry tied to the parent.
	for _, c := range s.Constraints() {
		if c.Second != 0 {
			t.Errorf("alignment parent = %d, want 0", c.Second)
		}
		h, _ := s.Geometry(c.First)
		if !h.Common().Construction || !h.Common().InternalAlignment {
			t.Errorf("helper %d not marked as construction internal geometry", c.First)
		}
	}

	// Exposing again is a no-op.
	added, err = s.ExposeInternalGeometry(0)
	if err != nil || added != 0 {
		t.Errorf("second expose = (%d, %v), want (0, nil)", added, err)
	}
}

func TestExposeHyperbolaAndParabola(t *testing.T) {
	s := New()
	s.AddGeometry(geom.NewArcOfHyperbola(v3.Vec{}, 2, 1, -1, 1))
	s.AddGeometry(geom.NewArcOfParabola(v3.Vec{X: 1}, 0.5, -1, 1))

	added, err := s.ExposeInternalGeometry(0)
	if err != nil || added != 3 {
		t.Errorf("hyperbola expose = (%d, %v), want (3, nil)", added, err)
	}
	added, err = s.ExposeInternalGeometry(1)
	if err != nil || added != 2 {
		t.Errorf("parabola expose = (%d, %v), want (2, nil)", added, err)
	}
}

func TestExposeBSpline(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))

	// 5 pole circles plus 3 knot points.
	added, err := s.ExposeInternalGeometry(0)
	if err != nil || added != 8 {
		t.Errorf("expose = (%d, %v), want (8, nil)", added, err)
	}

	circles, points := 0, 0
	for _, c := range s.Constraints() {
		switch c.AlignmentType {
		case BSplineControlPoint:
			circles++
		case BSplineKnotPoint:
			points++
		}
	}
	if circles != 5 || points != 3 {
		t.Errorf("roles = (%d circles, %d points), want (5, 3)", circles, points)
	}
}

func TestExposeBSplinePeriodic(t *testing.T) {
	s := New()
	s.AddGeometry(periodicCubicSpline(t))

	// 5 pole circles plus 5 knot points; the wrapped last knot shares
	// the first knot's vertex.
	added, err := s.ExposeInternalGeometry(0)
	if err != nil || added != 10 {
		t.Errorf("expose = (%d, %v), want (10, nil)", added, err)
	}
}

func TestExposeLineFails(t *testing.T) {
	s := New()
	s.AddGeometry(line(0, 0, 1, 0))

	if _, err := s.ExposeInternalGeometry(0); err == nil {
		t.Error("want error exposing a line")
	}
}

func TestDeleteUnusedKeepsReferencedHelpers(t *testing.T) {
	s := New()
	s.AddGeometry(geom.NewEllipse(v3.Vec{}, 3, 2))
	if _, err := s.ExposeInternalGeometry(0); err != nil {
		t.Fatalf("expose: %v", err)
	}

	// Pin one focus (helper geoId 3) to the x-axis; the other three
	// helpers are unused.
	c := NewConstraint(PointOnObject)
	c.First = 3
	c.FirstPos = PosStart
	c.Second = HAxis
	if _, err := s.AddConstraint(c); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	geoId, err := s.DeleteUnusedInternalGeometryAndUpdateGeoId(0)
	if err != nil {
		t.Fatalf("DeleteUnusedInternalGeometry: %v", err)
	}
	if geoId != 0 {
		t.Errorf("parent geoId = %d, want 0", geoId)
	}
	if s.GeometryCount() != 2 {
		t.Errorf("geometry count = %d, want 2", s.GeometryCount())
	}
	if n := countType(s, InternalAlignment); n != 1 {
		t.Errorf("alignment count = %d, want 1", n)
	}
	// The surviving constraints renumbered onto the shifted helper.
	for _, c := range s.Constraints() {
		if c.First != 1 {
			t.Errorf("constraint first = %d, want 1", c.First)
		}
	}
}

func TestDeleteUnusedRemovesAllIdle(t *testing.T) {
	s := New()
	s.AddGeometry(openCubicSpline(t))
	if _, err := s.ExposeInternalGeometry(0); err != nil {
		t.Fatalf("expose: %v", err)
	}

	if err := s.DeleteUnusedInternalGeometry(0); err != nil {
		t.Fatalf("DeleteUnusedInternalGeometry: %v", err)
	}
	if s.GeometryCount() != 1 {
		t.Errorf("geometry count = %d, want 1", s.GeometryCount())
	}
	if s.ConstraintCount() != 0 {
		t.Errorf("constraint count = %d, want 0", s.ConstraintCount())
	}
}

func TestDelGeometryCascadesToHelpers(t *testing.T) {
	s := New()
	s.AddGeometry(geom.NewEllipse(v3.Vec{}, 3, 2))
	s.AddGeometry(line(5, 5, 6, 5))
	if _, err := s.ExposeInternalGeometry(0); err != nil {
		t.Fatalf("expose: %v", err)
	}

	if err := s.DelGeometry(0); err != nil {
		t.Fatalf("DelGeometry: %v", err)
	}
	// The ellipse and its four helpers go together; the line survives.
	if s.GeometryCount() != 1 {
		t.Errorf("geometry count = %d, want 1", s.GeometryCount())
	}
	if s.ConstraintCount() != 0 {
		t.Errorf("constraint count = %d, want 0", s.ConstraintCount())
	}
	e, _ := s.Geometry(0)
	if e.Kind() != geom.KindLineSegment {
		t.Errorf("survivor kind = %v, want line", e.Kind())
	}
}
