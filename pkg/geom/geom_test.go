package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func near(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}

func TestPointIdentity(t *testing.T) {
	p := NewPoint(2, -3)

	if p.Kind() != KindPoint {
		t.Errorf("kind = %v, want Point", p.Kind())
	}
	if p.Common().Tag == (NewPoint(0, 0).Common().Tag) {
		t.Error("tags should be unique per element")
	}
	if p.Position.X != 2 || p.Position.Y != -3 {
		t.Errorf("position = %v, want (2,-3)", p.Position)
	}
}

func TestLineSegmentParametrization(t *testing.T) {
	l := NewLineSegment(v3.Vec{X: 1, Y: 1}, v3.Vec{X: 3, Y: 5})

	if !near(l.PointAt(0), l.P1) {
		t.Errorf("PointAt(0) = %v, want %v", l.PointAt(0), l.P1)
	}
	if !near(l.PointAt(1), l.P2) {
		t.Errorf("PointAt(1) = %v, want %v", l.PointAt(1), l.P2)
	}
	mid := l.PointAt(0.5)
	if !near(mid, v3.Vec{X: 2, Y: 3}) {
		t.Errorf("PointAt(0.5) = %v, want (2,3)", mid)
	}
	if l.IsPeriodic() {
		t.Error("line segment should not be periodic")
	}
}

func TestCirclePointAt(t *testing.T) {
	c := NewCircle(v3.Vec{X: 1, Y: 2}, 3)

	if !near(c.PointAt(0), v3.Vec{X: 4, Y: 2}) {
		t.Errorf("PointAt(0) = %v, want (4,2)", c.PointAt(0))
	}
	if !near(c.PointAt(math.Pi/2), v3.Vec{X: 1, Y: 5}) {
		t.Errorf("PointAt(pi/2) = %v, want (1,5)", c.PointAt(math.Pi/2))
	}
	if !c.IsPeriodic() {
		t.Error("circle should be periodic")
	}
}

func TestArcOfCircleRangeNormalized(t *testing.T) {
	// End below start wraps up by one turn.
	a := NewArcOfCircle(v3.Vec{}, 2, math.Pi/2, 0)

	if a.End <= a.Start {
		t.Errorf("range not normalized: [%f, %f]", a.Start, a.End)
	}
	if math.Abs(a.End-(2*math.Pi)) > tol {
		t.Errorf("end = %f, want 2*pi", a.End)
	}
	if !near(a.PointAt(a.Start), v3.Vec{X: 0, Y: 2}) {
		t.Errorf("start point = %v, want (0,2)", a.PointAt(a.Start))
	}
}

func TestEllipseFoci(t *testing.T) {
	e := NewEllipse(v3.Vec{X: 1, Y: 0}, 4, 2)
	c := math.Sqrt(12)

	if !near(e.Focus1(), v3.Vec{X: 1 + c, Y: 0}) {
		t.Errorf("focus1 = %v, want (%f,0)", e.Focus1(), 1+c)
	}
	if !near(e.Focus2(), v3.Vec{X: 1 - c, Y: 0}) {
		t.Errorf("focus2 = %v, want (%f,0)", e.Focus2(), 1-c)
	}

	maj1, maj2 := e.MajorAxisEndpoints()
	if !near(maj1, v3.Vec{X: 5, Y: 0}) || !near(maj2, v3.Vec{X: -3, Y: 0}) {
		t.Errorf("major endpoints = %v %v", maj1, maj2)
	}
	min1, min2 := e.MinorAxisEndpoints()
	if !near(min1, v3.Vec{X: 1, Y: 2}) || !near(min2, v3.Vec{X: 1, Y: -2}) {
		t.Errorf("minor endpoints = %v %v", min1, min2)
	}
}

func TestEllipseRotatedFocus(t *testing.T) {
	e := NewEllipse(v3.Vec{}, 5, 3)
	e.AngleXU = math.Pi / 2
	c := 4.0 // sqrt(25-9)

	if !near(e.Focus1(), v3.Vec{X: 0, Y: c}) {
		t.Errorf("rotated focus1 = %v, want (0,%f)", e.Focus1(), c)
	}
}

func TestArcOfHyperbolaFocus(t *testing.T) {
	h := NewArcOfHyperbola(v3.Vec{}, 3, 4, -1, 1)

	if !near(h.Focus(), v3.Vec{X: 5, Y: 0}) {
		t.Errorf("focus = %v, want (5,0)", h.Focus())
	}
	// Vertex at u = 0.
	if !near(h.PointAt(0), v3.Vec{X: 3, Y: 0}) {
		t.Errorf("vertex = %v, want (3,0)", h.PointAt(0))
	}
}

func TestArcOfParabolaFocus(t *testing.T) {
	p := NewArcOfParabola(v3.Vec{X: 1, Y: 1}, 1, -2, 2)

	if !near(p.Focus(), v3.Vec{X: 2, Y: 1}) {
		t.Errorf("focus = %v, want (2,1)", p.Focus())
	}
	// u = 2 sits at x = u^2/(4f) = 1 from the vertex.
	if !near(p.PointAt(2), v3.Vec{X: 2, Y: 3}) {
		t.Errorf("PointAt(2) = %v, want (2,3)", p.PointAt(2))
	}
	v, f := p.FocalAxisEndpoints()
	if !near(v, p.Center) || !near(f, p.Focus()) {
		t.Errorf("focal axis = %v %v", v, f)
	}
}

func TestCloneIsDeep(t *testing.T) {
	b, err := NewBSplineCurve(
		[]v3.Vec{{X: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4}},
		[]float64{1, 1, 1, 1},
		[]float64{0, 1},
		[]int{4, 4},
		3, false,
	)
	if err != nil {
		t.Fatalf("NewBSplineCurve: %v", err)
	}

	c := b.Clone().(*BSplineCurve)
	c.Poles[0].X = 99
	c.Knots[0] = 99

	if b.Poles[0].X == 99 || b.Knots[0] == 99 {
		t.Error("clone shares slices with original")
	}
	if c.Common().Tag != b.Common().Tag {
		t.Error("clone should keep the creation tag")
	}
}
