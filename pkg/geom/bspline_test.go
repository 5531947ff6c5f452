package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func mustBSpline(t *testing.T, poles []v3.Vec, weights []float64, knots []float64, mults []int, degree int, periodic bool) *BSplineCurve {
	t.Helper()
	b, err := NewBSplineCurve(poles, weights, knots, mults, degree, periodic)
	if err != nil {
		t.Fatalf("NewBSplineCurve: %v", err)
	}
	return b
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestBSplineClampedEndpoints(t *testing.T) {
	// Degree 3, single span: a Bezier segment.
	b := mustBSpline(t,
		[]v3.Vec{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0}},
		uniformWeights(4),
		[]float64{0, 1}, []int{4, 4}, 3, false)

	if !near(b.StartPoint(), b.Poles[0]) {
		t.Errorf("start = %v, want first pole", b.StartPoint())
	}
	if !near(b.EndPoint(), b.Poles[3]) {
		t.Errorf("end = %v, want last pole", b.EndPoint())
	}

	// Cubic Bezier midpoint: (P0+P3)/8 + 3(P1+P2)/8.
	mid := b.PointAt(0.5)
	if !near(mid, v3.Vec{X: 2, Y: 1.5}) {
		t.Errorf("PointAt(0.5) = %v, want (2,1.5)", mid)
	}
}

func TestBSplineRationalQuarterCircle(t *testing.T) {
	// Standard NURBS quarter circle: middle weight sqrt(2)/2.
	b := mustBSpline(t,
		[]v3.Vec{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[]float64{1, math.Sqrt2 / 2, 1},
		[]float64{0, 1}, []int{3, 3}, 2, false)

	for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p := b.PointAt(u)
		r := math.Hypot(p.X, p.Y)
		if math.Abs(r-1) > tol {
			t.Errorf("PointAt(%f) radius = %f, want 1", u, r)
		}
	}
}

func TestBSplinePeriodicStructure(t *testing.T) {
	b := mustBSpline(t,
		[]v3.Vec{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}, {X: 1, Y: -1}},
		uniformWeights(5),
		[]float64{0, 0.3, 1, 1.5, 1.8, 2}, []int{1, 1, 1, 1, 1, 1}, 3, true)

	if got := len(b.FlatKnots()); got != 12 {
		t.Errorf("flat knot count = %d, want 12", got)
	}
	if b.FirstParameter() != 0 || b.LastParameter() != 2 {
		t.Errorf("parameter range = [%f, %f], want [0, 2]",
			b.FirstParameter(), b.LastParameter())
	}

	// Seam closes.
	if !near(b.PointAt(0), b.PointAt(2)) {
		t.Errorf("seam points differ: %v vs %v", b.PointAt(0), b.PointAt(2))
	}
	// Evaluation wraps modulo the period.
	if !near(b.PointAt(0.5), b.PointAt(2.5)) {
		t.Errorf("wrapped evaluation differs: %v vs %v", b.PointAt(0.5), b.PointAt(2.5))
	}
}

func TestBSplineValidateRejectsBadStructure(t *testing.T) {
	poles := []v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}}

	// Multiplicity sum off by one.
	if _, err := NewBSplineCurve(poles, uniformWeights(4),
		[]float64{0, 1}, []int{4, 3}, 3, false); err == nil {
		t.Error("want error for bad multiplicity sum")
	}
	// Knots not strictly increasing.
	if _, err := NewBSplineCurve(poles, uniformWeights(4),
		[]float64{0, 0}, []int{4, 4}, 3, false); err == nil {
		t.Error("want error for non-increasing knots")
	}
	// Periodic end multiplicities must match.
	if _, err := NewBSplineCurve(poles, uniformWeights(4),
		[]float64{0, 1, 2}, []int{1, 2, 3}, 3, true); err == nil {
		t.Error("want error for mismatched periodic end multiplicities")
	}
	// Weight count must match pole count.
	if _, err := NewBSplineCurve(poles, uniformWeights(3),
		[]float64{0, 1}, []int{4, 4}, 3, false); err == nil {
		t.Error("want error for weight/pole mismatch")
	}
}

func TestBSplineKnotIndexAt(t *testing.T) {
	b := mustBSpline(t,
		[]v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}},
		uniformWeights(5),
		[]float64{0, 0.5, 1}, []int{4, 1, 4}, 3, false)

	if got := b.KnotIndexAt(0.5, 1e-9); got != 1 {
		t.Errorf("KnotIndexAt(0.5) = %d, want 1", got)
	}
	if got := b.KnotIndexAt(0.25, 1e-9); got != -1 {
		t.Errorf("KnotIndexAt(0.25) = %d, want -1", got)
	}
}

func TestBSplineNonPeriodicParameterRange(t *testing.T) {
	// Unclamped-style mults still derive the range from the flat vector.
	b := mustBSpline(t,
		[]v3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}},
		uniformWeights(5),
		[]float64{0, 1, 2}, []int{4, 1, 4}, 3, false)

	if b.FirstParameter() != 0 {
		t.Errorf("first parameter = %f, want 0", b.FirstParameter())
	}
	if b.LastParameter() != 2 {
		t.Errorf("last parameter = %f, want 2", b.LastParameter())
	}
}
