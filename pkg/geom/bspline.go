package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BSplineCurve is a NURBS curve. Knots holds the distinct knot values in
// ascending order, Mults the matching multiplicities.
//
// Validity: for a non-periodic curve the multiplicities sum to
// poles+degree+1; for a periodic one they sum to poles plus the wrapped
// last multiplicity, which must equal the first.
type BSplineCurve struct {
	Base
	Poles    []v3.Vec
	Weights  []float64
	Knots    []float64
	Mults    []int
	Degree   int
	Periodic bool
}

// NewBSplineCurve creates a B-spline and validates its knot structure.
func NewBSplineCurve(poles []v3.Vec, weights []float64, knots []float64, mults []int, degree int, periodic bool) (*BSplineCurve, error) {
	b := &BSplineCurve{
		Base:     newBase(),
		Poles:    poles,
		Weights:  weights,
		Knots:    knots,
		Mults:    mults,
		Degree:   degree,
		Periodic: periodic,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BSplineCurve) Kind() Kind { return KindBSplineCurve }

func (b *BSplineCurve) Clone() Element {
	c := *b
	c.Poles = append([]v3.Vec(nil), b.Poles...)
	c.Weights = append([]float64(nil), b.Weights...)
	c.Knots = append([]float64(nil), b.Knots...)
	c.Mults = append([]int(nil), b.Mults...)
	return &c
}

// CountPoles returns the number of control points.
func (b *BSplineCurve) CountPoles() int { return len(b.Poles) }

// CountKnots returns the number of distinct knots.
func (b *BSplineCurve) CountKnots() int { return len(b.Knots) }

// Validate checks the knot/multiplicity structure against the pole count.
func (b *BSplineCurve) Validate() error {
	if b.Degree < 1 {
		return fmt.Errorf("bspline: degree %d < 1", b.Degree)
	}
	if len(b.Weights) != len(b.Poles) {
		return fmt.Errorf("bspline: %d weights for %d poles", len(b.Weights), len(b.Poles))
	}
	if len(b.Knots) != len(b.Mults) {
		return fmt.Errorf("bspline: %d knots for %d multiplicities", len(b.Knots), len(b.Mults))
	}
	if len(b.Knots) < 2 {
		return fmt.Errorf("bspline: need at least 2 distinct knots, have %d", len(b.Knots))
	}
	for i := 1; i < len(b.Knots); i++ {
		if b.Knots[i] <= b.Knots[i-1] {
			return fmt.Errorf("bspline: knots not strictly increasing at %d", i)
		}
	}
	sum := 0
	for _, m := range b.Mults {
		sum += m
	}
	if b.Periodic {
		if b.Mults[0] != b.Mults[len(b.Mults)-1] {
			return fmt.Errorf("bspline: periodic end multiplicities differ (%d vs %d)",
				b.Mults[0], b.Mults[len(b.Mults)-1])
		}
		if sum-b.Mults[len(b.Mults)-1] != len(b.Poles) {
			return fmt.Errorf("bspline: periodic multiplicity sum %d does not match %d poles",
				sum, len(b.Poles))
		}
	} else if sum != len(b.Poles)+b.Degree+1 {
		return fmt.Errorf("bspline: multiplicity sum %d, want poles+degree+1 = %d",
			sum, len(b.Poles)+b.Degree+1)
	}
	return nil
}

// FlatKnots expands knots by multiplicity. For periodic curves the
// sequence is extended cyclically by degree entries on the left and
// degree+1 on the right, matching the wrapped pole list of flatPoles.
func (b *BSplineCurve) FlatKnots() []float64 {
	if !b.Periodic {
		flat := make([]float64, 0, len(b.Poles)+b.Degree+1)
		for i, k := range b.Knots {
			for j := 0; j < b.Mults[i]; j++ {
				flat = append(flat, k)
			}
		}
		return flat
	}
	period := b.Knots[len(b.Knots)-1] - b.Knots[0]
	// One period of the cyclic sequence, excluding the wrapped last knot.
	core := make([]float64, 0, len(b.Poles))
	for i := 0; i < len(b.Knots)-1; i++ {
		for j := 0; j < b.Mults[i]; j++ {
			core = append(core, b.Knots[i])
		}
	}
	n := len(core)
	flat := make([]float64, 0, n+2*b.Degree+1)
	for i := n - b.Degree; i < n; i++ {
		flat = append(flat, core[i]-period)
	}
	flat = append(flat, core...)
	for i := 0; i <= b.Degree; i++ {
		flat = append(flat, core[i%n]+period*float64(1+i/n))
	}
	return flat
}

// flatPoles returns the pole list matching FlatKnots: the poles
// themselves for non-periodic curves, prefixed by the last degree poles
// for periodic ones so pole i supports FlatKnots[i..i+degree+1].
func (b *BSplineCurve) flatPoles() ([]v3.Vec, []float64) {
	if !b.Periodic {
		return b.Poles, b.Weights
	}
	n := len(b.Poles)
	poles := append(append([]v3.Vec(nil), b.Poles[n-b.Degree:]...), b.Poles...)
	weights := append(append([]float64(nil), b.Weights[n-b.Degree:]...), b.Weights...)
	return poles, weights
}

func (b *BSplineCurve) FirstParameter() float64 {
	if b.Periodic {
		return b.Knots[0]
	}
	return b.FlatKnots()[b.Degree]
}

func (b *BSplineCurve) LastParameter() float64 {
	if b.Periodic {
		return b.Knots[len(b.Knots)-1]
	}
	flat := b.FlatKnots()
	return flat[len(flat)-b.Degree-1]
}

func (b *BSplineCurve) IsPeriodic() bool { return b.Periodic }

// PointAt evaluates the curve by rational de Boor recursion.
func (b *BSplineCurve) PointAt(u float64) v3.Vec {
	if b.Periodic {
		period := b.LastParameter() - b.FirstParameter()
		for u < b.FirstParameter() {
			u += period
		}
		for u > b.LastParameter() {
			u -= period
		}
	} else {
		u = math.Max(b.FirstParameter(), math.Min(b.LastParameter(), u))
	}

	flat := b.FlatKnots()
	poles, weights := b.flatPoles()
	span := findSpan(flat, b.Degree, len(poles), u)

	// Homogeneous working copies of the affected poles.
	type hpt struct{ x, y, w float64 }
	d := make([]hpt, b.Degree+1)
	for j := 0; j <= b.Degree; j++ {
		p := poles[span-b.Degree+j]
		w := weights[span-b.Degree+j]
		d[j] = hpt{p.X * w, p.Y * w, w}
	}
	for r := 1; r <= b.Degree; r++ {
		for j := b.Degree; j >= r; j-- {
			i := span - b.Degree + j
			denom := flat[i+b.Degree-r+1] - flat[i]
			var alpha float64
			if denom != 0 {
				alpha = (u - flat[i]) / denom
			}
			d[j] = hpt{
				x: (1-alpha)*d[j-1].x + alpha*d[j].x,
				y: (1-alpha)*d[j-1].y + alpha*d[j].y,
				w: (1-alpha)*d[j-1].w + alpha*d[j].w,
			}
		}
	}
	return v3.Vec{X: d[b.Degree].x / d[b.Degree].w, Y: d[b.Degree].y / d[b.Degree].w}
}

// StartPoint returns the curve point at the first parameter.
func (b *BSplineCurve) StartPoint() v3.Vec { return b.PointAt(b.FirstParameter()) }

// EndPoint returns the curve point at the last parameter.
func (b *BSplineCurve) EndPoint() v3.Vec { return b.PointAt(b.LastParameter()) }

// KnotIndexAt returns the 0-based index of the distinct knot matching
// param within tol, or -1.
func (b *BSplineCurve) KnotIndexAt(param, tol float64) int {
	for i, k := range b.Knots {
		if math.Abs(k-param) <= tol {
			return i
		}
	}
	return -1
}

// findSpan locates the knot span index such that flat[span] <= u <
// flat[span+1], clamped to valid pole support.
func findSpan(flat []float64, degree, npoles int, u float64) int {
	lo, hi := degree, npoles-1
	if u >= flat[hi+1] {
		return hi
	}
	if u <= flat[lo] {
		return lo
	}
	for lo <= hi {
		mid := (lo + hi) / 2
		if u < flat[mid] {
			hi = mid - 1
		} else if u >= flat[mid+1] {
			lo = mid + 1
		} else {
			return mid
		}
	}
	return lo
}
