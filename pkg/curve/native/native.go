// Package native implements the curve library on our own geometry
// kernel: exact closed forms for lines and conics where they exist,
// sampled search with local refinement everywhere else.
package native

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/curve"
	"github.com/chazu/linea/pkg/geom"
)

// Lib is the native curve library.
type Lib struct {
	// Samples is the polyline density used by the generic closest-point
	// and intersection searches.
	Samples int
	// Tol is the coincidence tolerance for parameters and knots.
	Tol float64
}

// compile-time interface check
var _ curve.Library = (*Lib)(nil)

// New returns a library with default sampling density.
func New() *Lib {
	return &Lib{Samples: 256, Tol: 1e-7}
}

// ---------------------------------------------------------------------------
// queries

func (l *Lib) PointAtParameter(c geom.Curve, u float64) v3.Vec { return c.PointAt(u) }
func (l *Lib) FirstParameter(c geom.Curve) float64             { return c.FirstParameter() }
func (l *Lib) LastParameter(c geom.Curve) float64              { return c.LastParameter() }
func (l *Lib) IsPeriodic(c geom.Curve) bool                    { return c.IsPeriodic() }

// ParameterAtPoint returns the parameter of the curve point closest to p.
func (l *Lib) ParameterAtPoint(c geom.Curve, p v3.Vec) (float64, error) {
	switch g := c.(type) {
	case *geom.LineSegment:
		dx, dy := g.P2.X-g.P1.X, g.P2.Y-g.P1.Y
		den := dx*dx + dy*dy
		if den == 0 {
			return 0, fmt.Errorf("degenerate line segment")
		}
		t := ((p.X-g.P1.X)*dx + (p.Y-g.P1.Y)*dy) / den
		return clamp(t, 0, 1), nil
	case *geom.Circle:
		return normAngle(math.Atan2(p.Y-g.Center.Y, p.X-g.Center.X), 0), nil
	case *geom.ArcOfCircle:
		u := normAngle(math.Atan2(p.Y-g.Center.Y, p.X-g.Center.X), g.Start)
		return clampPeriodicParam(u, g.Start, g.End), nil
	case *geom.Ellipse:
		return l.ellipseParam(g.Center, g.MajorRadius, g.MinorRadius, g.AngleXU, 0, p), nil
	case *geom.ArcOfEllipse:
		u := l.ellipseParam(g.Center, g.MajorRadius, g.MinorRadius, g.AngleXU, g.Start, p)
		return clampPeriodicParam(u, g.Start, g.End), nil
	default:
		return l.closestParam(c, p), nil
	}
}

// ellipseParam recovers the parametric angle from the rotated-frame
// components, normalized above start.
func (l *Lib) ellipseParam(center v3.Vec, major, minor, phi, start float64, p v3.Vec) float64 {
	s, c := math.Sincos(phi)
	dx, dy := p.X-center.X, p.Y-center.Y
	lx := dx*c + dy*s
	ly := -dx*s + dy*c
	return normAngle(math.Atan2(ly/minor, lx/major), start)
}

// closestParam runs a coarse scan followed by golden-section refinement
// of the squared distance.
func (l *Lib) closestParam(c geom.Curve, p v3.Vec) float64 {
	first, last := c.FirstParameter(), c.LastParameter()
	n := l.Samples
	best, bestD := first, math.Inf(1)
	for i := 0; i <= n; i++ {
		u := first + (last-first)*float64(i)/float64(n)
		if d := dist2(c.PointAt(u), p); d < bestD {
			best, bestD = u, d
		}
	}
	h := (last - first) / float64(n)
	lo := math.Max(first, best-h)
	hi := math.Min(last, best+h)
	if c.IsPeriodic() {
		lo, hi = best-h, best+h
	}
	const phi = 0.6180339887498949
	a, b := lo, hi
	x1 := b - phi*(b-a)
	x2 := a + phi*(b-a)
	f1 := dist2(c.PointAt(x1), p)
	f2 := dist2(c.PointAt(x2), p)
	for i := 0; i < 80; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - phi*(b-a)
			f1 = dist2(c.PointAt(x1), p)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + phi*(b-a)
			f2 = dist2(c.PointAt(x2), p)
		}
	}
	return (a + b) / 2
}

// ---------------------------------------------------------------------------
// intersection

// Intersect finds the transversal crossings of two curves.
func (l *Lib) Intersect(a, b geom.Curve) ([]curve.Intersection, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("intersect: nil curve")
	}
	la, aIsLine := a.(*geom.LineSegment)
	lb, bIsLine := b.(*geom.LineSegment)
	if aIsLine && bIsLine {
		t, s, ok := segIntersect(la.P1, la.P2, lb.P1, lb.P2)
		if !ok {
			return nil, nil
		}
		return []curve.Intersection{{ParamA: t, ParamB: s, Point: la.PointAt(t)}}, nil
	}

	out := l.sampledIntersect(a, b)
	sort.Slice(out, func(i, j int) bool { return out[i].ParamA < out[j].ParamA })
	return out, nil
}

func (l *Lib) sampledIntersect(a, b geom.Curve) []curve.Intersection {
	na, nb := l.Samples, l.Samples
	if _, ok := a.(*geom.LineSegment); ok {
		na = 1
	}
	if _, ok := b.(*geom.LineSegment); ok {
		nb = 1
	}
	af, al := a.FirstParameter(), a.LastParameter()
	bf, bl := b.FirstParameter(), b.LastParameter()

	var out []curve.Intersection
	pa := samplePolyline(a, af, al, na)
	pb := samplePolyline(b, bf, bl, nb)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			t, s, ok := segIntersect(pa[i], pa[i+1], pb[j], pb[j+1])
			if !ok {
				continue
			}
			ua0 := af + (al-af)*float64(i)/float64(na)
			ua1 := af + (al-af)*float64(i+1)/float64(na)
			ub0 := bf + (bl-bf)*float64(j)/float64(nb)
			ub1 := bf + (bl-bf)*float64(j+1)/float64(nb)
			ua, ub := l.refine(a, b, ua0+t*(ua1-ua0), ub0+s*(ub1-ub0), (al-af)/float64(na), (bl-bf)/float64(nb))

			dup := false
			for _, x := range out {
				d := math.Abs(x.ParamA - ua)
				if a.IsPeriodic() && math.Abs(d-(al-af)) < 1e-6*(al-af) {
					d = 0
				}
				if d < 1e-6*(al-af) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, curve.Intersection{ParamA: ua, ParamB: ub, Point: a.PointAt(ua)})
			}
		}
	}
	return out
}

// refine narrows an intersection estimate by repeated local resampling.
func (l *Lib) refine(a, b geom.Curve, ua, ub, ha, hb float64) (float64, float64) {
	const sub = 8
	for iter := 0; iter < 12; iter++ {
		pa := samplePolyline(a, ua-ha, ua+ha, sub)
		pb := samplePolyline(b, ub-hb, ub+hb, sub)
		found := false
		for i := 0; i < sub && !found; i++ {
			for j := 0; j < sub && !found; j++ {
				t, s, ok := segIntersect(pa[i], pa[i+1], pb[j], pb[j+1])
				if !ok {
					continue
				}
				ua = (ua - ha) + 2*ha*(float64(i)+t)/sub
				ub = (ub - hb) + 2*hb*(float64(j)+s)/sub
				found = true
			}
		}
		if !found {
			break
		}
		ha /= sub / 2
		hb /= sub / 2
	}
	return ua, ub
}

func samplePolyline(c geom.Curve, from, to float64, n int) []v3.Vec {
	pts := make([]v3.Vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.PointAt(from + (to-from)*float64(i)/float64(n))
	}
	return pts
}

// segIntersect solves the proper intersection of two segments, returning
// the parameters on each. Parallel and collinear pairs report no hit.
func segIntersect(a1, a2, b1, b2 v3.Vec) (t, s float64, ok bool) {
	rx, ry := a2.X-a1.X, a2.Y-a1.Y
	qx, qy := b2.X-b1.X, b2.Y-b1.Y
	den := rx*qy - ry*qx
	if math.Abs(den) < 1e-14 {
		return 0, 0, false
	}
	dx, dy := b1.X-a1.X, b1.Y-a1.Y
	t = (dx*qy - dy*qx) / den
	s = (dx*ry - dy*rx) / den
	const eps = 1e-10
	if t < -eps || t > 1+eps || s < -eps || s > 1+eps {
		return 0, 0, false
	}
	return clamp(t, 0, 1), clamp(s, 0, 1), true
}

// ---------------------------------------------------------------------------
// small helpers

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normAngle wraps u into [base, base+2*pi).
func normAngle(u, base float64) float64 {
	for u < base {
		u += 2 * math.Pi
	}
	for u >= base+2*math.Pi {
		u -= 2 * math.Pi
	}
	return u
}

// clampPeriodicParam clamps an angle normalized above start into
// [start, end], snapping overshoot to the nearer arc end.
func clampPeriodicParam(u, start, end float64) float64 {
	if u <= end {
		return u
	}
	// Outside the arc: pick the closer end across the gap.
	if u-end < start+2*math.Pi-u {
		return end
	}
	return start
}

func dist2(a, b v3.Vec) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
