package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// axes returns the unit major/minor axis directions for a conic rotated
// by angle phi against the sketch x-axis.
func axes(phi float64) (xdir, ydir v3.Vec) {
	s, c := math.Sincos(phi)
	return v3.Vec{X: c, Y: s}, v3.Vec{X: -s, Y: c}
}

func along(origin, dir v3.Vec, d float64) v3.Vec {
	return v3.Vec{X: origin.X + dir.X*d, Y: origin.Y + dir.Y*d}
}

// Circle is a full circle, parametrized by the CCW angle from the
// positive x-axis.
type Circle struct {
	Base
	Center v3.Vec
	Radius float64
}

// NewCircle creates a circle.
func NewCircle(center v3.Vec, radius float64) *Circle {
	return &Circle{Base: newBase(), Center: center, Radius: radius}
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Clone() Element {
	cc := *c
	return &cc
}

func (c *Circle) PointAt(u float64) v3.Vec {
	s, co := math.Sincos(u)
	return v3.Vec{X: c.Center.X + c.Radius*co, Y: c.Center.Y + c.Radius*s}
}

func (c *Circle) FirstParameter() float64 { return 0 }
func (c *Circle) LastParameter() float64  { return 2 * math.Pi }
func (c *Circle) IsPeriodic() bool        { return true }

// ArcOfCircle is the CCW circular arc from Start to End angle, with End
// normalized above Start.
type ArcOfCircle struct {
	Base
	Center     v3.Vec
	Radius     float64
	Start, End float64
}

// NewArcOfCircle creates a circular arc. The range is normalized so that
// End > Start.
func NewArcOfCircle(center v3.Vec, radius, start, end float64) *ArcOfCircle {
	for end <= start {
		end += 2 * math.Pi
	}
	return &ArcOfCircle{Base: newBase(), Center: center, Radius: radius, Start: start, End: end}
}

func (a *ArcOfCircle) Kind() Kind { return KindArcOfCircle }

func (a *ArcOfCircle) Clone() Element {
	c := *a
	return &c
}

func (a *ArcOfCircle) PointAt(u float64) v3.Vec {
	s, c := math.Sincos(u)
	return v3.Vec{X: a.Center.X + a.Radius*c, Y: a.Center.Y + a.Radius*s}
}

func (a *ArcOfCircle) FirstParameter() float64 { return a.Start }
func (a *ArcOfCircle) LastParameter() float64  { return a.End }
func (a *ArcOfCircle) IsPeriodic() bool        { return false }

// Ellipse is a full ellipse. AngleXU rotates the major axis against the
// sketch x-axis.
type Ellipse struct {
	Base
	Center      v3.Vec
	MajorRadius float64
	MinorRadius float64
	AngleXU     float64
}

// NewEllipse creates an axis-aligned ellipse.
func NewEllipse(center v3.Vec, major, minor float64) *Ellipse {
	return &Ellipse{Base: newBase(), Center: center, MajorRadius: major, MinorRadius: minor}
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) Clone() Element {
	c := *e
	return &c
}

func (e *Ellipse) PointAt(u float64) v3.Vec {
	xd, yd := axes(e.AngleXU)
	s, c := math.Sincos(u)
	p := along(e.Center, xd, e.MajorRadius*c)
	return along(p, yd, e.MinorRadius*s)
}

func (e *Ellipse) FirstParameter() float64 { return 0 }
func (e *Ellipse) LastParameter() float64  { return 2 * math.Pi }
func (e *Ellipse) IsPeriodic() bool        { return true }

// focalDistance is sqrt(a^2 - b^2).
func (e *Ellipse) focalDistance() float64 {
	return math.Sqrt(e.MajorRadius*e.MajorRadius - e.MinorRadius*e.MinorRadius)
}

// Focus1 returns the focus on the positive major-axis side.
func (e *Ellipse) Focus1() v3.Vec {
	xd, _ := axes(e.AngleXU)
	return along(e.Center, xd, e.focalDistance())
}

// Focus2 returns the focus on the negative major-axis side.
func (e *Ellipse) Focus2() v3.Vec {
	xd, _ := axes(e.AngleXU)
	return along(e.Center, xd, -e.focalDistance())
}

// MajorAxisEndpoints returns the two extremes of the major diameter.
func (e *Ellipse) MajorAxisEndpoints() (v3.Vec, v3.Vec) {
	xd, _ := axes(e.AngleXU)
	return along(e.Center, xd, e.MajorRadius), along(e.Center, xd, -e.MajorRadius)
}

// MinorAxisEndpoints returns the two extremes of the minor diameter.
func (e *Ellipse) MinorAxisEndpoints() (v3.Vec, v3.Vec) {
	_, yd := axes(e.AngleXU)
	return along(e.Center, yd, e.MinorRadius), along(e.Center, yd, -e.MinorRadius)
}

// ArcOfEllipse is an elliptical arc over [Start, End] of the underlying
// ellipse parametrization.
type ArcOfEllipse struct {
	Base
	Center      v3.Vec
	MajorRadius float64
	MinorRadius float64
	AngleXU     float64
	Start, End  float64
}

// NewArcOfEllipse creates an elliptical arc. The range is normalized so
// that End > Start.
func NewArcOfEllipse(center v3.Vec, major, minor, start, end float64) *ArcOfEllipse {
	for end <= start {
		end += 2 * math.Pi
	}
	return &ArcOfEllipse{Base: newBase(), Center: center, MajorRadius: major, MinorRadius: minor, Start: start, End: end}
}

func (a *ArcOfEllipse) Kind() Kind { return KindArcOfEllipse }

func (a *ArcOfEllipse) Clone() Element {
	c := *a
	return &c
}

func (a *ArcOfEllipse) ellipse() *Ellipse {
	return &Ellipse{Center: a.Center, MajorRadius: a.MajorRadius, MinorRadius: a.MinorRadius, AngleXU: a.AngleXU}
}

func (a *ArcOfEllipse) PointAt(u float64) v3.Vec { return a.ellipse().PointAt(u) }

func (a *ArcOfEllipse) FirstParameter() float64 { return a.Start }
func (a *ArcOfEllipse) LastParameter() float64  { return a.End }
func (a *ArcOfEllipse) IsPeriodic() bool        { return false }

// Focus1 returns the focus on the positive major-axis side.
func (a *ArcOfEllipse) Focus1() v3.Vec { return a.ellipse().Focus1() }

// Focus2 returns the focus on the negative major-axis side.
func (a *ArcOfEllipse) Focus2() v3.Vec { return a.ellipse().Focus2() }

// MajorAxisEndpoints returns the two extremes of the major diameter.
func (a *ArcOfEllipse) MajorAxisEndpoints() (v3.Vec, v3.Vec) {
	return a.ellipse().MajorAxisEndpoints()
}

// MinorAxisEndpoints returns the two extremes of the minor diameter.
func (a *ArcOfEllipse) MinorAxisEndpoints() (v3.Vec, v3.Vec) {
	return a.ellipse().MinorAxisEndpoints()
}

// ArcOfHyperbola is a hyperbolic arc: C + a*cosh(u)*X + b*sinh(u)*Y.
type ArcOfHyperbola struct {
	Base
	Center      v3.Vec
	MajorRadius float64
	MinorRadius float64
	AngleXU     float64
	Start, End  float64
}

// NewArcOfHyperbola creates a hyperbolic arc.
func NewArcOfHyperbola(center v3.Vec, major, minor, start, end float64) *ArcOfHyperbola {
	return &ArcOfHyperbola{Base: newBase(), Center: center, MajorRadius: major, MinorRadius: minor, Start: start, End: end}
}

func (a *ArcOfHyperbola) Kind() Kind { return KindArcOfHyperbola }

func (a *ArcOfHyperbola) Clone() Element {
	c := *a
	return &c
}

func (a *ArcOfHyperbola) PointAt(u float64) v3.Vec {
	xd, yd := axes(a.AngleXU)
	p := along(a.Center, xd, a.MajorRadius*math.Cosh(u))
	return along(p, yd, a.MinorRadius*math.Sinh(u))
}

func (a *ArcOfHyperbola) FirstParameter() float64 { return a.Start }
func (a *ArcOfHyperbola) LastParameter() float64  { return a.End }
func (a *ArcOfHyperbola) IsPeriodic() bool        { return false }

// Focus returns the focus on the branch side, at distance sqrt(a^2+b^2)
// from the center.
func (a *ArcOfHyperbola) Focus() v3.Vec {
	xd, _ := axes(a.AngleXU)
	c := math.Sqrt(a.MajorRadius*a.MajorRadius + a.MinorRadius*a.MinorRadius)
	return along(a.Center, xd, c)
}

// MajorAxisEndpoints returns the segment from the center to the vertex.
func (a *ArcOfHyperbola) MajorAxisEndpoints() (v3.Vec, v3.Vec) {
	xd, _ := axes(a.AngleXU)
	return a.Center, along(a.Center, xd, a.MajorRadius)
}

// MinorAxisEndpoints returns the conjugate half-diameter at the vertex.
func (a *ArcOfHyperbola) MinorAxisEndpoints() (v3.Vec, v3.Vec) {
	xd, yd := axes(a.AngleXU)
	vertex := along(a.Center, xd, a.MajorRadius)
	return vertex, along(vertex, yd, a.MinorRadius)
}

// ArcOfParabola is a parabolic arc: C + (u^2/4f)*X + u*Y, with vertex at
// C and focal length f.
type ArcOfParabola struct {
	Base
	Center     v3.Vec
	Focal      float64
	AngleXU    float64
	Start, End float64
}

// NewArcOfParabola creates a parabolic arc.
func NewArcOfParabola(center v3.Vec, focal, start, end float64) *ArcOfParabola {
	return &ArcOfParabola{Base: newBase(), Center: center, Focal: focal, Start: start, End: end}
}

func (a *ArcOfParabola) Kind() Kind { return KindArcOfParabola }

func (a *ArcOfParabola) Clone() Element {
	c := *a
	return &c
}

func (a *ArcOfParabola) PointAt(u float64) v3.Vec {
	xd, yd := axes(a.AngleXU)
	p := along(a.Center, xd, u*u/(4*a.Focal))
	return along(p, yd, u)
}

func (a *ArcOfParabola) FirstParameter() float64 { return a.Start }
func (a *ArcOfParabola) LastParameter() float64  { return a.End }
func (a *ArcOfParabola) IsPeriodic() bool        { return false }

// Focus returns the focus point, at focal distance from the vertex along
// the axis.
func (a *ArcOfParabola) Focus() v3.Vec {
	xd, _ := axes(a.AngleXU)
	return along(a.Center, xd, a.Focal)
}

// FocalAxisEndpoints returns the segment from the vertex to the focus.
func (a *ArcOfParabola) FocalAxisEndpoints() (v3.Vec, v3.Vec) {
	return a.Center, a.Focus()
}
