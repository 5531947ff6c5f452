package geom

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Kind discriminates the closed set of geometry element variants.
type Kind int

const (
	KindPoint Kind = iota
	KindLineSegment
	KindCircle
	KindArcOfCircle
	KindEllipse
	KindArcOfEllipse
	KindArcOfHyperbola
	KindArcOfParabola
	KindBSplineCurve
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLineSegment:
		return "LineSegment"
	case KindCircle:
		return "Circle"
	case KindArcOfCircle:
		return "ArcOfCircle"
	case KindEllipse:
		return "Ellipse"
	case KindArcOfEllipse:
		return "ArcOfEllipse"
	case KindArcOfHyperbola:
		return "ArcOfHyperbola"
	case KindArcOfParabola:
		return "ArcOfParabola"
	case KindBSplineCurve:
		return "BSplineCurve"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Base carries the identity and flags shared by every element.
//
// Tag is the immutable creation identity; it is assigned once by the
// constructor and never reused. Id is the long element id assigned by the
// owning sketch; it survives geoId renumbering and keys stable element
// names. Construction geometry is excluded from the exported shape.
// InternalAlignment marks derived helper geometry owned by a parent curve.
type Base struct {
	Tag               uuid.UUID
	Id                int64
	Construction      bool
	InternalAlignment bool
}

// Common returns the shared identity/flag block of the element.
func (b *Base) Common() *Base { return b }

func newBase() Base {
	return Base{Tag: uuid.New()}
}

// Element is one geometry element of a sketch.
type Element interface {
	Kind() Kind
	Common() *Base
	Clone() Element
}

// Curve is the capability set shared by evaluable elements. Points are
// Elements but not Curves.
type Curve interface {
	Element
	PointAt(u float64) v3.Vec
	FirstParameter() float64
	LastParameter() float64
	IsPeriodic() bool
}

// Point is a bare vertex.
type Point struct {
	Base
	Position v3.Vec
}

// NewPoint creates a point at (x, y).
func NewPoint(x, y float64) *Point {
	return &Point{Base: newBase(), Position: v3.Vec{X: x, Y: y}}
}

func (p *Point) Kind() Kind { return KindPoint }

func (p *Point) Clone() Element {
	c := *p
	return &c
}

// LineSegment is the open segment from P1 to P2, parametrized by
// normalized arc length in [0, 1].
type LineSegment struct {
	Base
	P1, P2 v3.Vec
}

// NewLineSegment creates a segment between two points.
func NewLineSegment(p1, p2 v3.Vec) *LineSegment {
	return &LineSegment{Base: newBase(), P1: p1, P2: p2}
}

func (l *LineSegment) Kind() Kind { return KindLineSegment }

func (l *LineSegment) Clone() Element {
	c := *l
	return &c
}

func (l *LineSegment) PointAt(u float64) v3.Vec {
	return v3.Vec{
		X: l.P1.X + (l.P2.X-l.P1.X)*u,
		Y: l.P1.Y + (l.P2.Y-l.P1.Y)*u,
	}
}

func (l *LineSegment) FirstParameter() float64 { return 0 }
func (l *LineSegment) LastParameter() float64  { return 1 }
func (l *LineSegment) IsPeriodic() bool        { return false }
