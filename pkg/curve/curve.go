// Package curve defines the abstract curve library interface consumed by
// the sketch core. Implementations (native) provide parameter/point
// queries, curve-curve intersection and NURBS knot surgery behind this
// interface, so the geometric backend can be swapped without touching
// the sketch editing logic.
package curve

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// Intersection is one crossing of two curves: the parameter on each
// curve and the common point.
type Intersection struct {
	ParamA float64
	ParamB float64
	Point  v3.Vec
}

// Library is the curve math consumed by the sketch core.
type Library interface {
	// Queries
	ParameterAtPoint(c geom.Curve, p v3.Vec) (float64, error)
	PointAtParameter(c geom.Curve, u float64) v3.Vec
	FirstParameter(c geom.Curve) float64
	LastParameter(c geom.Curve) float64
	IsPeriodic(c geom.Curve) bool

	// Intersection of two curves within their parameter ranges,
	// sorted by ParamA. An empty slice means no crossing.
	Intersect(a, b geom.Curve) ([]Intersection, error)

	// NURBS surgery. All operations return new curves or mutate the
	// given curve's vectors in place, preserving periodicity.
	InsertKnot(b *geom.BSplineCurve, param float64, mult int) error
	RemoveKnot(b *geom.BSplineCurve, knotIndex int) error
	PoleCount(b *geom.BSplineCurve) int
	KnotCount(b *geom.BSplineCurve) int
	Multiplicities(b *geom.BSplineCurve) []int

	// Subdivide splits a non-periodic B-spline at param into two
	// clamped curves meeting at the curve point.
	Subdivide(b *geom.BSplineCurve, param float64) (*geom.BSplineCurve, *geom.BSplineCurve, error)
	// OpenAt converts a periodic B-spline into a non-periodic one
	// whose ends meet at the curve point of param.
	OpenAt(b *geom.BSplineCurve, param float64) (*geom.BSplineCurve, error)
	// Interpolate fits a clamped cubic B-spline through the points.
	Interpolate(points []v3.Vec) (*geom.BSplineCurve, error)
	// ConcatC0 chains two clamped curves end to start with a C0
	// junction knot.
	ConcatC0(a, b *geom.BSplineCurve) (*geom.BSplineCurve, error)
}
