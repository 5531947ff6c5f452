package sketch

import (
	"fmt"

	"github.com/google/uuid"
)

// Geometry ids. Ids >= 0 index the sketch's own geometry list. The
// negative range addresses the fixed frame and external references:
// the root point and horizontal axis share -1, the vertical axis is
// -2, and external reference j (0-based) maps to -3-j.
const (
	// GeoUndef marks an unused constraint slot.
	GeoUndef = -2000
	// RtPnt is the sketch origin, the start point of the horizontal axis.
	RtPnt = -1
	// HAxis is the horizontal sketch axis.
	HAxis = -1
	// VAxis is the vertical sketch axis.
	VAxis = -2
	// RefExt is the first (most positive) external reference id.
	RefExt = -3
)

// PointPos addresses a vertex of a geometry element.
type PointPos int

const (
	PosNone PointPos = iota
	PosStart
	PosEnd
	PosMid
)

func (p PointPos) String() string {
	switch p {
	case PosNone:
		return "none"
	case PosStart:
		return "start"
	case PosEnd:
		return "end"
	case PosMid:
		return "mid"
	default:
		return fmt.Sprintf("PointPos(%d)", int(p))
	}
}

// ConstraintType enumerates the supported constraint kinds.
type ConstraintType int

const (
	None ConstraintType = iota
	Coincident
	PointOnObject
	Horizontal
	Vertical
	Parallel
	Perpendicular
	Tangent
	Distance
	DistanceX
	DistanceY
	Angle
	Radius
	Diameter
	Equal
	Symmetric
	Block
	InternalAlignment
)

func (t ConstraintType) String() string {
	names := [...]string{
		"None", "Coincident", "PointOnObject", "Horizontal", "Vertical",
		"Parallel", "Perpendicular", "Tangent", "Distance", "DistanceX",
		"DistanceY", "Angle", "Radius", "Diameter", "Equal", "Symmetric",
		"Block", "InternalAlignment",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("ConstraintType(%d)", int(t))
}

// IsDimensional reports whether the constraint type carries a driving
// value.
func (t ConstraintType) IsDimensional() bool {
	switch t {
	case Distance, DistanceX, DistanceY, Angle, Radius, Diameter:
		return true
	}
	return false
}

// InternalAlignmentType identifies the role of a helper element within
// its parent curve's internal geometry.
type InternalAlignmentType int

const (
	Undef InternalAlignmentType = iota
	EllipseMajorDiameter
	EllipseMinorDiameter
	EllipseFocus1
	EllipseFocus2
	HyperbolaMajorDiameter
	HyperbolaMinorDiameter
	HyperbolaFocus
	ParabolaFocus
	ParabolaFocalAxis
	BSplineControlPoint
	BSplineKnotPoint
)

// Constraint relates up to three geometry references. Unused slots hold
// GeoUndef / PosNone.
type Constraint struct {
	Type          ConstraintType
	AlignmentType InternalAlignmentType

	First     int
	FirstPos  PointPos
	Second    int
	SecondPos PointPos
	Third     int
	ThirdPos  PointPos

	// Value is the dimension of driving constraints; angles are stored
	// in degrees. Expression, when set, is the authoritative source of
	// Value.
	Value      float64
	Expression string

	Name    string
	Driving bool

	// InternalAlignmentIndex is the 1-based ordinal of a helper among
	// its siblings of the same alignment type, -1 when unset.
	InternalAlignmentIndex int

	Tag uuid.UUID
}

// NewConstraint returns a constraint of the given type with all
// reference slots cleared.
func NewConstraint(t ConstraintType) *Constraint {
	return &Constraint{
		Type:                   t,
		First:                  GeoUndef,
		Second:                 GeoUndef,
		Third:                  GeoUndef,
		Driving:                true,
		InternalAlignmentIndex: -1,
		Tag:                    uuid.New(),
	}
}

// Clone returns a deep copy sharing the tag.
func (c *Constraint) Clone() *Constraint {
	cc := *c
	return &cc
}

// Involves reports whether any slot references geoId.
func (c *Constraint) Involves(geoId int) bool {
	return c.First == geoId || c.Second == geoId || c.Third == geoId
}

// slots returns the in-use geometry reference slots.
func (c *Constraint) slots() []*int {
	var s []*int
	for _, p := range []*int{&c.First, &c.Second, &c.Third} {
		if *p != GeoUndef {
			s = append(s, p)
		}
	}
	return s
}
