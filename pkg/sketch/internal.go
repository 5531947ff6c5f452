package sketch

import (
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// Internal geometry management. Conics and B-splines carry derived
// helper elements (axis lines, foci, pole circles, knot points) tied to
// the parent by InternalAlignment constraints.

// ExposeInternalGeometry creates the missing helper elements for the
// curve at geoId and returns how many were added. Exposing an already
// exposed curve adds nothing.
func (s *Sketch) ExposeInternalGeometry(geoId int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exposeLocked(geoId)
}

func (s *Sketch) exposeLocked(geoId int) (int, error) {
	e, err := s.geometryLocked(geoId)
	if err != nil {
		return 0, err
	}
	if geoId < 0 {
		return 0, valueErr("expose internal geometry", "geoId %d is not sketch geometry", geoId)
	}

	// Roles already present for this parent.
	type roleKey struct {
		t   InternalAlignmentType
		idx int
	}
	have := map[roleKey]bool{}
	for _, c := range s.constraints {
		if c.Type == InternalAlignment && c.Second == geoId {
			have[roleKey{c.AlignmentType, c.InternalAlignmentIndex}] = true
		}
	}

	added := 0
	addLine := func(role InternalAlignmentType, idx int, p1, p2 v3.Vec) {
		if have[roleKey{role, idx}] {
			return
		}
		l := geom.NewLineSegment(p1, p2)
		l.Construction = true
		l.InternalAlignment = true
		hid := s.addGeometryLocked(l)
		s.addAlignmentLocked(role, idx, hid, PosNone, geoId)
		added++
	}
	addPoint := func(role InternalAlignmentType, idx int, p v3.Vec) {
		if have[roleKey{role, idx}] {
			return
		}
		pt := geom.NewPoint(p.X, p.Y)
		pt.Construction = true
		pt.InternalAlignment = true
		hid := s.addGeometryLocked(pt)
		s.addAlignmentLocked(role, idx, hid, PosStart, geoId)
		added++
	}
	addCircle := func(role InternalAlignmentType, idx int, center v3.Vec, r float64) {
		if have[roleKey{role, idx}] {
			return
		}
		c := geom.NewCircle(center, r)
		c.Construction = true
		c.InternalAlignment = true
		hid := s.addGeometryLocked(c)
		s.addAlignmentLocked(role, idx, hid, PosMid, geoId)
		added++
	}

	switch g := e.(type) {
	case *geom.Ellipse:
		maj1, maj2 := g.MajorAxisEndpoints()
		min1, min2 := g.MinorAxisEndpoints()
		addLine(EllipseMajorDiameter, -1, maj1, maj2)
		addLine(EllipseMinorDiameter, -1, min1, min2)
		addPoint(EllipseFocus1, -1, g.Focus1())
		addPoint(EllipseFocus2, -1, g.Focus2())
	case *geom.ArcOfEllipse:
		maj1, maj2 := g.MajorAxisEndpoints()
		min1, min2 := g.MinorAxisEndpoints()
		addLine(EllipseMajorDiameter, -1, maj1, maj2)
		addLine(EllipseMinorDiameter, -1, min1, min2)
		addPoint(EllipseFocus1, -1, g.Focus1())
		addPoint(EllipseFocus2, -1, g.Focus2())
	case *geom.ArcOfHyperbola:
		maj1, maj2 := g.MajorAxisEndpoints()
		min1, min2 := g.MinorAxisEndpoints()
		addLine(HyperbolaMajorDiameter, -1, maj1, maj2)
		addLine(HyperbolaMinorDiameter, -1, min1, min2)
		addPoint(HyperbolaFocus, -1, g.Focus())
	case *geom.ArcOfParabola:
		ax1, ax2 := g.FocalAxisEndpoints()
		addLine(ParabolaFocalAxis, -1, ax1, ax2)
		addPoint(ParabolaFocus, -1, g.Focus())
	case *geom.BSplineCurve:
		for i, pole := range g.Poles {
			addCircle(BSplineControlPoint, i+1, pole, g.Weights[i])
		}
		for i, k := range g.Knots {
			if g.Periodic && i == len(g.Knots)-1 {
				break // the wrapped knot shares the first knot's point
			}
			addPoint(BSplineKnotPoint, i+1, g.PointAt(k))
		}
	default:
		return 0, valueErr("expose internal geometry",
			"%s has no internal geometry", e.Kind())
	}
	return added, nil
}

func (s *Sketch) addAlignmentLocked(role InternalAlignmentType, idx, helper int, helperPos PointPos, parent int) {
	c := NewConstraint(InternalAlignment)
	c.AlignmentType = role
	c.InternalAlignmentIndex = idx
	c.First = helper
	c.FirstPos = helperPos
	c.Second = parent
	s.constraints = append(s.constraints, c)
}

// DeleteUnusedInternalGeometry removes the helpers of geoId that no
// constraint besides their own InternalAlignment references.
func (s *Sketch) DeleteUnusedInternalGeometry(geoId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.deleteUnusedLocked(geoId)
	return err
}

// DeleteUnusedInternalGeometryAndUpdateGeoId is DeleteUnusedInternalGeometry
// returning the parent's geoId after renumbering.
func (s *Sketch) DeleteUnusedInternalGeometryAndUpdateGeoId(geoId int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteUnusedLocked(geoId)
}

func (s *Sketch) deleteUnusedLocked(geoId int) (int, error) {
	if geoId < 0 || geoId >= len(s.geometry) {
		return geoId, indexErr("delete unused internal geometry", geoId)
	}
	var unused []int
	for _, hid := range s.helpersOfLocked(geoId) {
		inUse := false
		for _, c := range s.constraints {
			if c.Type != InternalAlignment && c.Involves(hid) {
				inUse = true
				break
			}
			// A second parent's alignment also counts as use.
			if c.Type == InternalAlignment && c.First == hid && c.Second != geoId {
				inUse = true
				break
			}
		}
		if !inUse {
			unused = append(unused, hid)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unused)))
	for _, hid := range unused {
		s.delOneLocked(hid)
		if hid < geoId {
			geoId--
		}
	}
	return geoId, nil
}

// deleteHelpersLocked removes every helper of geoId regardless of use,
// returning the parent's updated geoId. Curve surgery that rebuilds a
// spline uses this before re-exposing.
func (s *Sketch) deleteHelpersLocked(geoId int) int {
	ids := s.helpersOfLocked(geoId)
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	for _, hid := range ids {
		s.delOneLocked(hid)
		if hid < geoId {
			geoId--
		}
	}
	return geoId
}
