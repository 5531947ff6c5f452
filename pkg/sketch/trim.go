package sketch

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// A trim boundary is a point where another element crosses or touches
// the trimmed curve. Vertex contacts bind the new endpoint with a
// coincidence; plain crossings bind it onto the cutting edge.
type trimBoundary struct {
	param float64
	geoId int
	pos   PointPos
}

// Trim removes the portion of the curve at geoId that contains the
// point nearest p, bounded by the neighbouring crossings and vertex
// contacts. With no boundary on either side the whole element is
// deleted; a closed curve needs two boundaries to survive.
func (s *Sketch) Trim(geoId int, p v3.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if geoId < 0 || geoId >= len(s.geometry) {
		return indexErr("trim", geoId)
	}
	sn := s.snapshotLocked()
	if err := s.trimLocked(geoId, p); err != nil {
		s.restoreLocked(sn)
		return err
	}
	return nil
}

func (s *Sketch) trimLocked(geoId int, p v3.Vec) error {
	if _, ok := s.geometry[geoId].(geom.Curve); !ok {
		return valueErr("trim", "%s cannot be trimmed", s.geometry[geoId].Kind())
	}
	// Helpers are rebuilt on the trimmed result, so clear them up front.
	geoId = s.deleteHelpersLocked(geoId)
	c := s.geometry[geoId].(geom.Curve)

	u0, err := s.lib.ParameterAtPoint(c, p)
	if err != nil {
		return err
	}
	bounds := s.collectBoundariesLocked(geoId, c)

	if c.IsPeriodic() {
		if len(bounds) < 2 {
			return s.delWithHelpersLocked(geoId)
		}
		b1, b2 := neighboursCyclic(bounds, u0, c.FirstParameter(), c.LastParameter())
		return s.trimClosedLocked(geoId, b1, b2)
	}

	first, last := c.FirstParameter(), c.LastParameter()
	var below, above *trimBoundary
	for i := range bounds {
		b := &bounds[i]
		if !interior(b.param, first, last) {
			continue
		}
		if b.param < u0 {
			if below == nil || b.param > below.param {
				below = b
			}
		} else if b.param > u0 {
			if above == nil || b.param < above.param {
				above = b
			}
		}
	}
	switch {
	case below == nil && above == nil:
		return s.delWithHelpersLocked(geoId)
	case below != nil && above != nil:
		return s.trimTwoPiecesLocked(geoId, *below, *above)
	case below != nil:
		return s.trimShrinkLocked(geoId, *below, PosEnd)
	default:
		return s.trimShrinkLocked(geoId, *above, PosStart)
	}
}

// collectBoundariesLocked gathers crossings and on-curve vertices of
// every other element, deduplicated by parameter with vertex contacts
// winning.
func (s *Sketch) collectBoundariesLocked(geoId int, c geom.Curve) []trimBoundary {
	var bounds []trimBoundary
	for oid, o := range s.geometry {
		if oid == geoId {
			continue
		}
		for _, pos := range vertexPositions(o) {
			q := elementPoint(o, pos)
			u, err := s.lib.ParameterAtPoint(c, q)
			if err != nil {
				continue
			}
			if dist(c.PointAt(u), q) <= s.tol {
				bounds = append(bounds, trimBoundary{param: u, geoId: oid, pos: pos})
			}
		}
		if oc, ok := o.(geom.Curve); ok {
			hits, err := s.lib.Intersect(c, oc)
			if err != nil {
				continue
			}
			for _, h := range hits {
				bounds = append(bounds, trimBoundary{param: h.ParamA, geoId: oid, pos: PosNone})
			}
		}
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].param < bounds[j].param })

	// Merge near-equal parameters, preferring the vertex contact.
	var out []trimBoundary
	for _, b := range bounds {
		if len(out) > 0 && math.Abs(b.param-out[len(out)-1].param) < 1e-5 {
			if out[len(out)-1].pos == PosNone && b.pos != PosNone {
				out[len(out)-1] = b
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// neighboursCyclic picks the boundary below and above u0 on a closed
// curve, wrapping across the seam.
func neighboursCyclic(bounds []trimBoundary, u0, first, last float64) (b1, b2 trimBoundary) {
	period := last - first
	var below, above *trimBoundary
	for i := range bounds {
		b := &bounds[i]
		if b.param < u0 {
			if below == nil || b.param > below.param {
				below = b
			}
		} else if b.param > u0 {
			if above == nil || b.param < above.param {
				above = b
			}
		}
	}
	if below == nil {
		// Wrap: the highest boundary, one period down.
		w := bounds[len(bounds)-1]
		w.param -= period
		return w, *above
	}
	if above == nil {
		w := bounds[0]
		w.param += period
		return *below, w
	}
	return *below, *above
}

// trimTwoPiecesLocked removes the interior portion (b1.param, b2.param)
// of an open curve, leaving two pieces bound to their cutters.
func (s *Sketch) trimTwoPiecesLocked(geoId int, b1, b2 trimBoundary) error {
	var pieceA, pieceB geom.Element
	centers := false
	expose := false

	switch g := s.geometry[geoId].(type) {
	case *geom.LineSegment:
		pieceA = geom.NewLineSegment(g.P1, g.PointAt(b1.param))
		pieceB = geom.NewLineSegment(g.PointAt(b2.param), g.P2)
	case *geom.ArcOfCircle:
		pieceA = geom.NewArcOfCircle(g.Center, g.Radius, g.Start, b1.param)
		pieceB = geom.NewArcOfCircle(g.Center, g.Radius, b2.param, g.End)
		centers = true
	case *geom.ArcOfEllipse:
		a := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, g.Start, b1.param)
		a.AngleXU = g.AngleXU
		b := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, b2.param, g.End)
		b.AngleXU = g.AngleXU
		pieceA, pieceB = a, b
		centers = true
		expose = true
	case *geom.BSplineCurve:
		left, _, err := s.lib.Subdivide(g, b1.param)
		if err != nil {
			return err
		}
		_, right, err := s.lib.Subdivide(g, b2.param)
		if err != nil {
			return err
		}
		pieceA, pieceB = left, right
		expose = true
	default:
		return valueErr("trim", "%s cannot be trimmed", s.geometry[geoId].Kind())
	}

	construction := s.geometry[geoId].Common().Construction
	pieceA.Common().Construction = construction
	pieceB.Common().Construction = construction
	idA := s.addGeometryLocked(pieceA)
	idB := s.addGeometryLocked(pieceB)
	for _, c := range s.constraints {
		retargetSlot(&c.First, &c.FirstPos, geoId, idA, idB)
		retargetSlot(&c.Second, &c.SecondPos, geoId, idA, idB)
		retargetSlot(&c.Third, &c.ThirdPos, geoId, idA, idB)
	}
	s.delOneLocked(geoId)
	idA--
	idB--
	if b1.geoId > geoId {
		b1.geoId--
	}
	if b2.geoId > geoId {
		b2.geoId--
	}

	s.addBoundaryConstraintLocked(idA, PosEnd, b1)
	s.addBoundaryConstraintLocked(idB, PosStart, b2)
	if centers {
		cc := NewConstraint(Coincident)
		cc.First = idA
		cc.FirstPos = PosMid
		cc.Second = idB
		cc.SecondPos = PosMid
		s.constraints = append(s.constraints, cc)
	}
	if expose {
		if _, err := s.exposeLocked(idA); err != nil {
			return err
		}
		if _, err := s.exposeLocked(idB); err != nil {
			return err
		}
	}
	return nil
}

// trimShrinkLocked cuts the curve back to the boundary, removing the
// side whose endpoint vanished.
func (s *Sketch) trimShrinkLocked(geoId int, b trimBoundary, vanished PointPos) error {
	var shrunk geom.Element
	expose := false

	switch g := s.geometry[geoId].(type) {
	case *geom.LineSegment:
		if vanished == PosEnd {
			shrunk = geom.NewLineSegment(g.P1, g.PointAt(b.param))
		} else {
			shrunk = geom.NewLineSegment(g.PointAt(b.param), g.P2)
		}
	case *geom.ArcOfCircle:
		if vanished == PosEnd {
			shrunk = geom.NewArcOfCircle(g.Center, g.Radius, g.Start, b.param)
		} else {
			shrunk = geom.NewArcOfCircle(g.Center, g.Radius, b.param, g.End)
		}
	case *geom.ArcOfEllipse:
		var a *geom.ArcOfEllipse
		if vanished == PosEnd {
			a = geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, g.Start, b.param)
		} else {
			a = geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, b.param, g.End)
		}
		a.AngleXU = g.AngleXU
		shrunk = a
		expose = true
	case *geom.BSplineCurve:
		left, right, err := s.lib.Subdivide(g, b.param)
		if err != nil {
			return err
		}
		if vanished == PosEnd {
			shrunk = left
		} else {
			shrunk = right
		}
		expose = true
	default:
		return valueErr("trim", "%s cannot be trimmed", s.geometry[geoId].Kind())
	}

	// The vanished endpoint's constraints go with it.
	kept := s.constraints[:0]
	for _, c := range s.constraints {
		if referencesVertex(c, geoId, vanished) {
			continue
		}
		kept = append(kept, c)
	}
	s.constraints = kept

	shrunk.Common().Construction = s.geometry[geoId].Common().Construction
	s.replaceLocked(geoId, shrunk)

	// The boundary becomes the endpoint on the trimmed side.
	s.addBoundaryConstraintLocked(geoId, vanished, b)
	if expose {
		if _, err := s.exposeLocked(geoId); err != nil {
			return err
		}
	}
	return nil
}

// trimClosedLocked opens a closed curve between two boundaries, keeping
// the portion from b2 forward around to b1.
func (s *Sketch) trimClosedLocked(geoId int, b1, b2 trimBoundary) error {
	var opened geom.Element
	expose := false

	switch g := s.geometry[geoId].(type) {
	case *geom.Circle:
		opened = geom.NewArcOfCircle(g.Center, g.Radius, b2.param, b1.param)
	case *geom.Ellipse:
		a := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, b2.param, b1.param)
		a.AngleXU = g.AngleXU
		opened = a
		expose = true
	case *geom.BSplineCurve:
		open, err := s.lib.OpenAt(g, b2.param)
		if err != nil {
			return err
		}
		cut := b1.param
		for cut <= open.FirstParameter() {
			cut += open.LastParameter() - open.FirstParameter()
		}
		left, _, err := s.lib.Subdivide(open, cut)
		if err != nil {
			return err
		}
		opened = left
		expose = true
	default:
		return valueErr("trim", "%s cannot be trimmed", s.geometry[geoId].Kind())
	}

	opened.Common().Construction = s.geometry[geoId].Common().Construction
	s.replaceLocked(geoId, opened)
	s.addBoundaryConstraintLocked(geoId, PosStart, b2)
	s.addBoundaryConstraintLocked(geoId, PosEnd, b1)
	if expose {
		if _, err := s.exposeLocked(geoId); err != nil {
			return err
		}
	}
	return nil
}

// addBoundaryConstraintLocked binds a trimmed endpoint to its cutter: a
// coincidence for vertex contacts, point-on-object for crossings.
func (s *Sketch) addBoundaryConstraintLocked(geoId int, pos PointPos, b trimBoundary) {
	var c *Constraint
	if b.pos != PosNone {
		c = NewConstraint(Coincident)
		c.Second = b.geoId
		c.SecondPos = b.pos
	} else {
		c = NewConstraint(PointOnObject)
		c.Second = b.geoId
	}
	c.First = geoId
	c.FirstPos = pos
	s.constraints = append(s.constraints, c)
}

func referencesVertex(c *Constraint, geoId int, pos PointPos) bool {
	return (c.First == geoId && c.FirstPos == pos) ||
		(c.Second == geoId && c.SecondPos == pos) ||
		(c.Third == geoId && c.ThirdPos == pos)
}

func dist(a, b v3.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
