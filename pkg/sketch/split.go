package sketch

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// Split divides the curve at geoId at the curve point nearest p.
// Open curves become two pieces joined by a coincidence; closed curves
// become a single open curve covering the full turn. Conic arcs and
// B-splines expose their internal geometry on the resulting pieces.
func (s *Sketch) Split(geoId int, p v3.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if geoId < 0 || geoId >= len(s.geometry) {
		return indexErr("split", geoId)
	}
	sn := s.snapshotLocked()
	if err := s.splitLocked(geoId, p); err != nil {
		s.restoreLocked(sn)
		return err
	}
	return nil
}

func (s *Sketch) splitLocked(geoId int, p v3.Vec) error {
	e := s.geometry[geoId]
	c, ok := e.(geom.Curve)
	if !ok {
		return valueErr("split", "%s cannot be split", e.Kind())
	}
	u, err := s.lib.ParameterAtPoint(c, p)
	if err != nil {
		return err
	}
	construction := e.Common().Construction

	switch g := e.(type) {
	case *geom.LineSegment:
		if !interior(u, 0, 1) {
			return valueErr("split", "split point coincides with a line end")
		}
		mid := g.PointAt(u)
		a := geom.NewLineSegment(g.P1, mid)
		b := geom.NewLineSegment(mid, g.P2)
		return s.splitOpenLocked(geoId, a, b, false, false)

	case *geom.ArcOfCircle:
		if !interior(u, g.Start, g.End) {
			return valueErr("split", "split point coincides with an arc end")
		}
		a := geom.NewArcOfCircle(g.Center, g.Radius, g.Start, u)
		b := geom.NewArcOfCircle(g.Center, g.Radius, u, g.End)
		return s.splitOpenLocked(geoId, a, b, true, false)

	case *geom.ArcOfEllipse:
		if !interior(u, g.Start, g.End) {
			return valueErr("split", "split point coincides with an arc end")
		}
		geoId = s.deleteHelpersLocked(geoId)
		a := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, g.Start, u)
		a.AngleXU = g.AngleXU
		b := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, u, g.End)
		b.AngleXU = g.AngleXU
		return s.splitOpenLocked(geoId, a, b, true, true)

	case *geom.ArcOfHyperbola:
		if !interior(u, g.Start, g.End) {
			return valueErr("split", "split point coincides with an arc end")
		}
		geoId = s.deleteHelpersLocked(geoId)
		a := geom.NewArcOfHyperbola(g.Center, g.MajorRadius, g.MinorRadius, g.Start, u)
		a.AngleXU = g.AngleXU
		b := geom.NewArcOfHyperbola(g.Center, g.MajorRadius, g.MinorRadius, u, g.End)
		b.AngleXU = g.AngleXU
		return s.splitOpenLocked(geoId, a, b, false, true)

	case *geom.ArcOfParabola:
		if !interior(u, g.Start, g.End) {
			return valueErr("split", "split point coincides with an arc end")
		}
		geoId = s.deleteHelpersLocked(geoId)
		a := geom.NewArcOfParabola(g.Center, g.Focal, g.Start, u)
		a.AngleXU = g.AngleXU
		b := geom.NewArcOfParabola(g.Center, g.Focal, u, g.End)
		b.AngleXU = g.AngleXU
		return s.splitOpenLocked(geoId, a, b, false, true)

	case *geom.Circle:
		arc := geom.NewArcOfCircle(g.Center, g.Radius, u, u)
		arc.Construction = construction
		s.replaceLocked(geoId, arc)
		return nil

	case *geom.Ellipse:
		arc := geom.NewArcOfEllipse(g.Center, g.MajorRadius, g.MinorRadius, u, u)
		arc.AngleXU = g.AngleXU
		arc.Construction = construction
		geoId = s.deleteHelpersLocked(geoId)
		s.replaceLocked(geoId, arc)
		_, err := s.exposeLocked(geoId)
		return err

	case *geom.BSplineCurve:
		if g.Periodic {
			geoId = s.deleteHelpersLocked(geoId)
			g = s.geometry[geoId].(*geom.BSplineCurve)
			open, err := s.lib.OpenAt(g, u)
			if err != nil {
				return err
			}
			open.Construction = construction
			s.replaceLocked(geoId, open)
			_, err = s.exposeLocked(geoId)
			return err
		}
		if !interior(u, g.FirstParameter(), g.LastParameter()) {
			return valueErr("split", "split point coincides with a curve end")
		}
		geoId = s.deleteHelpersLocked(geoId)
		g = s.geometry[geoId].(*geom.BSplineCurve)
		left, right, err := s.lib.Subdivide(g, u)
		if err != nil {
			return err
		}
		return s.splitOpenLocked(geoId, left, right, false, true)

	default:
		return valueErr("split", "%s cannot be split", e.Kind())
	}
}

// splitOpenLocked replaces the open curve geoId by the two pieces,
// transferring endpoint references, adding the junction coincidence
// (plus a center coincidence for arcs) and exposing internal geometry
// when asked.
func (s *Sketch) splitOpenLocked(geoId int, a, b geom.Element, centers, expose bool) error {
	construction := s.geometry[geoId].Common().Construction
	a.Common().Construction = construction
	b.Common().Construction = construction
	idA := s.addGeometryLocked(a)
	idB := s.addGeometryLocked(b)

	// Endpoint references move to the matching piece end; an arc center
	// reference lands on the first piece.
	for _, c := range s.constraints {
		retargetSlot(&c.First, &c.FirstPos, geoId, idA, idB)
		retargetSlot(&c.Second, &c.SecondPos, geoId, idA, idB)
		retargetSlot(&c.Third, &c.ThirdPos, geoId, idA, idB)
	}
	s.delOneLocked(geoId)
	idA--
	idB--

	junction := NewConstraint(Coincident)
	junction.First = idA
	junction.FirstPos = PosEnd
	junction.Second = idB
	junction.SecondPos = PosStart
	s.constraints = append(s.constraints, junction)

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

func retargetSlot(slot *int, pos *PointPos, oldGeo, idA, idB int) {
	if *slot != oldGeo {
		return
	}
	switch *pos {
	case PosStart, PosMid:
		*slot = idA
	case PosEnd:
		*slot = idB
	}
	// Whole-edge references stay on the old id and are dropped with it.
}

// replaceLocked swaps the element at geoId for a new one, keeping the
// geoId and giving the replacement a fresh element id.
func (s *Sketch) replaceLocked(geoId int, e geom.Element) {
	e.Common().Id = s.nextId
	s.nextId++
	s.geometry[geoId] = e
}

func interior(u, lo, hi float64) bool {
	const eps = 1e-9
	return u > lo+eps && u < hi-eps
}
