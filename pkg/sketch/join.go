package sketch

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// joinSamples is the per-side sampling density for the interpolating
// replacement spline.
const joinSamples = 16

// JoinCurves replaces two open curves by a single interpolating cubic
// B-spline. pos1/pos2 pick the end of each curve that meets the
// junction. Continuity 0 keeps a kink: the two sides are interpolated
// separately and chained with a junction knot of full multiplicity.
// Continuity 1 fits one smooth spline through both sides.
func (s *Sketch) JoinCurves(geoId1 int, pos1 PointPos, geoId2 int, pos2 PointPos, continuity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := s.snapshotLocked()
	if err := s.joinLocked(geoId1, pos1, geoId2, pos2, continuity); err != nil {
		s.restoreLocked(sn)
		return err
	}
	return nil
}

func (s *Sketch) joinLocked(geoId1 int, pos1 PointPos, geoId2 int, pos2 PointPos, continuity int) error {
	if geoId1 == geoId2 {
		return valueErr("join", "cannot join a curve with itself")
	}
	if continuity != 0 && continuity != 1 {
		return valueErr("join", "continuity %d not supported", continuity)
	}
	c1, err := s.openCurveLocked(geoId1)
	if err != nil {
		return err
	}
	c2, err := s.openCurveLocked(geoId2)
	if err != nil {
		return err
	}
	if (pos1 != PosStart && pos1 != PosEnd) || (pos2 != PosStart && pos2 != PosEnd) {
		return valueErr("join", "join ends must be start or end points")
	}

	// Side one runs into the junction, side two out of it.
	side1 := sampleCurve(c1, joinSamples, pos1 == PosStart)
	side2 := sampleCurve(c2, joinSamples, pos2 == PosEnd)

	var joined *geom.BSplineCurve
	if continuity == 0 {
		a, err := s.lib.Interpolate(side1)
		if err != nil {
			return err
		}
		b, err := s.lib.Interpolate(side2)
		if err != nil {
			return err
		}
		joined, err = s.lib.ConcatC0(a, b)
		if err != nil {
			return err
		}
	} else {
		pts := append(side1, side2[1:]...)
		joined, err = s.lib.Interpolate(pts)
		if err != nil {
			return err
		}
	}
	joined.Construction = c1.Common().Construction && c2.Common().Construction

	if err := s.delWithHelpersLocked(maxInt(geoId1, geoId2)); err != nil {
		return err
	}
	if err := s.delWithHelpersLocked(minInt(geoId1, geoId2)); err != nil {
		return err
	}
	s.addGeometryLocked(joined)
	return nil
}

func (s *Sketch) openCurveLocked(geoId int) (geom.Curve, error) {
	if geoId < 0 || geoId >= len(s.geometry) {
		return nil, indexErr("join", geoId)
	}
	c, ok := s.geometry[geoId].(geom.Curve)
	if !ok {
		return nil, valueErr("join", "%s cannot be joined", s.geometry[geoId].Kind())
	}
	if c.IsPeriodic() {
		return nil, valueErr("join", "cannot join a closed curve")
	}
	return c, nil
}

// sampleCurve walks the curve at uniform parameters, reversed when the
// junction sits at the start.
func sampleCurve(c geom.Curve, n int, reverse bool) []v3.Vec {
	first, last := c.FirstParameter(), c.LastParameter()
	pts := make([]v3.Vec, n+1)
	for i := 0; i <= n; i++ {
		u := first + (last-first)*float64(i)/float64(n)
		if reverse {
			u = last - (last-first)*float64(i)/float64(n)
		}
		pts[i] = c.PointAt(u)
	}
	return pts
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
