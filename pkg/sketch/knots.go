package sketch

import (
	"github.com/chazu/linea/pkg/geom"
)

// B-spline knot editing. Both operations rebuild the spline's exposed
// internal geometry, since pole and knot helpers change with the knot
// vector.

// ModifyBSplineKnotMultiplicity changes the multiplicity of the distinct
// knot at 1-based knotIndex by delta. The resulting multiplicity must
// stay within [0, degree]; at zero the knot disappears.
func (s *Sketch) ModifyBSplineKnotMultiplicity(geoId, knotIndex, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := s.snapshotLocked()
	if err := s.modifyKnotMultLocked(geoId, knotIndex, delta); err != nil {
		s.restoreLocked(sn)
		return err
	}
	return nil
}

func (s *Sketch) modifyKnotMultLocked(geoId, knotIndex, delta int) error {
	b, err := s.bsplineAtLocked(geoId)
	if err != nil {
		return err
	}
	if delta == 0 {
		return valueErr("modify knot multiplicity", "no multiplicity change requested")
	}
	if knotIndex < 1 || knotIndex > len(b.Knots) {
		return indexErr("modify knot multiplicity", knotIndex)
	}
	if !b.Periodic && (knotIndex == 1 || knotIndex == len(b.Knots)) {
		return valueErr("modify knot multiplicity", "cannot modify an end knot of an open curve")
	}
	cur := b.Mults[knotIndex-1]
	if target := cur + delta; target < 0 || target > b.Degree {
		return valueErr("modify knot multiplicity",
			"resulting multiplicity %d outside [0, %d]", target, b.Degree)
	}

	wasExposed := len(s.helpersOfLocked(geoId)) > 0
	geoId = s.deleteHelpersLocked(geoId)
	work := s.geometry[geoId].(*geom.BSplineCurve).Clone().(*geom.BSplineCurve)
	knot := work.Knots[knotIndex-1]

	if delta > 0 {
		if err := s.lib.InsertKnot(work, knot, delta); err != nil {
			return err
		}
	} else {
		for i := 0; i < -delta; i++ {
			idx := work.KnotIndexAt(knot, 1e-9)
			if idx < 0 {
				break
			}
			if err := s.lib.RemoveKnot(work, idx); err != nil {
				return err
			}
		}
	}
	s.geometry[geoId] = work
	if wasExposed {
		if _, err := s.exposeLocked(geoId); err != nil {
			return err
		}
	}
	return nil
}

// InsertBSplineKnot inserts a knot at param with the given multiplicity,
// raising the multiplicity when the knot already exists. The
// multiplicity must lie in [1, degree].
func (s *Sketch) InsertBSplineKnot(geoId int, param float64, mult int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := s.snapshotLocked()
	if err := s.insertKnotLocked(geoId, param, mult); err != nil {
		s.restoreLocked(sn)
		return err
	}
	return nil
}

func (s *Sketch) insertKnotLocked(geoId int, param float64, mult int) error {
	b, err := s.bsplineAtLocked(geoId)
	if err != nil {
		return err
	}
	if mult <= 0 || mult > b.Degree {
		return valueErr("insert knot", "multiplicity %d outside [1, %d]", mult, b.Degree)
	}

	wasExposed := len(s.helpersOfLocked(geoId)) > 0
	geoId = s.deleteHelpersLocked(geoId)
	work := s.geometry[geoId].(*geom.BSplineCurve).Clone().(*geom.BSplineCurve)
	if err := s.lib.InsertKnot(work, param, mult); err != nil {
		return err
	}
	s.geometry[geoId] = work
	if wasExposed {
		if _, err := s.exposeLocked(geoId); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sketch) bsplineAtLocked(geoId int) (*geom.BSplineCurve, error) {
	if geoId < 0 || geoId >= len(s.geometry) {
		return nil, indexErr("bspline", geoId)
	}
	b, ok := s.geometry[geoId].(*geom.BSplineCurve)
	if !ok {
		return nil, valueErr("bspline", "element %d is a %s, not a B-spline",
			geoId, s.geometry[geoId].Kind())
	}
	return b, nil
}
