// Package sketch implements the parametric 2D sketch core: the
// geometry and constraint store, reference renumbering, internal
// geometry management, and the curve edit operations built on top.
package sketch

import (
	"sort"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"

	"github.com/chazu/linea/pkg/curve"
	"github.com/chazu/linea/pkg/curve/native"
	"github.com/chazu/linea/pkg/geom"
)

// Sketch is the geometry and constraint store. All operations are safe
// for concurrent use; compound edits are transactional and leave the
// store untouched on error.
type Sketch struct {
	mu          sync.RWMutex
	lib         curve.Library
	geometry    []geom.Element
	constraints []*Constraint
	externals   []geom.Element
	nextId      int64
	tol         float64

	hAxis *geom.LineSegment
	vAxis *geom.LineSegment
}

// New creates an empty sketch on the native curve library.
func New() *Sketch {
	return NewWithLibrary(native.New())
}

// NewWithLibrary creates an empty sketch on the given curve library.
func NewWithLibrary(lib curve.Library) *Sketch {
	h := geom.NewLineSegment(v3.Vec{}, v3.Vec{X: 1})
	v := geom.NewLineSegment(v3.Vec{}, v3.Vec{Y: 1})
	h.Construction = true
	v.Construction = true
	return &Sketch{lib: lib, nextId: 1, tol: 1e-6, hAxis: h, vAxis: v}
}

// Library returns the curve library backing this sketch.
func (s *Sketch) Library() curve.Library { return s.lib }

// SetTolerance adjusts the coincidence tolerance used by trim boundary
// detection.
func (s *Sketch) SetTolerance(tol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tol = tol
}

// ---------------------------------------------------------------------------
// geometry

// AddGeometry clones the element into the sketch and returns its geoId.
func (s *Sketch) AddGeometry(e geom.Element) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addGeometryLocked(e)
}

// AddGeometryList adds several elements, returning their geoIds.
func (s *Sketch) AddGeometryList(es []geom.Element) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, len(es))
	for i, e := range es {
		ids[i] = s.addGeometryLocked(e)
	}
	return ids
}

func (s *Sketch) addGeometryLocked(e geom.Element) int {
	c := e.Clone()
	c.Common().Id = s.nextId
	s.nextId++
	s.geometry = append(s.geometry, c)
	return len(s.geometry) - 1
}

// AddExternal registers an external reference element and returns its
// negative geoId.
func (s *Sketch) AddExternal(e geom.Element) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := e.Clone()
	c.Common().Id = s.nextId
	s.nextId++
	s.externals = append(s.externals, c)
	return RefExt - (len(s.externals) - 1)
}

// Geometry returns the element for geoId, resolving the sketch axes
// and external references for negative ids.
func (s *Sketch) Geometry(geoId int) (geom.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometryLocked(geoId)
}

func (s *Sketch) geometryLocked(geoId int) (geom.Element, error) {
	switch {
	case geoId >= 0 && geoId < len(s.geometry):
		return s.geometry[geoId], nil
	case geoId == HAxis:
		return s.hAxis, nil
	case geoId == VAxis:
		return s.vAxis, nil
	case geoId <= RefExt:
		if i := RefExt - geoId; i < len(s.externals) {
			return s.externals[i], nil
		}
	}
	return nil, indexErr("geometry", geoId)
}

// GeometryCount returns the number of sketch-owned elements.
func (s *Sketch) GeometryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.geometry)
}

// HighestCurveIndex returns the largest valid geoId, -1 when empty.
func (s *Sketch) HighestCurveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.geometry) - 1
}

// GeometryList returns a snapshot of the sketch-owned elements.
func (s *Sketch) GeometryList() []geom.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geom.Element, len(s.geometry))
	for i, e := range s.geometry {
		out[i] = e.Clone()
	}
	return out
}

// GeometryId returns the immutable identity of the element at geoId:
// the creation tag and the sketch-assigned long id. Both survive geoId
// renumbering; only the geoId itself shifts when geometry is deleted.
func (s *Sketch) GeometryId(geoId int) (uuid.UUID, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.geometryLocked(geoId)
	if err != nil {
		return uuid.Nil, 0, err
	}
	b := e.Common()
	return b.Tag, b.Id, nil
}

// DelGeometry removes the element and its internal geometry helpers,
// renumbering all remaining constraint references.
func (s *Sketch) DelGeometry(geoId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if geoId < 0 || geoId >= len(s.geometry) {
		return indexErr("delete geometry", geoId)
	}
	return s.delWithHelpersLocked(geoId)
}

// DelGeometries removes a set of elements, highest geoId first. The
// whole batch is validated before anything is deleted; remaining target
// ids are renumbered as cascading helper deletions compact the list, so
// a target that is itself a helper of an earlier target is simply
// consumed by the cascade.
func (s *Sketch) DelGeometries(geoIds []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]int(nil), geoIds...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var targets []int
	for i, id := range sorted {
		if id < 0 || id >= len(s.geometry) {
			return indexErr("delete geometry", id)
		}
		if i > 0 && id == sorted[i-1] {
			continue
		}
		targets = append(targets, id)
	}

	for len(targets) > 0 {
		id := targets[0]
		targets = targets[1:]
		doomed := append(s.helpersOfLocked(id), id)
		sort.Sort(sort.Reverse(sort.IntSlice(doomed)))
		for _, d := range doomed {
			s.delOneLocked(d)
			kept := targets[:0]
			for _, t := range targets {
				if t == d {
					continue
				}
				if t > d {
					t--
				}
				kept = append(kept, t)
			}
			targets = kept
		}
	}
	return nil
}

func (s *Sketch) delWithHelpersLocked(geoId int) error {
	ids := append(s.helpersOfLocked(geoId), geoId)
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	for _, id := range ids {
		s.delOneLocked(id)
	}
	return nil
}

// delOneLocked removes a single element and renumbers constraints,
// dropping those that referenced it.
func (s *Sketch) delOneLocked(geoId int) {
	s.geometry = append(s.geometry[:geoId], s.geometry[geoId+1:]...)
	kept := s.constraints[:0]
	for _, c := range s.constraints {
		if adjustInPlace(c, geoId) {
			kept = append(kept, c)
		}
	}
	s.constraints = kept
}

// helpersOfLocked lists the internal geometry elements attached to the
// parent geoId.
func (s *Sketch) helpersOfLocked(geoId int) []int {
	var ids []int
	for _, c := range s.constraints {
		if c.Type == InternalAlignment && c.Second == geoId && c.First >= 0 {
			ids = append(ids, c.First)
		}
	}
	return ids
}

// ---------------------------------------------------------------------------
// constraints

// AddConstraint validates the references and stores a copy, returning
// the constraint index.
func (s *Sketch) AddConstraint(c *Constraint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addConstraintLocked(c)
}

func (s *Sketch) addConstraintLocked(c *Constraint) (int, error) {
	for _, slot := range c.slots() {
		if _, err := s.geometryLocked(*slot); err != nil {
			return -1, err
		}
	}
	s.constraints = append(s.constraints, c.Clone())
	return len(s.constraints) - 1, nil
}

// Constraint returns the constraint at index.
func (s *Sketch) Constraint(index int) (*Constraint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.constraints) {
		return nil, indexErr("constraint", index)
	}
	return s.constraints[index], nil
}

// Constraints returns a snapshot of all constraints.
func (s *Sketch) Constraints() []*Constraint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Constraint, len(s.constraints))
	for i, c := range s.constraints {
		out[i] = c.Clone()
	}
	return out
}

// ConstraintCount returns the number of constraints.
func (s *Sketch) ConstraintCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.constraints)
}

// ConstraintIndexByTag locates a constraint by its tag. Tags are stable
// across the index shifts caused by removals and curve edits.
func (s *Sketch) ConstraintIndexByTag(tag uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, c := range s.constraints {
		if c.Tag == tag {
			return i, nil
		}
	}
	return -1, valueErr("constraint tag", "no constraint tagged %s", tag)
}

// RemoveConstraint deletes the constraint at index.
func (s *Sketch) RemoveConstraint(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.constraints) {
		return indexErr("remove constraint", index)
	}
	s.constraints = append(s.constraints[:index], s.constraints[index+1:]...)
	return nil
}

// countConstraintsLocked counts constraints matching the predicate.
func (s *Sketch) countConstraintsLocked(pred func(*Constraint) bool) int {
	n := 0
	for _, c := range s.constraints {
		if pred(c) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// transactions

type snapshot struct {
	geometry    []geom.Element
	constraints []*Constraint
	externals   []geom.Element
	nextId      int64
}

func (s *Sketch) snapshotLocked() *snapshot {
	sn := &snapshot{nextId: s.nextId}
	sn.geometry = make([]geom.Element, len(s.geometry))
	for i, e := range s.geometry {
		sn.geometry[i] = e.Clone()
	}
	sn.constraints = make([]*Constraint, len(s.constraints))
	for i, c := range s.constraints {
		sn.constraints[i] = c.Clone()
	}
	sn.externals = make([]geom.Element, len(s.externals))
	for i, e := range s.externals {
		sn.externals[i] = e.Clone()
	}
	return sn
}

func (s *Sketch) restoreLocked(sn *snapshot) {
	s.geometry = sn.geometry
	s.constraints = sn.constraints
	s.externals = sn.externals
	s.nextId = sn.nextId
}
