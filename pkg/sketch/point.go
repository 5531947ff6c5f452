package sketch

import (
	"fmt"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// defaultPoint is what GetPoint yields for vertex positions an element
// does not define: the origin, matching an unset vector.
var defaultPoint = v3.Vec{}

// GetPoint returns the coordinates of a vertex of the element.
// Positions the element does not define resolve to the default point.
func (s *Sketch) GetPoint(geoId int, pos PointPos) (v3.Vec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointLocked(geoId, pos)
}

func (s *Sketch) pointLocked(geoId int, pos PointPos) (v3.Vec, error) {
	e, err := s.geometryLocked(geoId)
	if err != nil {
		return v3.Vec{}, err
	}
	return elementPoint(e, pos), nil
}

func elementPoint(e geom.Element, pos PointPos) v3.Vec {
	switch g := e.(type) {
	case *geom.Point:
		if pos == PosStart || pos == PosMid {
			return g.Position
		}
	case *geom.LineSegment:
		switch pos {
		case PosStart:
			return g.P1
		case PosEnd:
			return g.P2
		}
	case *geom.Circle:
		switch pos {
		case PosMid:
			return g.Center
		case PosStart, PosEnd:
			// A full circle has no real endpoints; both resolve to the
			// point at parameter zero.
			return g.PointAt(0)
		}
	case *geom.Ellipse:
		switch pos {
		case PosMid:
			return g.Center
		case PosStart, PosEnd:
			return g.PointAt(0)
		}
	case *geom.ArcOfCircle:
		switch pos {
		case PosStart:
			return g.PointAt(g.Start)
		case PosEnd:
			return g.PointAt(g.End)
		case PosMid:
			return g.Center
		}
	case *geom.ArcOfEllipse:
		switch pos {
		case PosStart:
			return g.PointAt(g.Start)
		case PosEnd:
			return g.PointAt(g.End)
		case PosMid:
			return g.Center
		}
	case *geom.ArcOfHyperbola:
		switch pos {
		case PosStart:
			return g.PointAt(g.Start)
		case PosEnd:
			return g.PointAt(g.End)
		case PosMid:
			return g.Center
		}
	case *geom.ArcOfParabola:
		switch pos {
		case PosStart:
			return g.PointAt(g.Start)
		case PosEnd:
			return g.PointAt(g.End)
		case PosMid:
			return g.Center
		}
	case *geom.BSplineCurve:
		if g.Periodic {
			break
		}
		switch pos {
		case PosStart:
			return g.StartPoint()
		case PosEnd:
			return g.EndPoint()
		}
	}
	return defaultPoint
}

// vertexPositions lists the vertex positions an element exposes, in the
// order they are numbered for VertexN names.
func vertexPositions(e geom.Element) []PointPos {
	switch g := e.(type) {
	case *geom.Point:
		return []PointPos{PosStart}
	case *geom.LineSegment:
		return []PointPos{PosStart, PosEnd}
	case *geom.Circle, *geom.Ellipse:
		return []PointPos{PosMid}
	case *geom.ArcOfCircle, *geom.ArcOfEllipse, *geom.ArcOfHyperbola, *geom.ArcOfParabola:
		return []PointPos{PosStart, PosEnd, PosMid}
	case *geom.BSplineCurve:
		if g.Periodic {
			return nil
		}
		return []PointPos{PosStart, PosEnd}
	}
	return nil
}

// VertexCount returns the number of addressable vertices of an element.
func VertexCount(e geom.Element) int { return len(vertexPositions(e)) }

// GeoIdFromShapeType resolves a shape subelement name ("Edge3",
// "Vertex5", "ExternalEdge2", "H_Axis", "V_Axis", "RootPoint") to a
// geometry reference.
func (s *Sketch) GeoIdFromShapeType(name string) (int, PointPos, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch name {
	case "H_Axis":
		return HAxis, PosNone, nil
	case "V_Axis":
		return VAxis, PosNone, nil
	case "RootPoint":
		return RtPnt, PosStart, nil
	}
	if n, ok := trailingIndex(name, "ExternalEdge"); ok {
		if n < 1 || n > len(s.externals) {
			return GeoUndef, PosNone, indexErr("external edge", n)
		}
		return RefExt + 1 - n, PosNone, nil
	}
	if n, ok := trailingIndex(name, "Edge"); ok {
		if n < 1 || n > len(s.geometry) {
			return GeoUndef, PosNone, indexErr("edge", n)
		}
		return n - 1, PosNone, nil
	}
	if n, ok := trailingIndex(name, "Vertex"); ok {
		seen := 0
		for geoId, e := range s.geometry {
			for _, pos := range vertexPositions(e) {
				seen++
				if seen == n {
					return geoId, pos, nil
				}
			}
		}
		return GeoUndef, PosNone, indexErr("vertex", n)
	}
	return GeoUndef, PosNone, valueErr("shape name", "unrecognized subelement %q", name)
}

// ShapeTypeFromGeoId is the inverse mapping for edges and vertices.
func (s *Sketch) ShapeTypeFromGeoId(geoId int, pos PointPos) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case geoId <= RefExt:
		return fmt.Sprintf("ExternalEdge%d", RefExt+1-geoId), nil
	case geoId == HAxis:
		if pos == PosStart {
			return "RootPoint", nil
		}
		return "H_Axis", nil
	case geoId == VAxis:
		return "V_Axis", nil
	}
	if geoId < 0 || geoId >= len(s.geometry) {
		return "", indexErr("shape name", geoId)
	}
	if pos == PosNone {
		return fmt.Sprintf("Edge%d", geoId+1), nil
	}
	seen := 0
	for id, e := range s.geometry {
		for _, p := range vertexPositions(e) {
			seen++
			if id == geoId && p == pos {
				return fmt.Sprintf("Vertex%d", seen), nil
			}
		}
	}
	return "", valueErr("shape name", "element %d has no %s vertex", geoId, pos)
}

func trailingIndex(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}
