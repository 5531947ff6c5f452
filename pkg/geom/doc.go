// Package geom defines the geometry element types of a parametric 2D
// sketch. Elements live in the sketch plane but carry full 3D
// coordinates (z = 0) so downstream consumers can embed them directly.
package geom
