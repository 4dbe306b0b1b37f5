// Package geom provides the geometry back-end contract the motion-blur BVH
// builder queries during temporal splits and primitive-reference
// recomputation (spec §6's "geometry back-end"), plus one concrete mesh
// type that implements it.
package geom

import "github.com/lp249839965/embree/pkg/core"

// Mesh is the per-geometry contract the builder's recomputation step (C3)
// calls into. It is the only interface the builder uses to reach actual
// geometry data.
type Mesh interface {
	// LinearBounds returns the conservative linear bounds of the
	// primitive identified by primID over the normalized time interval
	// timeRange ⊂ [0,1].
	LinearBounds(primID int, timeRange core.TimeRange) core.LBBox

	// NumTimeSegments returns the number of motion segments this mesh's
	// primitives are divided into (totalTimeSegments+1 keyframes make
	// totalTimeSegments segments). Always >= 1.
	NumTimeSegments() int
}

// Backend resolves a geomID to the Mesh that owns it, mirroring the
// scene->get(geomID) lookup the original builder performs.
type Backend interface {
	Mesh(geomID uint32) (Mesh, bool)
}

// MeshSet is the simplest possible Backend: a fixed map from geomID to Mesh.
type MeshSet map[uint32]Mesh

// Mesh implements Backend.
func (s MeshSet) Mesh(geomID uint32) (Mesh, bool) {
	m, ok := s[geomID]
	return m, ok
}
