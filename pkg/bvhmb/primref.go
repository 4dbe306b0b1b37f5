package bvhmb

import "github.com/lp249839965/embree/pkg/core"

// PrimRef is one primitive's entry in a build: which mesh it belongs to,
// its linear bounds over whatever time range the owning Set currently
// covers, and how many of the mesh's motion segments it's active over.
//
// PrimRef is a value type and is copied freely; the only thing shared
// between copies is the backing array they live in, tracked separately by
// SharedPrimVector.
type PrimRef struct {
	GeomID uint32
	PrimID uint32

	// Bounds are this primitive's conservative linear bounds over the
	// owning Set's current time range, kept in sync with that range by
	// Recalculator.Recompute whenever the range changes.
	Bounds core.LBBox

	// ActiveTimeSegments is how many of the mesh's motion segments this
	// reference spans at the owning Set's current time range. Always >= 1.
	ActiveTimeSegments int

	// TotalTimeSegments is the mesh's total motion-segment count,
	// independent of any Set's time range. Always >= 1.
	TotalTimeSegments int
}

// Centroid returns the center of the primitive's unioned linear bounds,
// used by the object-binning heuristic to bin and partition primitives and
// by Less to break ties — it is not cached since PrimRef is a small value
// type recomputed cheaply from Bounds.
func (p PrimRef) Centroid() core.Vec3 {
	return p.Bounds.Bounds().Center()
}

// Less defines a total, deterministic order over PrimRefs: by geometry,
// then primitive ID, then centroid as a last-resort tiebreaker. It exists
// solely so the fallback split (deterministicOrder) produces the same
// tree for the same input regardless of prior split history or goroutine
// scheduling.
func (p PrimRef) Less(other PrimRef) bool {
	if p.GeomID != other.GeomID {
		return p.GeomID < other.GeomID
	}
	if p.PrimID != other.PrimID {
		return p.PrimID < other.PrimID
	}
	pc, oc := p.Centroid(), other.Centroid()
	if pc.X != oc.X {
		return pc.X < oc.X
	}
	if pc.Y != oc.Y {
		return pc.Y < oc.Y
	}
	return pc.Z < oc.Z
}

// PrimArray is the backing storage a SharedPrimVector wraps.
type PrimArray []PrimRef
