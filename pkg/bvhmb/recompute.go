package bvhmb

import (
	"fmt"

	"github.com/lp249839965/embree/pkg/core"
	"github.com/lp249839965/embree/pkg/geom"
)

// Recalculator recomputes a PrimRef's bounds and active-segment count for
// a new time range by querying the geometry back-end directly, rather
// than interpolating the existing (coarser-range) bounds (C3). This is
// what makes a temporal split's two halves exact instead of conservative
// approximations of an already-conservative approximation.
type Recalculator struct {
	Backend geom.Backend
}

// NewRecalculator constructs a Recalculator over the given geometry
// back-end.
func NewRecalculator(backend geom.Backend) *Recalculator {
	return &Recalculator{Backend: backend}
}

// Recompute returns a new PrimRef for p valid over timeRange, plus the
// integer motion-segment range that corresponds to it in p's mesh.
func (r *Recalculator) Recompute(p PrimRef, timeRange core.TimeRange) (PrimRef, core.IntRange, error) {
	mesh, ok := r.Backend.Mesh(p.GeomID)
	if !ok {
		return PrimRef{}, core.IntRange{}, fmt.Errorf("bvhmb: no mesh registered for geomID %d", p.GeomID)
	}

	segRange := core.TimeSegmentRange(timeRange, mesh.NumTimeSegments())
	bounds := mesh.LinearBounds(int(p.PrimID), timeRange)

	next := PrimRef{
		GeomID:             p.GeomID,
		PrimID:             p.PrimID,
		Bounds:             bounds,
		ActiveTimeSegments: segRange.Size(),
		TotalTimeSegments:  p.TotalTimeSegments,
	}
	return next, segRange, nil
}

// RecomputeSet rebuilds every PrimRef in dst (which must be the same
// length as src) against timeRange, for use after a temporal split has
// allocated a fresh array for one half of the division.
func (r *Recalculator) RecomputeSet(dst, src PrimArray, timeRange core.TimeRange) error {
	for i, p := range src {
		next, _, err := r.Recompute(p, timeRange)
		if err != nil {
			return err
		}
		dst[i] = next
	}
	return nil
}
