package bvhmb

import "github.com/lp249839965/embree/pkg/core"

// PrimInfo aggregates the statistics the split selector and leaf-cost
// calculation need about a Set: how many primitives it holds, the union
// of their linear bounds, and the largest per-primitive total
// motion-segment count among them (which governs how fine a temporal
// split can still usefully go, regardless of how coarse the Set's own
// time range has already become from earlier temporal splits).
type PrimInfo struct {
	Size               int
	GeomBounds         core.LBBox
	MaxNumTimeSegments int
}

// NewPrimInfo aggregates a Set's current primitive bounds. It reads each
// PrimRef's Bounds as-is rather than re-querying geometry, relying on the
// invariant that a PrimRef's Bounds are always kept in sync with its
// owning Set's TimeRange by Recalculator.Recompute.
//
// MaxNumTimeSegments is aggregated from TotalTimeSegments, not
// ActiveTimeSegments: the latter shrinks below the former after any
// temporal split, and Selector.Find's threshold for even trying a further
// temporal split is scaled against the finest-moving primitive's total
// segment count, not however coarse this particular Set's time range
// already happens to be.
func NewPrimInfo(set Set) PrimInfo {
	prims := set.Prims()
	info := PrimInfo{Size: len(prims), GeomBounds: core.EmptyLBBox()}
	for _, p := range prims {
		info.GeomBounds = info.GeomBounds.Union(p.Bounds)
		if p.TotalTimeSegments > info.MaxNumTimeSegments {
			info.MaxNumTimeSegments = p.TotalTimeSegments
		}
	}
	return info
}

// HalfArea returns the SAH half-area of the aggregated bounds.
func (p PrimInfo) HalfArea() float64 {
	return p.GeomBounds.HalfArea()
}

// LeafSAH returns the surface-area-heuristic cost of terminating this Set
// as a single leaf, rounding its primitive count up to a multiple of the
// leaf's block size the way a real encoding would pack it.
func (p PrimInfo) LeafSAH(logBlockSize uint) float64 {
	blockSize := 1 << logBlockSize
	blocks := (p.Size + blockSize - 1) / blockSize
	return float64(blocks*blockSize) * p.HalfArea()
}
