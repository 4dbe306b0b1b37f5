package heuristic

import (
	"context"
	"math"

	"github.com/lp249839965/embree/pkg/bvhmb"
	"github.com/lp249839965/embree/pkg/core"
)

// NumTemporalBins is the number of candidate split times evaluated between
// the Set's time range endpoints. Two bins (a single candidate: the
// midpoint) is the minimum useful value and matches the original builder's
// own two-bucket temporal scan.
const NumTemporalBins = 2

// TemporalBinning finds and performs temporal splits: dividing a Set's
// shutter interval into two and recomputing every primitive's bounds over
// each half via a Recalculator, which allocates the two new primitive
// arrays the split needs.
type TemporalBinning struct {
	TravCost     float64
	IntCost      float64
	Recalculator *bvhmb.Recalculator

	// Memory, if set, bounds how many bytes of primitive arrays this
	// heuristic may have reserved at once across every in-flight
	// temporal split, blocking Partition until older splits free theirs.
	Memory *bvhmb.MemoryMonitor
}

// NewTemporalBinning constructs a TemporalBinning over the given
// recalculator and SAH cost coefficients.
func NewTemporalBinning(travCost, intCost float64, recalculator *bvhmb.Recalculator) *TemporalBinning {
	return &TemporalBinning{TravCost: travCost, IntCost: intCost, Recalculator: recalculator}
}

// Find implements bvhmb.TemporalSplitHeuristic. It evaluates NumTemporalBins-1
// candidate split times and scores each by recomputing linear bounds for
// both halves — more expensive per candidate than the object heuristic's
// bin sweep, which is why Selector only calls this when Find's own
// precondition (time range still coarser than the finest-moving
// primitive) holds.
func (h *TemporalBinning) Find(set bvhmb.Set, pinfo bvhmb.PrimInfo, logBlockSize uint) bvhmb.Split {
	best := bvhmb.Split{Kind: bvhmb.SplitInvalid}
	bestCost := math.Inf(1)

	prims := set.Prims()
	for bin := 1; bin < NumTemporalBins; bin++ {
		frac := float64(bin) / float64(NumTemporalBins)
		splitTime := set.TimeRange.Start + frac*set.TimeRange.Size()

		leftRange := core.TimeRange{Start: set.TimeRange.Start, End: splitTime}
		rightRange := core.TimeRange{Start: splitTime, End: set.TimeRange.End}

		leftBounds, rightBounds := core.EmptyLBBox(), core.EmptyLBBox()
		for _, p := range prims {
			lb, _, err := h.Recalculator.Recompute(p, leftRange)
			if err != nil {
				continue
			}
			rb, _, err := h.Recalculator.Recompute(p, rightRange)
			if err != nil {
				continue
			}
			leftBounds = leftBounds.Union(lb.Bounds)
			rightBounds = rightBounds.Union(rb.Bounds)
		}

		cost := h.TravCost + h.IntCost*float64(len(prims))*(leftBounds.HalfArea()+rightBounds.HalfArea())
		if cost < bestCost {
			bestCost = cost
			best = bvhmb.Split{Kind: bvhmb.SplitTemporal, SplitTime: splitTime, SAH: cost}
		}
	}

	return best
}

// Partition implements bvhmb.TemporalSplitHeuristic: allocates fresh
// primitive arrays for each half of the shutter interval and recomputes
// every primitive's bounds against its half via the Recalculator. When a
// MemoryMonitor is set, it reserves the new arrays' estimated footprint
// before allocating and ties its release to each array's own
// SharedPrimVector reaching refcount zero, so the reservation outlives
// this call for exactly as long as the array itself does.
func (h *TemporalBinning) Partition(ctx context.Context, split bvhmb.Split, set bvhmb.Set, pinfo bvhmb.PrimInfo) (bvhmb.Set, bvhmb.PrimInfo, bvhmb.Set, bvhmb.PrimInfo, error) {
	prims := set.Prims()
	bytes := bvhmb.PrimRefBytes(len(prims))

	if err := h.Memory.Reserve(ctx, 2*bytes); err != nil {
		return bvhmb.Set{}, bvhmb.PrimInfo{}, bvhmb.Set{}, bvhmb.PrimInfo{}, err
	}

	leftRange := core.TimeRange{Start: set.TimeRange.Start, End: split.SplitTime}
	rightRange := core.TimeRange{Start: split.SplitTime, End: set.TimeRange.End}

	leftArr := make(bvhmb.PrimArray, len(prims))
	rightArr := make(bvhmb.PrimArray, len(prims))
	copy(leftArr, prims)
	copy(rightArr, prims)

	if err := h.Recalculator.RecomputeSet(leftArr, prims, leftRange); err != nil {
		h.Memory.Release(2 * bytes)
		return bvhmb.Set{}, bvhmb.PrimInfo{}, bvhmb.Set{}, bvhmb.PrimInfo{}, err
	}
	if err := h.Recalculator.RecomputeSet(rightArr, prims, rightRange); err != nil {
		h.Memory.Release(2 * bytes)
		return bvhmb.Set{}, bvhmb.PrimInfo{}, bvhmb.Set{}, bvhmb.PrimInfo{}, err
	}

	lset := bvhmb.Set{
		Vec:         bvhmb.NewSharedPrimVectorWithFree(leftArr, 1, func() { h.Memory.Release(bytes) }),
		ObjectRange: core.IntRange{Begin: 0, End: len(leftArr)},
		TimeRange:   leftRange,
	}
	rset := bvhmb.Set{
		Vec:         bvhmb.NewSharedPrimVectorWithFree(rightArr, 1, func() { h.Memory.Release(bytes) }),
		ObjectRange: core.IntRange{Begin: 0, End: len(rightArr)},
		TimeRange:   rightRange,
	}
	return lset, bvhmb.NewPrimInfo(lset), rset, bvhmb.NewPrimInfo(rset), nil
}
