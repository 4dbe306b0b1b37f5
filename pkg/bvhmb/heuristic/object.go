package heuristic

import (
	"math"

	"github.com/lp249839965/embree/pkg/bvhmb"
	"github.com/lp249839965/embree/pkg/core"
)

// NumObjectBins is the number of centroid bins swept per axis. Matches the
// granularity real production binned-SAH builders use; more bins trade
// build time for a tighter split.
const NumObjectBins = 16

// ObjectBinning finds spatial object splits by binning primitive
// centroids along each axis and sweeping prefix sums of count and bounds
// to find the minimum-cost partition, the standard binned-SAH algorithm
// (grounded on the brute-force centroid-threshold scan other_examples'
// path tracer uses, generalized from a fixed 128-point scan to proper
// running bins and to linear, not just static, bounds).
type ObjectBinning struct {
	TravCost float64
	IntCost  float64
}

// NewObjectBinning constructs an ObjectBinning with the given SAH cost
// coefficients.
func NewObjectBinning(travCost, intCost float64) *ObjectBinning {
	return &ObjectBinning{TravCost: travCost, IntCost: intCost}
}

type objectBin struct {
	count  int
	bounds core.LBBox
}

func emptyBin() objectBin {
	return objectBin{bounds: core.EmptyLBBox()}
}

// Find implements bvhmb.ObjectSplitHeuristic.
func (h *ObjectBinning) Find(set bvhmb.Set, pinfo bvhmb.PrimInfo, logBlockSize uint) bvhmb.Split {
	prims := set.Prims()
	if len(prims) < 2 {
		return bvhmb.Split{Kind: bvhmb.SplitInvalid}
	}

	centroidBounds := core.EmptyAABB()
	for _, p := range prims {
		centroidBounds = centroidBounds.Union(core.NewAABBFromPoints(p.Centroid()))
	}

	best := bvhmb.Split{Kind: bvhmb.SplitInvalid, SAH: math.Inf(1)}

	for axis := 0; axis < 3; axis++ {
		lo, hi := axisComponent(centroidBounds.Min, axis), axisComponent(centroidBounds.Max, axis)
		extent := hi - lo
		if extent <= 0 {
			continue
		}
		scale := float64(NumObjectBins) / extent

		var bins [NumObjectBins]objectBin
		for i := range bins {
			bins[i] = emptyBin()
		}
		binOf := func(p bvhmb.PrimRef) int {
			b := int((axisComponent(p.Centroid(), axis) - lo) * scale)
			if b < 0 {
				b = 0
			}
			if b >= NumObjectBins {
				b = NumObjectBins - 1
			}
			return b
		}
		for _, p := range prims {
			b := binOf(p)
			bins[b].count++
			bins[b].bounds = bins[b].bounds.Union(p.Bounds)
		}

		// Prefix sums from the left and suffix sums from the right let us
		// evaluate every one of the NumObjectBins-1 internal split
		// positions in a single pass each.
		var leftCount [NumObjectBins]int
		var leftBounds [NumObjectBins]core.LBBox
		acc, accBounds := 0, core.EmptyLBBox()
		for i := 0; i < NumObjectBins; i++ {
			acc += bins[i].count
			accBounds = accBounds.Union(bins[i].bounds)
			leftCount[i] = acc
			leftBounds[i] = accBounds
		}

		var rightCount [NumObjectBins]int
		var rightBounds [NumObjectBins]core.LBBox
		acc, accBounds = 0, core.EmptyLBBox()
		for i := NumObjectBins - 1; i >= 0; i-- {
			acc += bins[i].count
			accBounds = accBounds.Union(bins[i].bounds)
			rightCount[i] = acc
			rightBounds[i] = accBounds
		}

		for split := 1; split < NumObjectBins; split++ {
			lc, rc := leftCount[split-1], rightCount[split]
			if lc == 0 || rc == 0 {
				continue
			}
			cost := h.TravCost + h.IntCost*(float64(lc)*leftBounds[split-1].HalfArea()+
				float64(rc)*rightBounds[split].HalfArea())
			if cost < best.SAH {
				pos := lo + float64(split)/scale
				best = bvhmb.Split{Kind: bvhmb.SplitObject, Dim: axis, Pos: pos, SAH: cost}
			}
		}
	}

	return best
}

// Partition implements bvhmb.ObjectSplitHeuristic.
func (h *ObjectBinning) Partition(split bvhmb.Split, set bvhmb.Set, pinfo bvhmb.PrimInfo) (bvhmb.Set, bvhmb.PrimInfo, bvhmb.Set, bvhmb.PrimInfo) {
	prims := set.Prims()
	i, j := 0, len(prims)-1
	for i <= j {
		for i <= j && axisComponent(prims[i].Centroid(), split.Dim) < split.Pos {
			i++
		}
		for i <= j && axisComponent(prims[j].Centroid(), split.Dim) >= split.Pos {
			j--
		}
		if i < j {
			prims[i], prims[j] = prims[j], prims[i]
			i++
			j--
		}
	}

	mid := i
	if mid == 0 || mid == len(prims) {
		mid = len(prims) / 2
	}

	begin, end := set.ObjectRange.Begin, set.ObjectRange.End
	lset := bvhmb.Set{Vec: set.Vec, ObjectRange: core.IntRange{Begin: begin, End: begin + mid}, TimeRange: set.TimeRange}
	rset := bvhmb.Set{Vec: set.Vec, ObjectRange: core.IntRange{Begin: begin + mid, End: end}, TimeRange: set.TimeRange}
	return lset, bvhmb.NewPrimInfo(lset), rset, bvhmb.NewPrimInfo(rset)
}

func axisComponent(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
