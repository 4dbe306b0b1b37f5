package heuristic

import (
	"testing"

	"github.com/lp249839965/embree/pkg/bvhmb"
	"github.com/lp249839965/embree/pkg/core"
)

func boxRef(primID uint32, x float64) bvhmb.PrimRef {
	box := core.NewAABBFromPoints(core.NewVec3(x, 0, 0), core.NewVec3(x+0.5, 0.5, 0.5))
	return bvhmb.PrimRef{
		PrimID:             primID,
		Bounds:             core.LBBox{Bounds0: box, Bounds1: box},
		ActiveTimeSegments: 1,
		TotalTimeSegments:  1,
	}
}

func spreadOutSet(n int) bvhmb.Set {
	prims := make(bvhmb.PrimArray, n)
	for i := range prims {
		prims[i] = boxRef(uint32(i), float64(i)*10)
	}
	return bvhmb.NewRootSet(prims)
}

func TestObjectBinning_FindsASplitAlongTheSpreadAxis(t *testing.T) {
	h := NewObjectBinning(1, 1)
	set := spreadOutSet(8)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := h.Find(set, pinfo, 0)

	if !split.Valid() {
		t.Fatalf("expected a valid split for widely spread primitives")
	}
	if split.Dim != 0 {
		t.Errorf("expected split along axis 0 (the only spread axis), got %d", split.Dim)
	}
}

func TestObjectBinning_FindReturnsInvalidForFewerThanTwoPrimitives(t *testing.T) {
	h := NewObjectBinning(1, 1)
	set := spreadOutSet(1)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := h.Find(set, pinfo, 0)
	if split.Valid() {
		t.Fatalf("expected an invalid split for a single primitive")
	}
}

func TestObjectBinning_PartitionDividesSetIntoTwoNonEmptyHalves(t *testing.T) {
	h := NewObjectBinning(1, 1)
	set := spreadOutSet(8)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := h.Find(set, pinfo, 0)
	if !split.Valid() {
		t.Fatalf("expected a valid split")
	}

	lset, linfo, rset, rinfo := h.Partition(split, set, pinfo)
	if linfo.Size == 0 || rinfo.Size == 0 {
		t.Fatalf("expected both halves non-empty, got %d and %d", linfo.Size, rinfo.Size)
	}
	if linfo.Size+rinfo.Size != pinfo.Size {
		t.Fatalf("partition dropped primitives: %d + %d != %d", linfo.Size, rinfo.Size, pinfo.Size)
	}
	if lset.Vec != set.Vec || rset.Vec != set.Vec {
		t.Errorf("expected an object split to share the parent's vector in place")
	}
}

func TestObjectBinning_PartitionFallsBackToMidpointWhenDegenerate(t *testing.T) {
	h := NewObjectBinning(1, 1)
	// Every primitive sits at the same centroid: no axis has any extent, so
	// Find returns invalid, but Partition must still make progress if
	// called directly with an arbitrary split (exercising its own
	// degenerate-partition guard rather than relying on Find).
	prims := make(bvhmb.PrimArray, 4)
	for i := range prims {
		prims[i] = boxRef(uint32(i), 0)
	}
	set := bvhmb.NewRootSet(prims)
	defer set.Vec.Release()
	defer set.Vec.Release()

	pinfo := bvhmb.NewPrimInfo(set)
	split := bvhmb.Split{Kind: bvhmb.SplitObject, Dim: 0, Pos: 0}

	_, linfo, _, rinfo := h.Partition(split, set, pinfo)
	if linfo.Size == 0 || rinfo.Size == 0 {
		t.Fatalf("expected the degenerate-partition guard to still produce two non-empty halves, got %d and %d", linfo.Size, rinfo.Size)
	}
}
