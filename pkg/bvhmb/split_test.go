package bvhmb

import (
	"math"
	"testing"
)

func TestSplit_SplitSAHInvalidIsInfinite(t *testing.T) {
	s := Split{Kind: SplitInvalid}
	if !math.IsInf(s.SplitSAH(), 1) {
		t.Fatalf("SplitSAH() on an invalid split = %v, want +Inf", s.SplitSAH())
	}
	if s.Valid() {
		t.Fatalf("Valid() on an invalid split = true, want false")
	}
}

func TestSplit_ValidReportsChosenCost(t *testing.T) {
	s := Split{Kind: SplitObject, SAH: 4.5}
	if got := s.SplitSAH(); got != 4.5 {
		t.Fatalf("SplitSAH() = %v, want 4.5", got)
	}
	if !s.Valid() {
		t.Fatalf("Valid() on an object split = false, want true")
	}
}

func TestSplitFallback_DividesSetInHalfSharingVector(t *testing.T) {
	prims := flatPrims(5)
	set := NewRootSet(prims)
	defer set.Vec.Release()
	defer set.Vec.Release()

	lset, linfo, rset, rinfo := splitFallback(set)

	if lset.Vec != set.Vec || rset.Vec != set.Vec {
		t.Fatalf("expected both halves to share the parent's vector")
	}
	if linfo.Size+rinfo.Size != len(prims) {
		t.Fatalf("split sizes %d + %d != %d", linfo.Size, rinfo.Size, len(prims))
	}
	if lset.ObjectRange.End != rset.ObjectRange.Begin {
		t.Fatalf("expected contiguous halves, got %+v / %+v", lset.ObjectRange, rset.ObjectRange)
	}
}

func TestDeterministicOrder_SortsByPrimRefLess(t *testing.T) {
	prims := PrimArray{mkRef(0, 2, 2), mkRef(0, 0, 0), mkRef(0, 1, 1)}
	set := NewRootSet(prims)
	defer set.Vec.Release()
	defer set.Vec.Release()

	deterministicOrder(set)

	got := set.Prims()
	for i := 0; i < len(got)-1; i++ {
		if !got[i].Less(got[i+1]) {
			t.Fatalf("expected sorted order, got %+v", got)
		}
	}
}
