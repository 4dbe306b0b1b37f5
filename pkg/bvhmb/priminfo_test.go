package bvhmb

import "testing"

func TestNewPrimInfo_AggregatesBoundsAndSegments(t *testing.T) {
	prims := PrimArray{mkRef(0, 0, 0), mkRef(0, 1, 5)}
	prims[1].TotalTimeSegments = 3

	set := NewRootSet(prims)
	defer set.Vec.Release()
	defer set.Vec.Release()

	info := NewPrimInfo(set)
	if info.Size != 2 {
		t.Fatalf("Size = %d, want 2", info.Size)
	}
	if info.MaxNumTimeSegments != 3 {
		t.Fatalf("MaxNumTimeSegments = %d, want 3", info.MaxNumTimeSegments)
	}
	if info.GeomBounds.Bounds0.Max.X < 6 {
		t.Errorf("expected union to cover both primitives, got bounds %+v", info.GeomBounds)
	}
}

func TestPrimInfo_LeafSAHQuantizesToBlockSize(t *testing.T) {
	prims := PrimArray{mkRef(0, 0, 0), mkRef(0, 1, 1), mkRef(0, 2, 2)}
	set := NewRootSet(prims)
	defer set.Vec.Release()
	defer set.Vec.Release()

	info := NewPrimInfo(set)

	unblocked := info.LeafSAH(0)
	blocked := info.LeafSAH(2) // block size 4

	if blocked <= unblocked {
		t.Fatalf("expected rounding up to a block of 4 to raise cost: unblocked=%v blocked=%v", unblocked, blocked)
	}
}
