package bvhmb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatPrims(n int) PrimArray {
	prims := make(PrimArray, n)
	for i := range prims {
		prims[i] = mkRef(0, uint32(i), float64(i))
	}
	return prims
}

func TestNewLocalChildList_AcquiresOneMoreHold(t *testing.T) {
	set := NewRootSet(flatPrims(4))
	rec := NewBuildRecord(0, set)

	require.Equal(t, 2, set.Vec.RefCount())

	list := NewLocalChildList(rec)
	require.Equal(t, 3, set.Vec.RefCount())

	list.Close()
	require.Equal(t, 2, set.Vec.RefCount())
}

func TestLocalChildList_SplitSharingSameVectorReacquires(t *testing.T) {
	set := NewRootSet(flatPrims(4))
	rec := NewBuildRecord(0, set)
	list := NewLocalChildList(rec)
	defer list.Close()

	lset, rset := splitFallbackForTest(set)
	lrec, rrec := NewBuildRecord(1, lset), NewBuildRecord(1, rset)

	before := set.Vec.RefCount()
	list.Split(0, lrec, rrec)
	after := set.Vec.RefCount()

	// Both new children share the same vector pointer, so the net effect
	// of Split replacing one held slot with two should be +1.
	require.Equal(t, before+1, after)
	require.Equal(t, 2, list.Len())
}

func TestLocalChildList_SplitWithFreshVectorDoesNotDoubleAcquireShared(t *testing.T) {
	set := NewRootSet(flatPrims(4))
	rec := NewBuildRecord(0, set)
	list := NewLocalChildList(rec)

	// Simulate a temporal split: the right child keeps the old vector, the
	// left gets a freshly allocated one starting at refcount 1.
	freshVec := NewSharedPrimVector(flatPrims(2), 1)
	lset := Set{Vec: freshVec, ObjectRange: intRange(0, 2), TimeRange: set.TimeRange}
	rset := Set{Vec: set.Vec, ObjectRange: intRange(2, 4), TimeRange: set.TimeRange}
	lrec, rrec := NewBuildRecord(1, lset), NewBuildRecord(1, rset)

	before := set.Vec.RefCount()
	list.Split(0, lrec, rrec)

	require.Equal(t, 1, freshVec.RefCount(), "fresh vector should be untouched by the shared vector's accounting")
	require.Equal(t, before, set.Vec.RefCount(), "shared vector refcount should be unchanged")

	list.Close()
	require.True(t, freshVec.Freed(), "expected fresh vector freed after Close")
}

// splitFallbackForTest mirrors splitFallback's midpoint-by-index cut but
// returns only the two Sets, for tests that only care about the two
// children sharing set's vector.
func splitFallbackForTest(set Set) (Set, Set) {
	begin, end := set.ObjectRange.Begin, set.ObjectRange.End
	center := (begin + end) / 2
	lset := Set{Vec: set.Vec, ObjectRange: intRange(begin, center), TimeRange: set.TimeRange}
	rset := Set{Vec: set.Vec, ObjectRange: intRange(center, end), TimeRange: set.TimeRange}
	return lset, rset
}
