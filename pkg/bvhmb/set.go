package bvhmb

import "github.com/lp249839965/embree/pkg/core"

// Set is a view into a SharedPrimVector (SetMB in the spec): which slice
// of the backing array this Build Record owns, and the time interval its
// bounds are currently valid for.
type Set struct {
	Vec         *SharedPrimVector
	ObjectRange core.IntRange
	TimeRange   core.TimeRange
}

// NewRootSet builds the Set for the initial call into Build: the whole of
// prims, over the full shutter interval.
func NewRootSet(prims PrimArray) Set {
	vec := NewSharedPrimVector(prims, 2)
	return Set{
		Vec:         vec,
		ObjectRange: core.IntRange{Begin: 0, End: len(prims)},
		TimeRange:   core.UnitTimeRange(),
	}
}

// Prims returns this Set's slice of the backing array.
func (s Set) Prims() PrimArray {
	return s.Vec.Prims[s.ObjectRange.Begin:s.ObjectRange.End]
}

// Size returns the number of primitives this Set covers.
func (s Set) Size() int {
	return s.ObjectRange.Size()
}
