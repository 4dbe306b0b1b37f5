package core

import "math"

// TimeRange is a sub-interval of the shutter interval [0,1], always
// expressed in the same absolute, normalized coordinate space as the
// root build's time range.
type TimeRange struct {
	Start, End float64
}

// UnitTimeRange is the full shutter interval.
func UnitTimeRange() TimeRange {
	return TimeRange{Start: 0, End: 1}
}

// Size returns the width of the interval.
func (t TimeRange) Size() float64 {
	return t.End - t.Start
}

// Center returns the interval's midpoint.
func (t TimeRange) Center() float64 {
	return 0.5 * (t.Start + t.End)
}

// IntRange is a half-open range of integer time-segment indices, [Begin,End).
type IntRange struct {
	Begin, End int
}

// Size returns the number of segments covered; always >= 1 for any range
// produced by TimeSegmentRange.
func (r IntRange) Size() int {
	return r.End - r.Begin
}

// Center returns the integer midpoint of the range, rounding toward Begin.
func (r IntRange) Center() int {
	return (r.Begin + r.End) / 2
}

// TimeSegmentRange maps a normalized time interval onto the integer
// time-segment indices of a mesh with the given total segment count.
// A mesh with totalTimeSegments segments represents motion by linearly
// interpolating between totalTimeSegments+1 keyframes; segment i covers
// [i/total, (i+1)/total]. The returned range always has Size() >= 1, even
// for a degenerate (zero-width) input interval.
func TimeSegmentRange(tr TimeRange, total int) IntRange {
	if total <= 0 {
		total = 1
	}
	const eps = 1e-5

	lower := tr.Start * float64(total)
	upper := tr.End * float64(total)

	begin := int(math.Floor(lower + eps))
	end := int(math.Ceil(upper - eps))

	if begin < 0 {
		begin = 0
	}
	if end > total {
		end = total
	}
	if end <= begin {
		end = begin + 1
	}
	if begin >= total {
		begin = total - 1
		end = total
	}
	return IntRange{Begin: begin, End: end}
}

// LBBox is a linear (motion-interpolated) bounding box: conservative
// axis-aligned bounds at the start and end of a time range. The box at any
// intermediate time is bounded by linearly interpolating the two corners,
// never by recomputing geometry.
type LBBox struct {
	Bounds0 AABB // bounds at the range's start time
	Bounds1 AABB // bounds at the range's end time
}

// Bounds returns a single static AABB conservatively enclosing the whole
// linear motion, used wherever a non-time-varying bound is needed.
func (l LBBox) Bounds() AABB {
	return l.Bounds0.Union(l.Bounds1)
}

// Union returns the linear bounds enclosing both l and other, endpoint by
// endpoint.
func (l LBBox) Union(other LBBox) LBBox {
	return LBBox{
		Bounds0: l.Bounds0.Union(other.Bounds0),
		Bounds1: l.Bounds1.Union(other.Bounds1),
	}
}

// HalfArea approximates the half surface area of the linear bounds by
// averaging the half-area at the start and end of the range. This is the
// same approximation the builder's "expected" SAH cost terms use elsewhere
// (see ExpectedApproxHalfArea) rather than integrating area over time.
func (l LBBox) HalfArea() float64 {
	return 0.5 * (l.Bounds0.HalfArea() + l.Bounds1.HalfArea())
}

// ExpectedApproxHalfArea is the child-selection score used by the general
// recursive builder: an approximation of the half-area swept by a linearly
// moving bounding box, cheap enough to recompute for every candidate child
// on every split iteration.
func ExpectedApproxHalfArea(bounds LBBox) float64 {
	return bounds.HalfArea()
}

// EmptyLBBox returns the identity element for LBBox.Union.
func EmptyLBBox() LBBox {
	return LBBox{Bounds0: EmptyAABB(), Bounds1: EmptyAABB()}
}
