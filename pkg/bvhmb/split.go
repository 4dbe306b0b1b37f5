package bvhmb

import (
	"context"
	"math"
	"sort"

	"github.com/lp249839965/embree/pkg/core"
)

func intRange(begin, end int) core.IntRange {
	return core.IntRange{Begin: begin, End: end}
}

// SplitKind tags which strategy a Split was produced by.
type SplitKind int

const (
	// SplitInvalid marks a Split for which no candidate was found (SAH
	// cost of +Inf). A heuristic's own Find returns one when it has no
	// candidate, and Selector.Find passes it on when neither heuristic
	// produced a valid split.
	SplitInvalid SplitKind = iota
	// SplitObject partitions primitives in place along one axis without
	// touching the backing array.
	SplitObject
	// SplitTemporal divides the shutter interval in two, allocating a
	// fresh primitive array for each half.
	SplitTemporal
	// SplitFallback is the last-resort midpoint-by-index split used when
	// neither object nor temporal splits can make progress.
	SplitFallback
)

// Split describes the chosen division of a Build Record into two
// children: which strategy produced it, the cost it promises, and
// whatever parameters that strategy needs to actually perform the split.
type Split struct {
	Kind SplitKind

	// Dim and Pos locate an object split: primitives whose centroid along
	// axis Dim falls left of Pos go to the left child.
	Dim int
	Pos float64

	// SplitTime locates a temporal split: a normalized time in (0,1)
	// dividing the owning Set's TimeRange into two.
	SplitTime float64

	SAH float64
}

// SplitSAH returns the cost Selector.Find should compare against; an
// invalid split costs +Inf so it never wins a comparison.
func (s Split) SplitSAH() float64 {
	if s.Kind == SplitInvalid {
		return math.Inf(1)
	}
	return s.SAH
}

// Valid reports whether this Split can actually be carried out.
func (s Split) Valid() bool {
	return s.Kind != SplitInvalid
}

// ObjectSplitHeuristic finds and performs spatial partitions of a Set's
// primitive array along one axis, in place.
type ObjectSplitHeuristic interface {
	Find(set Set, pinfo PrimInfo, logBlockSize uint) Split
	Partition(split Split, set Set, pinfo PrimInfo) (lset Set, linfo PrimInfo, rset Set, rinfo PrimInfo)
}

// TemporalSplitHeuristic finds and performs divisions of a Set's shutter
// interval, allocating fresh primitive arrays for each half.
type TemporalSplitHeuristic interface {
	Find(set Set, pinfo PrimInfo, logBlockSize uint) Split
	Partition(ctx context.Context, split Split, set Set, pinfo PrimInfo) (lset Set, linfo PrimInfo, rset Set, rinfo PrimInfo, err error)
}

// Selector composes an object- and a temporal-split heuristic and chooses
// between them (and a fallback) purely by SAH cost (C4).
type Selector struct {
	Object       ObjectSplitHeuristic
	Temporal     TemporalSplitHeuristic
	LogBlockSize uint

	// SingleLeafTimeSegment, when true, lets FindFallback prefer a
	// temporal split over the midpoint split whenever any primitive in
	// the record still spans more than one motion segment, so a leaf
	// never has to represent more than one segment per primitive.
	SingleLeafTimeSegment bool
}

// Find chooses the cheaper of an object split and (when the record's time
// range is coarse relative to its finest-moving primitive) a temporal
// split. Object splits are tried unconditionally since they're cheap to
// evaluate; temporal splits are only considered once a further time
// subdivision could plausibly still resolve something.
func (s *Selector) Find(set Set, pinfo PrimInfo) Split {
	best := s.Object.Find(set, pinfo, s.LogBlockSize)

	if pinfo.MaxNumTimeSegments > 0 &&
		set.TimeRange.Size() > 1.01/float64(pinfo.MaxNumTimeSegments) {
		if temporal := s.Temporal.Find(set, pinfo, s.LogBlockSize); temporal.SplitSAH() < best.SplitSAH() {
			best = temporal
		}
	}
	return best
}

// FindFallback produces a split guaranteed to make progress when Find
// returned nothing usable: a temporal split on the first primitive still
// spanning multiple segments (if SingleLeafTimeSegment requires one), or
// otherwise a midpoint-by-index split.
//
// Checking p.ActiveTimeSegments > 1 here is equivalent to recomputing
// core.TimeSegmentRange(rec.Set.TimeRange, p.TotalTimeSegments).Size() > 1:
// every Recalculator.Recompute call that produces a PrimRef sets
// ActiveTimeSegments from exactly that range, and splits that don't touch
// TimeRange (object, fallback) never touch the PrimRefs they didn't
// recompute either, so the field stays valid for whatever TimeRange the
// owning Set currently has.
func (s *Selector) FindFallback(rec BuildRecord) Split {
	if s.SingleLeafTimeSegment {
		for _, p := range rec.Set.Prims() {
			if p.ActiveTimeSegments > 1 {
				// The arithmetic midpoint of rec.Set.TimeRange, not the center
				// of a single time segment within it: equivalent for
				// power-of-two segment counts (each bisection lands exactly on
				// a segment boundary, e.g. S4's 0.25/0.5/0.75), but for other
				// counts this can land inside a segment rather than on its
				// boundary. Acceptable here since FindFallback only needs to
				// make guaranteed progress, not pick the best boundary.
				center := (rec.Set.TimeRange.Start + rec.Set.TimeRange.End) / 2
				return Split{Kind: SplitTemporal, SplitTime: center, SAH: 1.0}
			}
		}
	}
	return Split{Kind: SplitFallback, SAH: 1.0}
}

// Partition carries out rec.Split, writing the two children into lrec and
// rrec. Depth is copied in by the caller; Partition only fills Set/Info.
func (s *Selector) Partition(ctx context.Context, rec BuildRecord, lrec, rrec *BuildRecord) error {
	switch rec.Split.Kind {
	case SplitFallback:
		deterministicOrder(rec.Set)
		lset, linfo, rset, rinfo := splitFallback(rec.Set)
		lrec.Set, lrec.Info = lset, linfo
		rrec.Set, rrec.Info = rset, rinfo
		return nil
	case SplitTemporal:
		lset, linfo, rset, rinfo, err := s.Temporal.Partition(ctx, rec.Split, rec.Set, rec.Info)
		if err != nil {
			return err
		}
		lrec.Set, lrec.Info = lset, linfo
		rrec.Set, rrec.Info = rset, rinfo
		return nil
	default:
		lset, linfo, rset, rinfo := s.Object.Partition(rec.Split, rec.Set, rec.Info)
		lrec.Set, lrec.Info = lset, linfo
		rrec.Set, rrec.Info = rset, rinfo
		return nil
	}
}

// deterministicOrder sorts a Set's slice of the backing array by PrimRef's
// total order, in place, so splitFallback's midpoint cut is reproducible
// regardless of how earlier splits left the array ordered.
func deterministicOrder(set Set) {
	prims := set.Prims()
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].Less(prims[j])
	})
}

// splitFallback cuts a Set in half by index, sharing its SharedPrimVector
// between both halves. It never fails and never reorders: callers sort
// first via deterministicOrder if reproducibility across runs matters.
func splitFallback(set Set) (Set, PrimInfo, Set, PrimInfo) {
	begin, end := set.ObjectRange.Begin, set.ObjectRange.End
	center := (begin + end) / 2

	lset := Set{Vec: set.Vec, ObjectRange: intRange(begin, center), TimeRange: set.TimeRange}
	rset := Set{Vec: set.Vec, ObjectRange: intRange(center, end), TimeRange: set.TimeRange}
	return lset, NewPrimInfo(lset), rset, NewPrimInfo(rset)
}
