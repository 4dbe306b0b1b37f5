package bvhmb

import "context"

// createLargeLeaf is where every leaf actually gets emitted (C5), whether
// it's reached from a Set too big for a leaf with no SAH split worth
// taking, one near MaxDepth, or one the general recursive builder would
// otherwise have emitted directly — routing every leaf decision through
// here is what lets isSplittable force a temporal split under
// SingleLeafTimeSegment regardless of size. Once it does need to split
// further, it ignores SAH entirely and widens the node purely by repeated
// fallback splits, always on the currently-largest-by-primitive-count
// child, until every child is small enough to terminate or the branching
// factor is reached.
//
// Unlike recurse, createLargeLeaf never forks: it always recurses into its
// own children sequentially on the calling goroutine, reusing the alloc it
// was called with, whatever the depth or size of the region it covers.
func (b *Builder[R]) createLargeLeaf(ctx context.Context, current BuildRecord, alloc *NodeAllocator[R]) (R, error) {
	var zero R

	if current.Depth > b.config.MaxDepth {
		current.Set.Vec.Release()
		return zero, &BuildError{Depth: current.Depth}
	}
	if !isSplittable(b.selector, b.config, current) {
		return b.emitLeaf(current, alloc)
	}

	list := NewLocalChildList(current)
	current.Set.Vec.Release()
	defer list.Close()

	for list.Len() < b.config.BranchingFactor {
		bestIdx := selectLargestSplittable(list, b.selector, b.config)
		if bestIdx < 0 {
			break
		}
		child := list.Get(bestIdx)
		child.Split = b.selector.FindFallback(child)

		var lrec, rrec BuildRecord
		lrec.Depth, rrec.Depth = child.Depth+1, child.Depth+1
		if err := b.selector.Partition(ctx, child, &lrec, &rrec); err != nil {
			return zero, err
		}
		list.Split(bestIdx, lrec, rrec)
	}

	n := list.Len()
	children := make([]R, n)
	for i := 0; i < n; i++ {
		child := list.Get(i)
		child.Set.Vec.Acquire()
		r, err := b.createLargeLeaf(ctx, child, alloc)
		if err != nil {
			return zero, err
		}
		children[i] = r
	}
	return b.callbacks.CreateNode(current.Depth, children, alloc)
}

// isSplittable reports whether rec still needs a fallback split: either it
// holds more primitives than a leaf may, or (when SingleLeafTimeSegment is
// set) some primitive it holds still spans more than one motion segment
// over rec.Set's time range, forcing a temporal split regardless of size.
func isSplittable(sel *Selector, cfg Config, rec BuildRecord) bool {
	if rec.Info.Size > cfg.MaxLeafSize {
		return true
	}
	return sel.FindFallback(rec).Kind == SplitTemporal
}

// selectLargestSplittable picks the live child with the most primitives
// among those isSplittable still reports as needing a split —
// createLargeLeaf has no SAH cost to rank by, so it always attacks the
// biggest remaining pile. Returns -1 once every live child is done.
func selectLargestSplittable(list *LocalChildList, sel *Selector, cfg Config) int {
	best := -1
	bestSize := -1
	for i := 0; i < list.Len(); i++ {
		child := list.Get(i)
		if !isSplittable(sel, cfg, child) {
			continue
		}
		if child.Info.Size > bestSize {
			bestSize = child.Info.Size
			best = i
		}
	}
	return best
}
