package bvhmb

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lp249839965/embree/pkg/core"
)

// Callbacks produces the caller's own tree representation as the builder
// recurses. R is the reduction type (the original implementation's
// ReductionTy template parameter) — typically a node handle or a small
// struct pairing a node pointer with its bounds.
type Callbacks[R any] struct {
	// CreateAlloc produces a fresh node allocator handle (§5/§6's
	// AllocHandle), called whenever recursion enters a subtree without
	// one: the root, and every subtree a parallel fork dispatches. Nil
	// means callers have no use for pooled node allocation; CreateLeaf
	// and CreateNode then always receive a nil alloc.
	CreateAlloc func() *NodeAllocator[R]

	// CreateLeaf turns a terminal Set into an R, given the calling
	// goroutine's current allocator handle.
	CreateLeaf func(set Set, alloc *NodeAllocator[R]) (R, error)

	// CreateNode turns a depth, a slice of already-built children, and
	// the calling goroutine's allocator handle into the R representing
	// their parent. It is called only after every child's subtree has
	// finished, with children in the order they were inserted into the
	// node's LocalChildList.
	CreateNode func(depth int, children []R, alloc *NodeAllocator[R]) (R, error)
}

// ProgressMonitor is invoked once per top-level subtree, at the point its
// primitive count first drops to or below SequentialThreshold (§5, §8's
// progressMonitor callback). Returning an error aborts the build — e.g.
// because a caller-enforced memory budget has been exceeded.
type ProgressMonitor func(primCount int) error

// Builder runs the general recursive motion-blur BVH build (C6) and
// exposes the single public entry point Build (C7).
type Builder[R any] struct {
	config    Config
	selector  *Selector
	callbacks Callbacks[R]
	logger    core.Logger
	memory    *MemoryMonitor
	progress  ProgressMonitor
}

// Option configures optional Builder fields.
type Option[R any] func(*Builder[R])

// WithLogger overrides the builder's core.Logger.
func WithLogger[R any](l core.Logger) Option[R] {
	return func(b *Builder[R]) { b.logger = l }
}

// WithMemoryMonitor attaches a MemoryMonitor that Build reserves the root
// primitive array's estimated size against for the duration of the build.
// Temporal splits do not reserve through it; they reserve through their own
// heuristic's monitor (heuristic.TemporalBinning.Memory), if one is set.
func WithMemoryMonitor[R any](m *MemoryMonitor) Option[R] {
	return func(b *Builder[R]) { b.memory = m }
}

// WithProgressMonitor attaches a ProgressMonitor, reported to once per
// top-level subtree as recursion narrows down to SequentialThreshold.
func WithProgressMonitor[R any](p ProgressMonitor) Option[R] {
	return func(b *Builder[R]) { b.progress = p }
}

// New constructs a Builder. cfg is validated immediately; selector and
// callbacks must be non-nil.
func New[R any](cfg Config, selector *Selector, callbacks Callbacks[R], opts ...Option[R]) (*Builder[R], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if selector == nil {
		return nil, &ConfigError{Field: "selector", Reason: "must not be nil"}
	}
	if callbacks.CreateLeaf == nil || callbacks.CreateNode == nil {
		return nil, &ConfigError{Field: "callbacks", Reason: "CreateLeaf and CreateNode must both be set"}
	}

	b := &Builder[R]{
		config:    cfg,
		selector:  selector,
		callbacks: callbacks,
		logger:    NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build is the public entry point (C7): it wraps prims in the root Set
// (refcount 2, per SharedPrimVector's doc) and recurses. ctx is passed to
// the MemoryMonitor reservations made along the way (the root array's and
// each temporal split's), which return ctx's error once it is canceled;
// the recursion itself does not check ctx, so canceling it does not stop
// subtrees that need no reservation from being built.
func (b *Builder[R]) Build(ctx context.Context, prims PrimArray) (R, error) {
	var zero R
	if len(prims) == 0 {
		return zero, fmt.Errorf("bvhmb: cannot build from an empty primitive array")
	}

	rootBytes := PrimRefBytes(len(prims))
	if err := b.memory.Reserve(ctx, rootBytes); err != nil {
		return zero, err
	}
	defer b.memory.Release(rootBytes)

	rec := NewBuildRecord(0, NewRootSet(prims))
	b.logger.Printf("build starting: %d primitives", len(prims))

	result, err := b.recurse(ctx, rec, nil, true)
	if err != nil {
		return zero, err
	}
	b.logger.Printf("build finished")
	return result, nil
}

// recurse implements the general recursive builder (C6): decide leaf vs.
// split, fill a LocalChildList by always widening the currently-largest
// splittable child, build this node, and recurse into every child —
// sequentially once the subtree is small enough that forking wouldn't pay
// for itself, or concurrently via errgroup otherwise. The decision is
// re-made at every level against that level's own primitive count, so a
// build naturally narrows from parallel to sequential as it descends
// rather than forking only once at the root.
//
// alloc is the caller's node allocator handle, nil if the caller has none
// yet (the root, and every subtree a parallel fork just dispatched);
// recurse creates a fresh one via Callbacks.CreateAlloc in that case and
// reuses it for the rest of this call. toplevel marks a subtree that just
// crossed from a parallel dispatch (or the root) into sequential territory:
// once, at the first call where its primitive count has dropped to or
// below SequentialThreshold, recurse reports progress through
// ProgressMonitor.
func (b *Builder[R]) recurse(ctx context.Context, current BuildRecord, alloc *NodeAllocator[R], toplevel bool) (R, error) {
	var zero R

	if alloc == nil && b.callbacks.CreateAlloc != nil {
		alloc = b.callbacks.CreateAlloc()
	}
	if toplevel && current.Info.Size <= b.config.SequentialThreshold && b.progress != nil {
		if err := b.progress(current.Info.Size); err != nil {
			current.Set.Vec.Release()
			return zero, err
		}
	}

	if current.Depth > b.config.MaxDepth {
		current.Set.Vec.Release()
		return zero, &BuildError{Depth: current.Depth}
	}

	split := b.selector.Find(current.Set, current.Info)

	// split.SplitSAH() already prices in both TravCost and IntCost: both
	// ObjectBinning.Find and TemporalBinning.Find return
	// travCost + intCost·Σ(childArea·childCount), the full cost of treating
	// this node as that split, so it is directly comparable to a leaf's own
	// cost without re-applying either coefficient. LeafSAH itself only
	// rounds primitive count up to a block size, so it still needs scaling
	// by IntCost (a leaf never pays TravCost; it has no children to
	// traverse into) to stay comparable once the cost model is non-unit.
	leafCost := b.config.IntCost * current.Info.LeafSAH(b.config.LogBlockSize)

	mustSplit := current.Info.Size > b.config.MaxLeafSize
	// Within MinLargeLeafLevels of MaxDepth, stop trusting the SAH search
	// to converge in time and hand off to the large-leaf sub-builder, whose
	// pure fallback splitting is guaranteed to reach MaxLeafSize.
	nearMaxDepth := current.Depth+MinLargeLeafLevels >= b.config.MaxDepth
	useLargeLeaf := !split.Valid() || nearMaxDepth ||
		current.Info.Size <= b.config.MinLeafSize ||
		(!mustSplit && split.SplitSAH() >= leafCost)

	if useLargeLeaf {
		// createLargeLeaf decides leaf-vs-split for current itself (it must,
		// to enforce SingleLeafTimeSegment through the fallback split), so
		// every leaf emission is routed through it rather than emitLeaf here.
		// It always reuses this call's own alloc and recurses purely
		// sequentially, matching the original's fixed (non-forking) large-leaf
		// recursion.
		return b.createLargeLeaf(ctx, current, alloc)
	}
	current.Split = split

	list := NewLocalChildList(current)
	current.Set.Vec.Release()
	defer list.Close()

	for list.Len() < b.config.BranchingFactor {
		bestIdx := selectLargestByArea(list, b.config.MinLeafSize)
		if bestIdx < 0 {
			break
		}
		child := list.Get(bestIdx)
		if !child.Split.Valid() {
			break
		}

		var lrec, rrec BuildRecord
		lrec.Depth, rrec.Depth = child.Depth+1, child.Depth+1
		if err := b.selector.Partition(ctx, child, &lrec, &rrec); err != nil {
			return zero, err
		}
		lrec.Split = b.selector.Find(lrec.Set, lrec.Info)
		rrec.Split = b.selector.Find(rrec.Set, rrec.Info)

		list.Split(bestIdx, lrec, rrec)
	}

	return b.buildNode(ctx, current, list, alloc)
}

// buildNode recurses into every live child of list and reduces the
// results via b.callbacks.CreateNode.
func (b *Builder[R]) buildNode(ctx context.Context, current BuildRecord, list *LocalChildList, alloc *NodeAllocator[R]) (R, error) {
	children, err := b.runChildren(ctx, current, list, alloc, b.recurse)
	if err != nil {
		var zero R
		return zero, err
	}
	return b.callbacks.CreateNode(current.Depth, children, alloc)
}

// runChildren builds every live child of list via build, forking into
// goroutines via errgroup when current's own primitive count is still at
// or above SequentialThreshold, and running sequentially on the calling
// goroutine once it has dropped below it — re-evaluated at every level,
// so a build narrows from parallel to sequential as it descends. A
// sequential child reuses the caller's own alloc; a forked child starts
// with alloc nil, so the next recurse call gives it a fresh handle of its
// own (§5: "node allocator handles are thread-local").
//
// list retains its own hold on every child's Shared Primitive Vector until
// Close (so the Set stays valid for the whole lifetime of this node, even
// after an individual child's subtree has finished). Each call into build
// needs its own, separate hold to consume exactly once — via emitLeaf if
// it terminates in a leaf, or via the same release-after-NewLocalChildList
// step build performs if it splits further — so runChildren acquires one
// more hold per child before handing it off.
func (b *Builder[R]) runChildren(ctx context.Context, current BuildRecord, list *LocalChildList, alloc *NodeAllocator[R], build func(context.Context, BuildRecord, *NodeAllocator[R], bool) (R, error)) ([]R, error) {
	n := list.Len()
	children := make([]R, n)

	if current.Info.Size < b.config.SequentialThreshold {
		for i := 0; i < n; i++ {
			child := list.Get(i)
			child.Set.Vec.Acquire()
			r, err := build(ctx, child, alloc, false)
			if err != nil {
				return nil, err
			}
			children[i] = r
		}
		return children, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if b.config.MaxConcurrency > 0 {
		g.SetLimit(b.config.MaxConcurrency)
	}
	for i := 0; i < n; i++ {
		i := i
		child := list.Get(i)
		child.Set.Vec.Acquire()
		g.Go(func() error {
			r, err := build(gctx, child, nil, true)
			if err != nil {
				return err
			}
			children[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return children, nil
}

// emitLeaf runs the CreateLeaf callback and releases the Set's Shared
// Primitive Vector, since no LocalChildList will ever be built for a
// record that terminates here.
func (b *Builder[R]) emitLeaf(rec BuildRecord, alloc *NodeAllocator[R]) (R, error) {
	r, err := b.callbacks.CreateLeaf(rec.Set, alloc)
	rec.Set.Vec.Release()
	if err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// selectLargestByArea picks the live child whose expected linear-motion
// half-area is largest among those still worth splitting further
// (child.Info.Size > minLeafSize), the "largest child first" rule the
// general recursive builder uses to widen nodes — progress on the biggest
// box pays off the most. Returns -1 once no live child is still above
// minLeafSize.
func selectLargestByArea(list *LocalChildList, minLeafSize int) int {
	best := -1
	bestArea := -1.0
	for i := 0; i < list.Len(); i++ {
		child := list.Get(i)
		if child.Info.Size <= minLeafSize {
			continue
		}
		area := core.ExpectedApproxHalfArea(child.Info.GeomBounds)
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	return best
}
