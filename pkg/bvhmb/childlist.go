package bvhmb

// MaxBranchingFactor bounds how many children any inner node may have.
// The general recursive builder and the large-leaf sub-builder both fill
// a LocalChildList up to this many slots before giving up and emitting a
// node.
const MaxBranchingFactor = 8

// LocalChildList accumulates the children of one inner node as repeated
// splits widen it from one Build Record to up to MaxBranchingFactor (C2).
// It holds its own, separate reference on every live child's Shared
// Primitive Vector from construction until Close, independent of whatever
// hold the record passed to NewLocalChildList carried in — the caller's
// frame is responsible for releasing that incoming hold itself once the
// list has acquired its own (see Builder.recurse and
// Builder.createLargeLeaf, both of which call Release immediately after
// constructing the list).
type LocalChildList struct {
	children    [MaxBranchingFactor]BuildRecord
	numChildren int
}

// NewLocalChildList installs record as child 0 and acquires its own,
// independent hold on its Shared Primitive Vector — the list's hold, kept
// alive until Close regardless of what happens to the caller's own
// incoming hold on the same vector.
func NewLocalChildList(record BuildRecord) *LocalChildList {
	record.Set.Vec.Acquire()
	l := &LocalChildList{numChildren: 1}
	l.children[0] = record
	return l
}

// Len reports how many children have been produced so far.
func (l *LocalChildList) Len() int {
	return l.numChildren
}

// Get returns the i'th child, for i < Len().
func (l *LocalChildList) Get(i int) BuildRecord {
	return l.children[i]
}

// Full reports whether the list has reached MaxBranchingFactor children.
func (l *LocalChildList) Full() bool {
	return l.numChildren >= MaxBranchingFactor
}

// Split replaces children[bestIdx] with lrec and appends rrec, fixing up
// Shared Primitive Vector reference counts: whichever of lrec/rrec kept
// the same array as the record it replaced acquires that array again (an
// object or fallback split shares one array between two children); either
// that ends up pointing at a freshly allocated array instead (a temporal
// split), which needs no acquire since it already starts at refcount 1.
// The record being replaced then releases its own hold exactly once,
// paired with the acquire NewLocalChildList or a prior Split performed
// when it was first installed.
func (l *LocalChildList) Split(bestIdx int, lrec, rrec BuildRecord) {
	old := l.children[bestIdx].Set.Vec
	if lrec.Set.Vec == old {
		old.Acquire()
	}
	if rrec.Set.Vec == old {
		old.Acquire()
	}
	old.Release()

	l.children[bestIdx] = lrec
	l.children[l.numChildren] = rrec
	l.numChildren++
}

// Close releases every live child's list-owned hold on its Shared
// Primitive Vector exactly once — the holds this list itself acquired,
// never the separate holds individual recursive calls acquire to consume
// on their own (see Builder.runChildren). Callers defer this immediately
// after construction.
func (l *LocalChildList) Close() {
	for i := 0; i < l.numChildren; i++ {
		l.children[i].Set.Vec.Release()
	}
}
