package bvhmb

import "sync"

// NodeAllocator is a generic sync.Pool-backed arena for whatever node
// representation a CreateNode/CreateLeaf callback produces (the "thread
// local node allocator" handle of §5/§6), letting a caller reuse node
// allocations within and across builds instead of paying a heap
// allocation per node (grounded on the teacher's own search-context pool:
// Get/Put around a typed sync.Pool rather than raw make/new calls). T is
// ordinarily the builder's own reduction type R, so Get returns exactly
// what a CreateNode/CreateLeaf callback needs to hand back.
type NodeAllocator[T any] struct {
	pool sync.Pool
}

// NewNodeAllocator constructs a NodeAllocator whose pool creates fresh
// values with newFn when empty.
func NewNodeAllocator[T any](newFn func() T) *NodeAllocator[T] {
	return &NodeAllocator[T]{
		pool: sync.Pool{
			New: func() interface{} { return newFn() },
		},
	}
}

// Get retrieves a value from the pool, allocating a fresh one if empty.
func (a *NodeAllocator[T]) Get() T {
	return a.pool.Get().(T)
}

// Put returns a value to the pool for reuse. Callers must not retain v
// after calling Put.
func (a *NodeAllocator[T]) Put(v T) {
	a.pool.Put(v)
}
