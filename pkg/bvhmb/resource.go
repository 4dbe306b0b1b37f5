package bvhmb

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// MemoryMonitor bounds how much memory temporal splits may have in
// flight at once: every temporal split allocates two new primitive
// arrays before releasing the one it replaces, so an unbounded build can
// transiently need much more than its final working set. A nil
// MemoryMonitor imposes no limit.
type MemoryMonitor struct {
	sem *semaphore.Weighted
}

// NewMemoryMonitor creates a MemoryMonitor that allows up to limitBytes
// of outstanding reservations. A non-positive limit disables enforcement.
func NewMemoryMonitor(limitBytes int64) *MemoryMonitor {
	if limitBytes <= 0 {
		return nil
	}
	return &MemoryMonitor{sem: semaphore.NewWeighted(limitBytes)}
}

// Reserve blocks until bytes of budget are available or ctx is canceled.
func (m *MemoryMonitor) Reserve(ctx context.Context, bytes int64) error {
	if m == nil || bytes <= 0 {
		return nil
	}
	return m.sem.Acquire(ctx, bytes)
}

// Release returns bytes of budget previously reserved with Reserve.
func (m *MemoryMonitor) Release(bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.sem.Release(bytes)
}

// PrimRefBytes estimates the memory n PrimRefs occupy, for sizing
// MemoryMonitor Reserve/Release calls around a temporal split's two new
// arrays.
func PrimRefBytes(n int) int64 {
	const approxPrimRefSize = 64
	return int64(n) * approxPrimRefSize
}
