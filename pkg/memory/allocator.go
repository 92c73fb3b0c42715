package memory

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Allocator hands out zeroed byte regions.
//
// Implementations must be safe for concurrent use. The returned slice has
// length size; its capacity may be larger.
type Allocator interface {
	Allocate(size int64) ([]byte, error)
}

// DefaultAllocator is used when no allocator is supplied.
var DefaultAllocator Allocator = &HeapAllocator{}

// HeapAllocator allocates from the Go heap.
type HeapAllocator struct {
	// MaxAllocation caps a single allocation in bytes. Zero means no cap
	// beyond what the runtime can address.
	MaxAllocation int64

	allocated   atomic.Int64
	allocations atomic.Int64
}

// Allocate returns a zeroed slice of size bytes.
// Returns an error wrapping ErrOutOfMemory if size exceeds MaxAllocation.
func (a *HeapAllocator) Allocate(size int64) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("memory: negative allocation size %d: %w", size, ErrOutOfRange)
	}
	if size > math.MaxInt || (a.MaxAllocation > 0 && size > a.MaxAllocation) {
		return nil, fmt.Errorf("memory: allocate %d bytes (limit %d): %w", size, a.MaxAllocation, ErrOutOfMemory)
	}
	b := make([]byte, size)
	a.allocated.Add(size)
	a.allocations.Add(1)
	return b, nil
}

// BytesAllocated returns the total number of bytes handed out so far.
func (a *HeapAllocator) BytesAllocated() int64 {
	return a.allocated.Load()
}

// Allocations returns the number of successful Allocate calls.
func (a *HeapAllocator) Allocations() int64 {
	return a.allocations.Load()
}
