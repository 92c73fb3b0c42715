package memory

import (
	"fmt"
)

// alignment is the granularity capacity is rounded up to on growth.
const alignment = 64

// ResizableBuffer is a mutable Buffer whose size and capacity can change.
//
// Growing past the current capacity moves the contents to a new
// allocation. Slices and Bytes views taken before a reallocation keep
// pointing at the old memory and no longer observe writes to the buffer;
// take a fresh view after every Resize or Reserve.
type ResizableBuffer struct {
	Buffer
	alloc Allocator
}

// AllocateResizable allocates a ResizableBuffer of size bytes with at least
// capacity bytes reserved, from the DefaultAllocator.
func AllocateResizable(size, capacity int64) (*ResizableBuffer, error) {
	return AllocateResizableWith(DefaultAllocator, size, capacity)
}

// AllocateResizableWith is AllocateResizable with an explicit allocator.
// The allocator is kept and used for later growth.
func AllocateResizableWith(alloc Allocator, size, capacity int64) (*ResizableBuffer, error) {
	if alloc == nil {
		alloc = DefaultAllocator
	}
	if size < 0 || capacity < 0 {
		return nil, fmt.Errorf("memory: resizable buffer size %d capacity %d: %w", size, capacity, ErrOutOfRange)
	}
	rb := &ResizableBuffer{
		Buffer: Buffer{buf: []byte{}, mutable: true},
		alloc:  alloc,
	}
	if err := rb.Reserve(max(size, capacity)); err != nil {
		return nil, err
	}
	rb.buf = rb.buf[:size]
	return rb, nil
}

// Reserve makes sure the buffer can hold capacity bytes without another
// allocation. It never shrinks. New capacity is rounded up to 64 bytes.
func (rb *ResizableBuffer) Reserve(capacity int64) error {
	if capacity <= rb.Cap() {
		return nil
	}
	return rb.realloc(roundUp(capacity))
}

// Resize changes the buffer size to newSize, growing the capacity if
// needed. When shrinkToFit is true and the capacity exceeds newSize, the
// contents are moved to an allocation of exactly newSize bytes.
//
// Bytes between the old and the new size are unspecified after growth.
func (rb *ResizableBuffer) Resize(newSize int64, shrinkToFit bool) error {
	if newSize < 0 {
		return fmt.Errorf("memory: resize to %d: %w", newSize, ErrOutOfRange)
	}
	switch {
	case newSize > rb.Cap():
		if err := rb.Reserve(newSize); err != nil {
			return err
		}
	case shrinkToFit && newSize < rb.Cap():
		if err := rb.realloc(newSize); err != nil {
			return err
		}
	}
	rb.buf = rb.buf[:newSize]
	return nil
}

// Truncate sets the size to zero and keeps the capacity.
func (rb *ResizableBuffer) Truncate() {
	rb.buf = rb.buf[:0]
}

func (rb *ResizableBuffer) realloc(capacity int64) error {
	nb, err := rb.alloc.Allocate(capacity)
	if err != nil {
		return err
	}
	nb = nb[:capacity:capacity]
	n := copy(nb, rb.buf)
	rb.buf = nb[:n]
	return nil
}

func roundUp(n int64) int64 {
	return (n + alignment - 1) &^ (alignment - 1)
}
