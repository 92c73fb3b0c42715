package memory

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"
)

// Sentinel errors.
var (
	// ErrOutOfMemory is returned when an allocation cannot be satisfied.
	ErrOutOfMemory = errors.New("memory: out of memory")

	// ErrOutOfRange is returned when a slice or size falls outside a buffer.
	ErrOutOfRange = errors.New("memory: out of range")
)

// Buffer is a view over a contiguous byte region.
//
// The size of a Buffer never changes once constructed (ResizableBuffer is
// the exception). A Buffer built by Slice holds a reference to its parent,
// so the parent's memory stays reachable for as long as the slice is in
// use, even if every other reference to the parent is dropped.
//
// Buffers may be read concurrently. A mutable Buffer has at most one
// writer at a time.
type Buffer struct {
	buf     []byte
	mutable bool
	parent  *Buffer
}

// Wrap returns an immutable Buffer over b without copying.
// The caller must not modify b while the Buffer is in use.
func Wrap(b []byte) *Buffer {
	return &Buffer{buf: b[:len(b):len(b)]}
}

// WrapMutable returns a mutable Buffer over b without copying.
func WrapMutable(b []byte) *Buffer {
	return &Buffer{buf: b[:len(b):len(b)], mutable: true}
}

// FromString returns an immutable Buffer sharing the bytes of s.
func FromString(s string) *Buffer {
	if len(s) == 0 {
		return &Buffer{buf: []byte{}}
	}
	return &Buffer{buf: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Len returns the size of the buffer in bytes.
func (b *Buffer) Len() int64 {
	return int64(len(b.buf))
}

// Cap returns the capacity of the buffer in bytes.
func (b *Buffer) Cap() int64 {
	return int64(cap(b.buf))
}

// Bytes returns the buffer contents. Callers must not modify the result;
// use MutableBytes for write access.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// MutableBytes returns the buffer contents for writing, or nil if the
// buffer is immutable.
func (b *Buffer) MutableBytes() []byte {
	if !b.mutable {
		return nil
	}
	return b.buf
}

// IsMutable reports whether the buffer may be written through MutableBytes.
func (b *Buffer) IsMutable() bool {
	return b.mutable
}

// Parent returns the buffer this one was sliced from, or nil.
func (b *Buffer) Parent() *Buffer {
	return b.parent
}

// Slice returns a zero-copy view of length bytes starting at offset.
// The result inherits the mutability of b and keeps b as its parent.
func (b *Buffer) Slice(offset, length int64) (*Buffer, error) {
	if offset < 0 || length < 0 || offset+length > b.Len() {
		return nil, fmt.Errorf("memory: slice [%d, %d) of %d-byte buffer: %w",
			offset, offset+length, b.Len(), ErrOutOfRange)
	}
	return b.slice(offset, length), nil
}

// slice is Slice without bounds checks.
func (b *Buffer) slice(offset, length int64) *Buffer {
	end := offset + length
	return &Buffer{
		buf:     b.buf[offset:end:end],
		mutable: b.mutable,
		parent:  b,
	}
}

// SliceUnchecked is Slice for callers that have already validated the range.
// It panics if the range is out of bounds.
func (b *Buffer) SliceUnchecked(offset, length int64) *Buffer {
	return b.slice(offset, length)
}

// Equals reports whether b and other hold the same bytes.
func (b *Buffer) Equals(other *Buffer) bool {
	if b == other {
		return true
	}
	if other == nil {
		return false
	}
	return bytes.Equal(b.buf, other.buf)
}

// String returns a copy of the buffer contents as a string.
func (b *Buffer) String() string {
	return string(b.buf)
}

// Allocate allocates a zeroed, mutable Buffer of size bytes from the
// DefaultAllocator.
func Allocate(size int64) (*Buffer, error) {
	return AllocateWith(DefaultAllocator, size)
}

// AllocateWith allocates a zeroed, mutable Buffer of size bytes from alloc.
func AllocateWith(alloc Allocator, size int64) (*Buffer, error) {
	if alloc == nil {
		alloc = DefaultAllocator
	}
	b, err := alloc.Allocate(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{buf: b[:size:size], mutable: true}, nil
}
