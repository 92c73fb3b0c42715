package memory

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"
)

func TestBuffer_FromString(t *testing.T) {
	buf := FromString("data123456")

	if buf.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", buf.Len())
	}
	if buf.IsMutable() {
		t.Fatal("FromString buffer should be immutable")
	}
	if buf.MutableBytes() != nil {
		t.Fatal("MutableBytes() of immutable buffer should be nil")
	}
	if buf.String() != "data123456" {
		t.Fatalf("String() = %q", buf.String())
	}

	empty := FromString("")
	if empty.Len() != 0 {
		t.Fatalf("empty Len() = %d", empty.Len())
	}
}

func TestBuffer_WrapDoesNotCopy(t *testing.T) {
	b := []byte("abcdef")
	buf := WrapMutable(b)
	buf.MutableBytes()[0] = 'X'
	if b[0] != 'X' {
		t.Fatal("WrapMutable should share memory with the caller")
	}
	if buf.Cap() != int64(len(b)) {
		t.Fatalf("Cap() = %d, want %d", buf.Cap(), len(b))
	}
}

func TestBuffer_Slice(t *testing.T) {
	buf := FromString("data1data2data3")

	s, err := buf.Slice(5, 5)
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}
	if s.String() != "data2" {
		t.Fatalf("Slice = %q, want data2", s.String())
	}
	if s.Parent() != buf {
		t.Fatal("slice should reference its parent")
	}
	if s.Cap() != 5 {
		t.Fatalf("slice Cap() = %d, want 5", s.Cap())
	}

	// Slices of slices chain parents.
	ss, err := s.Slice(1, 2)
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}
	if ss.String() != "at" || ss.Parent() != s {
		t.Fatalf("nested slice = %q", ss.String())
	}

	// Edge of buffer is fine, past it is not.
	if _, err := buf.Slice(15, 0); err != nil {
		t.Fatalf("Slice(15, 0) error: %v", err)
	}
	tests := []struct{ off, n int64 }{
		{-1, 1}, {0, -1}, {14, 2}, {16, 0},
	}
	for _, tt := range tests {
		if _, err := buf.Slice(tt.off, tt.n); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Slice(%d, %d) error = %v, want ErrOutOfRange", tt.off, tt.n, err)
		}
	}
}

func TestBuffer_SliceKeepsBytesAfterParentDropped(t *testing.T) {
	var s *Buffer
	func() {
		buf, err := Allocate(10)
		if err != nil {
			t.Fatalf("Allocate error: %v", err)
		}
		copy(buf.MutableBytes(), "data123456")
		s, err = buf.Slice(4, 6)
		if err != nil {
			t.Fatalf("Slice error: %v", err)
		}
	}()
	runtime.GC()

	if s.Parent() == nil {
		t.Fatal("slice lost its parent")
	}
	if s.String() != "123456" {
		t.Fatalf("slice = %q, want 123456", s.String())
	}
	if !s.IsMutable() {
		t.Fatal("slice of mutable buffer should be mutable")
	}
}

func TestBuffer_Equals(t *testing.T) {
	a := FromString("abc")
	b := Wrap([]byte("abc"))
	c := FromString("abd")

	if !a.Equals(b) {
		t.Error("a should equal b")
	}
	if a.Equals(c) {
		t.Error("a should not equal c")
	}
	if a.Equals(nil) {
		t.Error("a should not equal nil")
	}
	if !a.Equals(a) {
		t.Error("a should equal itself")
	}
}

func TestAllocate(t *testing.T) {
	buf, err := Allocate(1024)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if buf.Len() != 1024 || !buf.IsMutable() {
		t.Fatalf("Allocate returned len=%d mutable=%v", buf.Len(), buf.IsMutable())
	}
	if !bytes.Equal(buf.Bytes(), make([]byte, 1024)) {
		t.Fatal("allocated buffer should be zeroed")
	}
}

func TestHeapAllocator_Limit(t *testing.T) {
	alloc := &HeapAllocator{MaxAllocation: 100}

	if _, err := AllocateWith(alloc, 100); err != nil {
		t.Fatalf("AllocateWith(100) error: %v", err)
	}
	if _, err := AllocateWith(alloc, 101); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("AllocateWith(101) error = %v, want ErrOutOfMemory", err)
	}
	if _, err := AllocateWith(alloc, -1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("AllocateWith(-1) error = %v, want ErrOutOfRange", err)
	}
	if alloc.BytesAllocated() != 100 || alloc.Allocations() != 1 {
		t.Fatalf("stats = %d bytes / %d allocations", alloc.BytesAllocated(), alloc.Allocations())
	}
}

func TestResizableBuffer_Reserve(t *testing.T) {
	rb, err := AllocateResizable(0, 0)
	if err != nil {
		t.Fatalf("AllocateResizable error: %v", err)
	}
	if rb.Len() != 0 || rb.Cap() != 0 {
		t.Fatalf("len=%d cap=%d, want 0/0", rb.Len(), rb.Cap())
	}

	if err := rb.Reserve(10); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if rb.Cap() != 64 {
		t.Fatalf("Cap() = %d, want 64", rb.Cap())
	}
	if rb.Len() != 0 {
		t.Fatalf("Reserve changed Len() to %d", rb.Len())
	}

	// Reserve never shrinks.
	if err := rb.Reserve(1); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if rb.Cap() != 64 {
		t.Fatalf("Cap() = %d after smaller Reserve", rb.Cap())
	}
}

func TestResizableBuffer_Resize(t *testing.T) {
	rb, err := AllocateResizable(4, 0)
	if err != nil {
		t.Fatalf("AllocateResizable error: %v", err)
	}
	copy(rb.MutableBytes(), "abcd")

	if err := rb.Resize(100, false); err != nil {
		t.Fatalf("Resize(100) error: %v", err)
	}
	if rb.Len() != 100 || rb.Cap() < 100 {
		t.Fatalf("len=%d cap=%d", rb.Len(), rb.Cap())
	}
	if string(rb.Bytes()[:4]) != "abcd" {
		t.Fatalf("Resize lost data: %q", rb.Bytes()[:4])
	}

	if err := rb.Resize(3, false); err != nil {
		t.Fatalf("Resize(3) error: %v", err)
	}
	if rb.Len() != 3 || rb.Cap() < 100 {
		t.Fatalf("shrink without fit: len=%d cap=%d", rb.Len(), rb.Cap())
	}

	if err := rb.Resize(3, true); err != nil {
		t.Fatalf("Resize(3, true) error: %v", err)
	}
	if rb.Cap() != 3 || string(rb.Bytes()) != "abc" {
		t.Fatalf("shrink to fit: cap=%d data=%q", rb.Cap(), rb.Bytes())
	}

	if err := rb.Resize(-1, false); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Resize(-1) error = %v", err)
	}
}

func TestResizableBuffer_Truncate(t *testing.T) {
	rb, err := AllocateResizable(10, 256)
	if err != nil {
		t.Fatalf("AllocateResizable error: %v", err)
	}
	rb.Truncate()
	if rb.Len() != 0 || rb.Cap() < 256 {
		t.Fatalf("Truncate: len=%d cap=%d", rb.Len(), rb.Cap())
	}
}

func TestResizableBuffer_OutOfMemory(t *testing.T) {
	rb, err := AllocateResizableWith(&HeapAllocator{MaxAllocation: 128}, 0, 16)
	if err != nil {
		t.Fatalf("AllocateResizableWith error: %v", err)
	}
	if err := rb.Resize(1000, false); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Resize(1000) error = %v, want ErrOutOfMemory", err)
	}
	if rb.Len() != 0 {
		t.Fatalf("failed Resize changed Len() to %d", rb.Len())
	}
}

func TestParallelCopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := []int{0, 1, 7, 63, 64, 1000, 4096 + 13, 1<<16 + 99}
	for _, size := range sizes {
		src := make([]byte, size)
		for i := range src {
			src[i] = byte(rng.IntN(256))
		}
		for _, threads := range []int{1, 2, 3, 4, 8} {
			for _, block := range []int{0, 1, 64} {
				dst := make([]byte, size)
				n := ParallelCopy(dst, src, threads, block)
				if n != size {
					t.Fatalf("size=%d threads=%d: copied %d", size, threads, n)
				}
				if !bytes.Equal(dst, src) {
					t.Fatalf("size=%d threads=%d block=%d: content mismatch", size, threads, block)
				}
			}
		}
	}
}

func TestParallelCopy_ShortDst(t *testing.T) {
	src := []byte("0123456789")
	dst := make([]byte, 4)
	if n := ParallelCopy(dst, src, 4, 0); n != 4 {
		t.Fatalf("copied %d, want 4", n)
	}
	if string(dst) != "0123" {
		t.Fatalf("dst = %q", dst)
	}
}
