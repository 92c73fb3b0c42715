package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/haivivi/memio/pkg/memory"
)

// newBadgerStore creates an in-memory badger FileStore for testing.
func newBadgerStore(t *testing.T, alloc memory.Allocator) *Badger {
	t.Helper()
	s, err := NewBadger(BadgerOptions{InMemory: true, Allocator: alloc})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerReadWrite(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t, nil)

	if _, err := s.Read(ctx, "blobs/a"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
	if ok, err := s.Exists(ctx, "blobs/a"); err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	w, err := s.Write(ctx, "blobs/a")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	io.WriteString(w, "data1")
	io.WriteString(w, "data2")

	// Nothing is visible until Close.
	if ok, _ := s.Exists(ctx, "blobs/a"); ok {
		t.Fatal("value visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	r, err := s.Read(ctx, "blobs/a")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "data1data2" {
		t.Fatalf("Read = %q", got)
	}
	if sz, ok := r.(sizer); !ok || sz.Size() != 10 {
		t.Fatal("badger reads should report their size")
	}
}

func TestBadgerLoadSave(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t, nil)

	data := bytes.Repeat([]byte("0123456789"), 1000)
	if err := Save(ctx, s, "big", memory.Wrap(data)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	alloc := &memory.HeapAllocator{}
	buf, err := Load(ctx, s, "big", alloc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatal("loaded content mismatch")
	}
	if alloc.Allocations() > 2 {
		t.Fatalf("%d allocations for a sized load", alloc.Allocations())
	}
}

func TestBadgerWriteOutOfMemory(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t, &memory.HeapAllocator{MaxAllocation: 16})

	w, err := s.Write(ctx, "k")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write(make([]byte, 64)); !errors.Is(err, memory.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestNewBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadger(BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}
