package stream

import (
	"fmt"
	"log/slog"

	"github.com/haivivi/memio/pkg/memory"
)

var _ OutputStream = (*BufferOutputStream)(nil)

// BufferOutputStream is an OutputStream that appends into a
// memory.ResizableBuffer.
//
// The size of the backing buffer always equals the number of bytes
// written, so the buffer is usable even if the stream is never closed.
// The capacity at least doubles whenever it runs out, which keeps the
// number of reallocations logarithmic in the output size.
type BufferOutputStream struct {
	buf    *memory.ResizableBuffer
	alloc  memory.Allocator
	closed bool
}

// NewBufferOutputStream returns a stream writing into buf from offset 0.
// Existing contents of buf are discarded but its capacity is kept.
func NewBufferOutputStream(buf *memory.ResizableBuffer) *BufferOutputStream {
	buf.Truncate()
	return &BufferOutputStream{buf: buf}
}

// CreateBufferOutputStream returns a stream over a new buffer with the
// given initial capacity. A nil alloc means memory.DefaultAllocator.
func CreateBufferOutputStream(initialCapacity int64, alloc memory.Allocator) (*BufferOutputStream, error) {
	s := &BufferOutputStream{alloc: alloc, closed: true}
	if err := s.Reset(initialCapacity); err != nil {
		return nil, err
	}
	return s, nil
}

// Write appends p, growing the buffer if needed. A failed Write leaves the
// stream unchanged.
func (s *BufferOutputStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, closedError("write")
	}
	if len(p) == 0 {
		return 0, nil
	}
	size := s.buf.Len()
	need := size + int64(len(p))
	if need > s.buf.Cap() {
		newCap := max(need, 2*s.buf.Cap())
		slog.Debug("stream: grow output buffer", "from", s.buf.Cap(), "to", newCap)
		if err := s.buf.Reserve(newCap); err != nil {
			return 0, fmt.Errorf("stream: grow output buffer to %d bytes: %w", newCap, err)
		}
	}
	if err := s.buf.Resize(need, false); err != nil {
		return 0, fmt.Errorf("stream: write %d bytes: %w", len(p), err)
	}
	copy(s.buf.MutableBytes()[size:], p)
	return len(p), nil
}

// Tell returns the number of bytes written.
func (s *BufferOutputStream) Tell() (int64, error) {
	if s.closed {
		return 0, closedError("tell")
	}
	return s.buf.Len(), nil
}

// Capacity returns the capacity of the backing buffer.
func (s *BufferOutputStream) Capacity() int64 {
	if s.buf == nil {
		return 0
	}
	return s.buf.Cap()
}

// Closed reports whether the stream has been closed or finished.
func (s *BufferOutputStream) Closed() bool {
	return s.closed
}

// Close shrinks the backing buffer's capacity to the bytes written.
func (s *BufferOutputStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.buf.Resize(s.buf.Len(), true); err != nil {
		return fmt.Errorf("stream: close: %w", err)
	}
	return nil
}

// Finish closes the stream and returns the written bytes as an immutable
// buffer. The stream gives up its buffer; call Reset to write again.
func (s *BufferOutputStream) Finish() (*memory.Buffer, error) {
	if s.closed {
		return nil, closedError("finish")
	}
	if err := s.Close(); err != nil {
		return nil, err
	}
	buf := memory.Wrap(s.buf.Bytes())
	s.buf = nil
	return buf, nil
}

// Reset starts a new output with a fresh buffer of initialCapacity bytes.
// The stream must have been finished or closed first.
func (s *BufferOutputStream) Reset(initialCapacity int64) error {
	if !s.closed {
		return fmt.Errorf("stream: reset of an unfinished output stream: %w", ErrInvalid)
	}
	buf, err := memory.AllocateResizableWith(s.alloc, 0, initialCapacity)
	if err != nil {
		return fmt.Errorf("stream: allocate output buffer: %w", err)
	}
	s.buf = buf
	s.closed = false
	return nil
}
