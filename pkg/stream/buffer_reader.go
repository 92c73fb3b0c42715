package stream

import (
	"fmt"
	"io"

	"github.com/haivivi/memio/pkg/memory"
)

var _ RandomAccessFile = (*BufferReader)(nil)

// BufferReader is a RandomAccessFile over a memory.Buffer.
//
// The bytes are never copied by ReadBuffer, ReadBufferAt or Peek. Buffers
// returned by ReadBuffer and ReadBufferAt are slices of the source buffer
// and keep it alive after the reader is closed or dropped.
type BufferReader struct {
	buffer *memory.Buffer
	data   []byte
	size   int64
	pos    int64
	closed bool
}

// NewBufferReader returns a reader over buf.
func NewBufferReader(buf *memory.Buffer) *BufferReader {
	return &BufferReader{
		buffer: buf,
		data:   buf.Bytes(),
		size:   buf.Len(),
	}
}

// NewBufferReaderFromString returns a reader sharing the bytes of s.
func NewBufferReaderFromString(s string) *BufferReader {
	return NewBufferReader(memory.FromString(s))
}

// NewBufferReaderFromBytes returns a reader over b without copying it.
func NewBufferReaderFromBytes(b []byte) *BufferReader {
	return NewBufferReader(memory.Wrap(b))
}

// Buffer returns the source buffer, or nil once the reader is closed.
func (r *BufferReader) Buffer() *memory.Buffer {
	return r.buffer
}

// Close releases the reader's reference to the source buffer.
func (r *BufferReader) Close() error {
	r.closed = true
	r.buffer = nil
	r.data = nil
	return nil
}

// Closed reports whether the reader has been closed.
func (r *BufferReader) Closed() bool {
	return r.closed
}

// Tell returns the current position.
func (r *BufferReader) Tell() (int64, error) {
	if r.closed {
		return 0, closedError("tell")
	}
	return r.pos, nil
}

// Size returns the size of the source buffer.
func (r *BufferReader) Size() (int64, error) {
	if r.closed {
		return 0, closedError("size")
	}
	return r.size, nil
}

// Seek implements io.Seeker over [0, Size]. A failed seek leaves the
// position unchanged.
func (r *BufferReader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, closedError("seek")
	}
	target, err := seekTarget(offset, whence, r.pos, r.size)
	if err != nil {
		return r.pos, err
	}
	r.pos = target
	return r.pos, nil
}

// Read implements io.Reader.
func (r *BufferReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, closedError("read")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if r.pos >= r.size {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += int64(n)
	return n, nil
}

// ReadBuffer returns a slice of up to n bytes at the current position and
// advances past it. At the end of the buffer it returns an empty slice.
func (r *BufferReader) ReadBuffer(n int64) (*memory.Buffer, error) {
	if r.closed {
		return nil, closedError("read")
	}
	if n < 0 {
		return nil, fmt.Errorf("stream: read %d bytes: %w", n, ErrInvalid)
	}
	n = min(n, r.size-r.pos)
	buf := r.buffer.SliceUnchecked(r.pos, n)
	r.pos += n
	return buf, nil
}

// ReadAt implements io.ReaderAt.
func (r *BufferReader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, closedError("read at")
	}
	n, err := validateReadRange(off, int64(len(p)), r.size)
	if err != nil {
		return 0, err
	}
	copy(p, r.data[off:off+n])
	if int(n) < len(p) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// ReadBufferAt returns a slice of up to n bytes at pos.
func (r *BufferReader) ReadBufferAt(pos, n int64) (*memory.Buffer, error) {
	if r.closed {
		return nil, closedError("read at")
	}
	n, err := validateReadRange(pos, n, r.size)
	if err != nil {
		return nil, err
	}
	return r.buffer.SliceUnchecked(pos, n), nil
}

// Peek returns up to n bytes at the current position without advancing.
// The result borrows the source buffer's memory.
func (r *BufferReader) Peek(n int) ([]byte, error) {
	if r.closed {
		return nil, closedError("peek")
	}
	if n < 0 {
		return nil, fmt.Errorf("stream: peek %d bytes: %w", n, ErrInvalid)
	}
	end := r.pos + min(int64(n), r.size-r.pos)
	return r.data[r.pos:end:end], nil
}
