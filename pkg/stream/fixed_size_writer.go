package stream

import (
	"fmt"
	"log/slog"

	"github.com/haivivi/memio/pkg/memory"
)

// Defaults for the parallel copy used by FixedSizeBufferWriter.
const (
	DefaultMemcopyThreads   = 1
	DefaultMemcopyBlockSize = 64
	DefaultMemcopyThreshold = 1 << 20
)

var _ WritableFile = (*FixedSizeBufferWriter)(nil)

// FixedSizeBufferWriter is a WritableFile over a preallocated mutable
// buffer. Its capacity is the size of that buffer and never grows.
//
// Writes larger than the memcopy threshold are split across the configured
// number of goroutines; Write returns after all of them finish.
type FixedSizeBufferWriter struct {
	buffer *memory.Buffer
	data   []byte
	size   int64
	pos    int64
	closed bool

	memcopyThreads   int
	memcopyBlockSize int
	memcopyThreshold int64
}

// NewFixedSizeBufferWriter returns a writer over buf, which must be mutable.
func NewFixedSizeBufferWriter(buf *memory.Buffer) (*FixedSizeBufferWriter, error) {
	if !buf.IsMutable() {
		return nil, fmt.Errorf("stream: fixed size writer needs a mutable buffer: %w", ErrInvalid)
	}
	return &FixedSizeBufferWriter{
		buffer:           buf,
		data:             buf.MutableBytes(),
		size:             buf.Len(),
		memcopyThreads:   DefaultMemcopyThreads,
		memcopyBlockSize: DefaultMemcopyBlockSize,
		memcopyThreshold: DefaultMemcopyThreshold,
	}, nil
}

// SetMemcopyThreads sets the number of goroutines used for large writes.
// Values below 1 mean 1.
func (w *FixedSizeBufferWriter) SetMemcopyThreads(n int) {
	w.memcopyThreads = max(n, 1)
}

// SetMemcopyBlockSize sets the granularity chunk boundaries are aligned to.
func (w *FixedSizeBufferWriter) SetMemcopyBlockSize(n int) {
	w.memcopyBlockSize = n
}

// SetMemcopyThreshold sets the write size above which copies run in
// parallel.
func (w *FixedSizeBufferWriter) SetMemcopyThreshold(n int64) {
	w.memcopyThreshold = n
}

// Buffer returns the destination buffer.
func (w *FixedSizeBufferWriter) Buffer() *memory.Buffer {
	return w.buffer
}

// Close marks the writer closed. The buffer is left as is.
func (w *FixedSizeBufferWriter) Close() error {
	w.closed = true
	return nil
}

// Closed reports whether the writer has been closed.
func (w *FixedSizeBufferWriter) Closed() bool {
	return w.closed
}

// Tell returns the current position.
func (w *FixedSizeBufferWriter) Tell() (int64, error) {
	if w.closed {
		return 0, closedError("tell")
	}
	return w.pos, nil
}

// Size returns the fixed capacity of the writer.
func (w *FixedSizeBufferWriter) Size() int64 {
	return w.size
}

// Seek implements io.Seeker over [0, Size]. A failed seek leaves the
// position unchanged.
func (w *FixedSizeBufferWriter) Seek(offset int64, whence int) (int64, error) {
	if w.closed {
		return 0, closedError("seek")
	}
	target, err := seekTarget(offset, whence, w.pos, w.size)
	if err != nil {
		return w.pos, err
	}
	w.pos = target
	return w.pos, nil
}

// Write copies p at the current position and advances past it. Writes
// that do not fit fail without copying anything.
func (w *FixedSizeBufferWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, closedError("write")
	}
	if err := w.checkRange(w.pos, len(p)); err != nil {
		return 0, err
	}
	w.copyAt(w.pos, p)
	w.pos += int64(len(p))
	return len(p), nil
}

// WriteAt implements io.WriterAt. The position is not used or changed.
func (w *FixedSizeBufferWriter) WriteAt(p []byte, off int64) (int, error) {
	if w.closed {
		return 0, closedError("write at")
	}
	if off < 0 {
		return 0, fmt.Errorf("stream: write at %d: %w", off, ErrInvalid)
	}
	if err := w.checkRange(off, len(p)); err != nil {
		return 0, err
	}
	w.copyAt(off, p)
	return len(p), nil
}

func (w *FixedSizeBufferWriter) checkRange(off int64, n int) error {
	if off > w.size || int64(n) > w.size-off {
		return fmt.Errorf("stream: write %d bytes at %d exceeds capacity %d: %w",
			n, off, w.size, ErrOutOfBounds)
	}
	return nil
}

func (w *FixedSizeBufferWriter) copyAt(off int64, p []byte) {
	dst := w.data[off : off+int64(len(p))]
	if int64(len(p)) > w.memcopyThreshold && w.memcopyThreads > 1 {
		slog.Debug("stream: parallel memcopy", "bytes", len(p), "threads", w.memcopyThreads)
		memory.ParallelCopy(dst, p, w.memcopyThreads, w.memcopyBlockSize)
		return
	}
	copy(dst, p)
}
