package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/haivivi/memio/pkg/memory"
)

// Error kinds. Every error returned by this package wraps one of ErrIO,
// ErrInvalid or memory.ErrOutOfMemory.
var (
	// ErrIO is the kind of errors caused by the state of a stream.
	ErrIO = errors.New("io error")

	// ErrInvalid is the kind of errors caused by bad arguments.
	ErrInvalid = errors.New("invalid argument")

	// ErrClosed is returned by operations on a closed stream.
	ErrClosed = fmt.Errorf("%w: stream is closed", ErrIO)

	// ErrOutOfBounds is returned when a write, read or seek falls outside
	// the extent of a stream.
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrIO)

	// ErrIteratorDone is returned by Iterator.Next once the source stream
	// is exhausted.
	ErrIteratorDone = errors.New("iterator done")
)

// FileInterface is the part shared by every stream.
type FileInterface interface {
	// Close releases the stream. Closing a closed stream is a no-op.
	io.Closer

	// Closed reports whether Close has been called.
	Closed() bool

	// Tell returns the current position.
	Tell() (int64, error)
}

// OutputStream is a stream bytes are written to.
//
// Write is all-or-nothing: it either writes len(p) bytes or returns an
// error without changing the stream.
type OutputStream interface {
	FileInterface
	io.Writer
}

// WritableFile is an OutputStream with random access.
type WritableFile interface {
	OutputStream
	io.Seeker
	io.WriterAt
}

// InputStream is a stream bytes are read from.
//
// Reads past the end are short, not errors: ReadBuffer returns what is
// left (possibly nothing) and Read returns io.EOF once nothing is left.
type InputStream interface {
	FileInterface
	io.Reader

	// ReadBuffer reads up to n bytes and returns them as a buffer.
	ReadBuffer(n int64) (*memory.Buffer, error)

	// Peek returns up to n bytes at the current position without
	// consuming them. The result is valid until the next call that
	// mutates the stream or its backing buffer.
	Peek(n int) ([]byte, error)
}

// RandomAccessFile is an InputStream with a known size that supports
// seeking and positional reads. ReadAt and ReadBufferAt neither use nor
// move the stream position.
type RandomAccessFile interface {
	InputStream
	io.Seeker
	io.ReaderAt

	// ReadBufferAt reads up to n bytes at pos.
	ReadBufferAt(pos, n int64) (*memory.Buffer, error)

	// Size returns the size of the file in bytes.
	Size() (int64, error)
}

func closedError(op string) error {
	return fmt.Errorf("stream: %s: %w", op, ErrClosed)
}

// seekTarget resolves an io.Seeker request against a stream of the given
// size. Targets outside [0, size] are rejected.
func seekTarget(offset int64, whence int, pos, size int64) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = pos + offset
	case io.SeekEnd:
		target = size + offset
	default:
		return 0, fmt.Errorf("stream: seek: whence %d: %w", whence, ErrInvalid)
	}
	if target < 0 || target > size {
		return 0, fmt.Errorf("stream: seek to %d outside [0, %d]: %w", target, size, ErrOutOfBounds)
	}
	return target, nil
}

// validateReadRange checks a positional read and returns the number of
// bytes that can actually be read.
func validateReadRange(pos, n, size int64) (int64, error) {
	if pos < 0 || n < 0 {
		return 0, fmt.Errorf("stream: read %d bytes at %d: %w", n, pos, ErrInvalid)
	}
	if pos > size {
		return 0, fmt.Errorf("stream: read at %d past end %d: %w", pos, size, ErrOutOfBounds)
	}
	return min(n, size-pos), nil
}

// ReadAll drains in into a single buffer.
func ReadAll(in InputStream) (*memory.Buffer, error) {
	out, err := CreateBufferOutputStream(defaultChunkSize, nil)
	if err != nil {
		return nil, err
	}
	for {
		chunk, err := in.ReadBuffer(defaultChunkSize)
		if err != nil {
			return nil, err
		}
		if chunk.Len() == 0 {
			break
		}
		if _, err := out.Write(chunk.Bytes()); err != nil {
			return nil, err
		}
	}
	return out.Finish()
}

const defaultChunkSize = 64 << 10
