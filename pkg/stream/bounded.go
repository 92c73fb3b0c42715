package stream

import (
	"fmt"
	"io"

	"github.com/haivivi/memio/pkg/memory"
)

var _ InputStream = (*BoundedStream)(nil)

// BoundedStream is an InputStream over the window [start, start+length)
// of a RandomAccessFile.
//
// Positions are relative to the window. Reads go through the file's
// positional methods, so the file's own position is never used or moved,
// and any number of windows over one file can be read independently.
// Closing the stream does not close the file.
type BoundedStream struct {
	file   RandomAccessFile
	start  int64
	length int64
	pos    int64
	closed bool
}

// NewBoundedStream returns a stream over length bytes of file starting at
// start.
func NewBoundedStream(file RandomAccessFile, start, length int64) (*BoundedStream, error) {
	if start < 0 || length < 0 {
		return nil, fmt.Errorf("stream: window [%d, +%d): %w", start, length, ErrInvalid)
	}
	return &BoundedStream{file: file, start: start, length: length}, nil
}

// Close closes the window. The underlying file stays open.
func (s *BoundedStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether the window has been closed.
func (s *BoundedStream) Closed() bool {
	return s.closed
}

// Tell returns the position within the window.
func (s *BoundedStream) Tell() (int64, error) {
	if s.closed {
		return 0, closedError("tell")
	}
	return s.pos, nil
}

// Read implements io.Reader, clipped to the window.
func (s *BoundedStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, closedError("read")
	}
	if len(p) == 0 {
		return 0, nil
	}
	remaining := s.length - s.pos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := s.file.ReadAt(p, s.start+s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// ReadBuffer reads up to n bytes, clipped to the window.
func (s *BoundedStream) ReadBuffer(n int64) (*memory.Buffer, error) {
	if s.closed {
		return nil, closedError("read")
	}
	if n < 0 {
		return nil, fmt.Errorf("stream: read %d bytes: %w", n, ErrInvalid)
	}
	buf, err := s.file.ReadBufferAt(s.start+s.pos, min(n, s.length-s.pos))
	if err != nil {
		return nil, err
	}
	s.pos += buf.Len()
	return buf, nil
}

// Peek returns up to n bytes at the current position without advancing.
func (s *BoundedStream) Peek(n int) ([]byte, error) {
	if s.closed {
		return nil, closedError("peek")
	}
	if n < 0 {
		return nil, fmt.Errorf("stream: peek %d bytes: %w", n, ErrInvalid)
	}
	buf, err := s.file.ReadBufferAt(s.start+s.pos, min(int64(n), s.length-s.pos))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
