package stream

import (
	"errors"
	"fmt"
	"iter"

	"github.com/haivivi/memio/pkg/memory"
)

// Iterator reads an InputStream in blocks of a fixed size.
//
// Iteration is forward-only and cannot be restarted.
type Iterator struct {
	in        InputStream
	blockSize int64
	done      bool
}

// NewIterator returns an iterator over in. The stream must be open and
// blockSize must be positive.
func NewIterator(in InputStream, blockSize int64) (*Iterator, error) {
	if in.Closed() {
		return nil, fmt.Errorf("stream: iterate over closed stream: %w", ErrInvalid)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("stream: iterator block size %d: %w", blockSize, ErrInvalid)
	}
	return &Iterator{in: in, blockSize: blockSize}, nil
}

// Next returns the next block of up to blockSize bytes.
//
// Once the stream is exhausted, Next returns ErrIteratorDone, and keeps
// returning it on every later call. If the stream fails before that,
// including by being closed, Next returns the read error instead.
func (it *Iterator) Next() (*memory.Buffer, error) {
	if it.done {
		return nil, ErrIteratorDone
	}
	buf, err := it.in.ReadBuffer(it.blockSize)
	if err != nil {
		return nil, fmt.Errorf("stream: iterator: %w", err)
	}
	if buf.Len() == 0 {
		it.done = true
		return nil, ErrIteratorDone
	}
	return buf, nil
}

// All returns the remaining blocks as a sequence. A read error is yielded
// once, with a nil buffer, and ends the sequence.
func (it *Iterator) All() iter.Seq2[*memory.Buffer, error] {
	return func(yield func(*memory.Buffer, error) bool) {
		for {
			buf, err := it.Next()
			if errors.Is(err, ErrIteratorDone) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(buf, nil) {
				return
			}
		}
	}
}
