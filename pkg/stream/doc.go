// Package stream provides in-memory implementations of the input, output
// and random-access stream contracts used to move bytes in and out of
// memory.Buffer regions.
//
// The package offers the following streams:
//
//   - BufferOutputStream: appends into a growable buffer and finishes into
//     an immutable memory.Buffer. It can be reset and reused.
//
//   - FixedSizeBufferWriter: writes into a preallocated mutable buffer with
//     bounds checks. Large writes are copied by several goroutines.
//
//   - BufferReader: a RandomAccessFile over a memory.Buffer. ReadBuffer
//     returns zero-copy slices that keep the source buffer alive.
//
//   - BoundedStream: an InputStream limited to a window of a
//     RandomAccessFile, with its own position.
//
//   - SlowInputStream and SlowRandomAccessFile: decorators that sleep before
//     every read to simulate slow storage.
//
//   - Iterator: reads an InputStream in fixed-size blocks.
//
// Streams are not safe for concurrent use; distinct streams over the same
// buffer are. Every stream fails with an error wrapping ErrClosed once it
// has been closed, and Close itself is idempotent.
//
// Example usage:
//
//	r := stream.NewBufferReaderFromString("data123456")
//	it, err := stream.NewIterator(r, 3)
//	if err != nil {
//		return err
//	}
//	for chunk, err := range it.All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(chunk.String())
//	}
package stream
