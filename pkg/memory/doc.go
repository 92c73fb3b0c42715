// Package memory provides the byte-region types underneath the stream layer.
//
// The package offers two buffer types:
//
//   - Buffer: an immutable-size view over a contiguous byte region. A Buffer
//     either owns its allocation, borrows caller memory (Wrap, FromString),
//     or is a slice of another Buffer that keeps a reference to its parent.
//     Slicing never copies.
//
//   - ResizableBuffer: a Buffer whose size and capacity can change through
//     Resize and Reserve. Growth may move the data to a new allocation.
//
// Allocation goes through the Allocator interface. HeapAllocator is the
// default and reports ErrOutOfMemory when a request exceeds its limit.
//
// Example usage:
//
//	buf, err := memory.Allocate(1024)
//	if err != nil {
//		return err
//	}
//	copy(buf.MutableBytes(), "hello")
//
//	// Zero-copy slice; keeps buf reachable through Parent.
//	head, err := buf.Slice(0, 5)
package memory
