// Package storage defines the FileStore interface used to move whole
// objects between a storage backend and memory.Buffer regions. It
// abstracts the underlying backend so that callers can swap between local
// disk and S3-compatible object stores without changing application code.
//
// Load and Save bridge a FileStore and the stream package: Load drains an
// object into a BufferOutputStream, Save copies a Buffer out through a
// BufferReader.
package storage

import (
	"context"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing.
	// If the file already exists it is truncated.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
