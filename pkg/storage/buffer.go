package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/haivivi/memio/pkg/memory"
	"github.com/haivivi/memio/pkg/stream"
)

// sizer is implemented by readers that know their total size up front.
type sizer interface {
	Size() int64
}

// Load reads the named file into a single buffer allocated from alloc.
// A nil alloc means memory.DefaultAllocator.
func Load(ctx context.Context, fs FileStore, path string, alloc memory.Allocator) (*memory.Buffer, error) {
	r, err := fs.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := stream.CreateBufferOutputStream(sizeHint(r), alloc)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", path, err)
	}
	n, err := io.Copy(out, r)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", path, err)
	}
	slog.Debug("storage: loaded", "path", path, "bytes", n)
	return out.Finish()
}

// Save writes the contents of buf to the named file.
func Save(ctx context.Context, fs FileStore, path string, buf *memory.Buffer) error {
	w, err := fs.Write(ctx, path)
	if err != nil {
		return err
	}
	r := stream.NewBufferReader(buf)
	defer r.Close()
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("storage: save %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: save %s: %w", path, err)
	}
	return nil
}

func sizeHint(r io.Reader) int64 {
	if s, ok := r.(sizer); ok {
		return max(s.Size(), 0)
	}
	return 0
}

// bufferedWriter collects written bytes in memory and hands them to commit
// on Close. Backends without a streaming upload use it.
type bufferedWriter struct {
	out    *stream.BufferOutputStream
	commit func(*memory.Buffer) error
}

func newBufferedWriter(alloc memory.Allocator, commit func(*memory.Buffer) error) (*bufferedWriter, error) {
	out, err := stream.CreateBufferOutputStream(0, alloc)
	if err != nil {
		return nil, err
	}
	return &bufferedWriter{out: out, commit: commit}, nil
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// Close commits the collected bytes. A second Close is a no-op.
func (w *bufferedWriter) Close() error {
	if w.out.Closed() {
		return nil
	}
	buf, err := w.out.Finish()
	if err != nil {
		return err
	}
	return w.commit(buf)
}
