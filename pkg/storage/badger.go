package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/haivivi/memio/pkg/memory"
)

var _ FileStore = (*Badger)(nil)

// Badger is a FileStore that keeps each file as one value in a BadgerDB
// database. Paths are used verbatim as keys.
type Badger struct {
	db    *badger.DB
	alloc memory.Allocator
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// Allocator backs the buffers that collect written values.
	// Nil means memory.DefaultAllocator.
	Allocator memory.Allocator
}

// NewBadger opens a BadgerDB-backed FileStore.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("storage: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(slogLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return &Badger{db: db, alloc: opts.Allocator}, nil
}

// Read returns the value stored under path. Returns an error wrapping
// os.ErrNotExist if the key does not exist.
func (b *Badger) Read(_ context.Context, path string) (io.ReadCloser, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("storage: read %s: %w", path, os.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return &sizedBody{ReadCloser: io.NopCloser(bytes.NewReader(val)), size: int64(len(val))}, nil
}

// Write returns a writer that collects the value in memory and stores it
// under path on Close.
func (b *Badger) Write(_ context.Context, path string) (io.WriteCloser, error) {
	key := []byte(path)
	return newBufferedWriter(b.alloc, func(buf *memory.Buffer) error {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, buf.Bytes())
		})
	})
}

// Exists reports whether a value is stored under path.
func (b *Badger) Exists(_ context.Context, path string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(path))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// slogLogger forwards badger warnings and errors to slog and drops the
// rest.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...any)   { slog.Error(fmt.Sprintf("badger: "+f, v...)) }
func (slogLogger) Warningf(f string, v ...any) { slog.Warn(fmt.Sprintf("badger: "+f, v...)) }
func (slogLogger) Infof(string, ...any)        {}
func (slogLogger) Debugf(string, ...any)       {}
