package stream

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/haivivi/memio/pkg/memory"
)

// LatencyGenerator produces the delays injected by the slow decorators.
type LatencyGenerator interface {
	// NextLatency returns the next delay.
	NextLatency() time.Duration

	// Sleep blocks for NextLatency.
	Sleep()
}

// NewLatencyGenerator returns a generator around average with a random
// seed.
func NewLatencyGenerator(average time.Duration) LatencyGenerator {
	return NewLatencyGeneratorSeed(average, rand.Uint64())
}

// NewLatencyGeneratorSeed returns a generator around average. Delays are
// normally distributed with a standard deviation of a tenth of average
// and never negative. The same seed gives the same sequence.
func NewLatencyGeneratorSeed(average time.Duration, seed uint64) LatencyGenerator {
	return &latencyGenerator{
		average: average,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

type latencyGenerator struct {
	average time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func (g *latencyGenerator) NextLatency() time.Duration {
	g.mu.Lock()
	norm := g.rng.NormFloat64()
	g.mu.Unlock()
	d := float64(g.average) * (1 + 0.1*norm)
	return time.Duration(max(d, 0))
}

func (g *latencyGenerator) Sleep() {
	d := g.NextLatency()
	slog.Debug("stream: inject latency", "latency", d)
	time.Sleep(d)
}

var (
	_ InputStream      = (*SlowInputStream)(nil)
	_ RandomAccessFile = (*SlowRandomAccessFile)(nil)
)

// SlowInputStream delays every read and peek of the wrapped stream. The
// results are passed through unchanged.
type SlowInputStream struct {
	in        InputStream
	latencies LatencyGenerator
}

// NewSlowInputStream wraps in with an average delay of latency.
func NewSlowInputStream(in InputStream, latency time.Duration) *SlowInputStream {
	return NewSlowInputStreamWithGenerator(in, NewLatencyGenerator(latency))
}

// NewSlowInputStreamWithGenerator wraps in, drawing delays from latencies.
func NewSlowInputStreamWithGenerator(in InputStream, latencies LatencyGenerator) *SlowInputStream {
	return &SlowInputStream{in: in, latencies: latencies}
}

// Close closes the wrapped stream.
func (s *SlowInputStream) Close() error {
	return s.in.Close()
}

// Closed reports whether the wrapped stream is closed.
func (s *SlowInputStream) Closed() bool {
	return s.in.Closed()
}

// Tell returns the position of the wrapped stream.
func (s *SlowInputStream) Tell() (int64, error) {
	return s.in.Tell()
}

// Read sleeps, then reads from the wrapped stream.
func (s *SlowInputStream) Read(p []byte) (int, error) {
	s.latencies.Sleep()
	return s.in.Read(p)
}

// ReadBuffer sleeps, then reads from the wrapped stream.
func (s *SlowInputStream) ReadBuffer(n int64) (*memory.Buffer, error) {
	s.latencies.Sleep()
	return s.in.ReadBuffer(n)
}

// Peek sleeps, then peeks the wrapped stream.
func (s *SlowInputStream) Peek(n int) ([]byte, error) {
	s.latencies.Sleep()
	return s.in.Peek(n)
}

// SlowRandomAccessFile is SlowInputStream for a RandomAccessFile.
// Positional reads are delayed too; Seek and Size are not.
type SlowRandomAccessFile struct {
	SlowInputStream
	file RandomAccessFile
}

// NewSlowRandomAccessFile wraps file with an average delay of latency.
func NewSlowRandomAccessFile(file RandomAccessFile, latency time.Duration) *SlowRandomAccessFile {
	return NewSlowRandomAccessFileWithGenerator(file, NewLatencyGenerator(latency))
}

// NewSlowRandomAccessFileWithGenerator wraps file, drawing delays from
// latencies.
func NewSlowRandomAccessFileWithGenerator(file RandomAccessFile, latencies LatencyGenerator) *SlowRandomAccessFile {
	return &SlowRandomAccessFile{
		SlowInputStream: SlowInputStream{in: file, latencies: latencies},
		file:            file,
	}
}

// Seek seeks the wrapped file.
func (s *SlowRandomAccessFile) Seek(offset int64, whence int) (int64, error) {
	return s.file.Seek(offset, whence)
}

// Size returns the size of the wrapped file.
func (s *SlowRandomAccessFile) Size() (int64, error) {
	return s.file.Size()
}

// ReadAt sleeps, then reads from the wrapped file.
func (s *SlowRandomAccessFile) ReadAt(p []byte, off int64) (int, error) {
	s.latencies.Sleep()
	return s.file.ReadAt(p, off)
}

// ReadBufferAt sleeps, then reads from the wrapped file.
func (s *SlowRandomAccessFile) ReadBufferAt(pos, n int64) (*memory.Buffer, error) {
	s.latencies.Sleep()
	return s.file.ReadBufferAt(pos, n)
}
