package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/haivivi/memio/pkg/memory"
)

func TestBoundedStream_GetStream(t *testing.T) {
	data := "data1data2data3data4data5"
	buf := memory.FromString(data)
	file := NewBufferReader(buf)

	s1, err := NewBoundedStream(file, 0, 10)
	if err != nil {
		t.Fatalf("NewBoundedStream error: %v", err)
	}
	s2, err := NewBoundedStream(file, 9, 16)
	if err != nil {
		t.Fatalf("NewBoundedStream error: %v", err)
	}

	if pos, err := s1.Tell(); err != nil || pos != 0 {
		t.Fatalf("Tell() = %d, %v", pos, err)
	}

	p := make([]byte, 20)
	n, err := s2.Read(p[:4])
	if err != nil || string(p[:n]) != "2dat" {
		t.Fatalf("s2.Read = %q, %v", p[:n], err)
	}
	if pos, _ := s2.Tell(); pos != 4 {
		t.Fatalf("s2.Tell() = %d", pos)
	}

	n, err = s1.Read(p[:6])
	if err != nil || string(p[:n]) != "data1d" {
		t.Fatalf("s1.Read = %q, %v", p[:n], err)
	}
	if pos, _ := s1.Tell(); pos != 6 {
		t.Fatalf("s1.Tell() = %d", pos)
	}

	got, err := s1.ReadBuffer(2)
	if err != nil {
		t.Fatalf("ReadBuffer error: %v", err)
	}
	want, _ := buf.Slice(6, 2)
	if !want.Equals(got) {
		t.Fatalf("ReadBuffer = %q, want %q", got.String(), want.String())
	}

	// Read to the end of each stream.
	n, err = s1.Read(p[:4])
	if err != nil || string(p[:n]) != "a2" {
		t.Fatalf("s1.Read = %q, %v", p[:n], err)
	}
	if pos, _ := s1.Tell(); pos != 10 {
		t.Fatalf("s1.Tell() = %d", pos)
	}
	if n, err = s1.Read(p[:1]); n != 0 || err != io.EOF {
		t.Fatalf("s1.Read at end = %d, %v", n, err)
	}
	if pos, _ := s1.Tell(); pos != 10 {
		t.Fatalf("s1.Tell() = %d", pos)
	}

	// s2 had its extent limited.
	got, err = s2.ReadBuffer(20)
	if err != nil {
		t.Fatalf("ReadBuffer error: %v", err)
	}
	want, _ = buf.Slice(13, 12)
	if !want.Equals(got) {
		t.Fatalf("ReadBuffer = %q, want %q", got.String(), want.String())
	}
	got, err = s2.ReadBuffer(1)
	if err != nil || got.Len() != 0 {
		t.Fatalf("ReadBuffer at end = %d bytes, %v", got.Len(), err)
	}
	if pos, _ := s2.Tell(); pos != 16 {
		t.Fatalf("s2.Tell() = %d", pos)
	}

	if err := s1.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if !s1.Closed() {
		t.Fatal("s1 should be closed")
	}
	if _, err := s1.Tell(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Tell after Close error = %v", err)
	}
	if _, err := s1.ReadBuffer(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("ReadBuffer after Close error = %v", err)
	}
	if _, err := s1.Read(p[:1]); !errors.Is(err, ErrClosed) {
		t.Fatalf("Read after Close error = %v", err)
	}

	// Closing a view leaves the file and other views alone.
	if file.Closed() {
		t.Fatal("closing a view closed the file")
	}
	if pos, _ := file.Tell(); pos != 0 {
		t.Fatalf("views moved the file position to %d", pos)
	}
}

func TestBoundedStream_MatchesFile(t *testing.T) {
	data := "0123456789abcdefghijklmnopqrstuvwxyz"
	file := NewBufferReaderFromString(data)

	for start := int64(0); start <= int64(len(data)); start += 5 {
		for length := int64(0); start+length <= int64(len(data)); length += 7 {
			s, err := NewBoundedStream(file, start, length)
			if err != nil {
				t.Fatalf("NewBoundedStream error: %v", err)
			}
			for _, n := range []int64{3, 0, 11, 100} {
				pos, _ := s.Tell()
				want := data[start+pos : start+pos+min(n, length-pos)]
				got, err := s.ReadBuffer(n)
				if err != nil {
					t.Fatalf("ReadBuffer error: %v", err)
				}
				if got.String() != want {
					t.Fatalf("window [%d,+%d) at %d read %d = %q, want %q",
						start, length, pos, n, got.String(), want)
				}
			}
		}
	}
}

func TestBoundedStream_Peek(t *testing.T) {
	s, err := NewBoundedStream(NewBufferReaderFromString("abcdefgh"), 2, 4)
	if err != nil {
		t.Fatalf("NewBoundedStream error: %v", err)
	}
	view, err := s.Peek(10)
	if err != nil || string(view) != "cdef" {
		t.Fatalf("Peek = %q, %v", view, err)
	}
	if pos, _ := s.Tell(); pos != 0 {
		t.Fatalf("Peek moved position to %d", pos)
	}
}

func TestBoundedStream_ClosedFile(t *testing.T) {
	file := NewBufferReaderFromString("abcdef")
	s, err := NewBoundedStream(file, 0, 3)
	if err != nil {
		t.Fatalf("NewBoundedStream error: %v", err)
	}
	file.Close()
	if _, err := s.ReadBuffer(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("ReadBuffer over closed file error = %v", err)
	}
}

func TestBoundedStream_InvalidWindow(t *testing.T) {
	file := NewBufferReaderFromString("abc")
	if _, err := NewBoundedStream(file, -1, 1); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative start error = %v", err)
	}
	if _, err := NewBoundedStream(file, 0, -1); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative length error = %v", err)
	}
}
