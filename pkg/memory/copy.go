package memory

import "sync"

// ParallelCopy copies min(len(dst), len(src)) bytes from src to dst using
// up to threads goroutines and returns the number of bytes copied.
//
// The range is cut into threads contiguous chunks of equal size, rounded
// down to a multiple of blockSize when blockSize > 1; the last chunk takes
// the remainder. Chunks never overlap, and ParallelCopy returns only after
// every chunk is done. The result is identical to copy(dst, src).
func ParallelCopy(dst, src []byte, threads, blockSize int) int {
	n := min(len(dst), len(src))
	if threads <= 1 || n < threads {
		return copy(dst, src)
	}

	chunk := n / threads
	if blockSize > 1 && chunk >= blockSize {
		chunk -= chunk % blockSize
	}

	var wg sync.WaitGroup
	wg.Add(threads)
	for i := range threads {
		lo := i * chunk
		hi := lo + chunk
		if i == threads-1 {
			hi = n
		}
		go func() {
			defer wg.Done()
			copy(dst[lo:hi], src[lo:hi])
		}()
	}
	wg.Wait()
	return n
}
