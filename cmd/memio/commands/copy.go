package commands

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
	"github.com/haivivi/memio/pkg/memory"
	"github.com/haivivi/memio/pkg/stream"
)

// CopyRun is one timed write into a fixed-size buffer.
type CopyRun struct {
	Threads    int    `json:"threads" yaml:"threads"`
	Elapsed    string `json:"elapsed" yaml:"elapsed"`
	Throughput string `json:"throughput" yaml:"throughput"`
}

// CopyReport is the result of "memio copy".
type CopyReport struct {
	Size      int64     `json:"size" yaml:"size"`
	Threshold int64     `json:"threshold" yaml:"threshold"`
	BlockSize int       `json:"block_size" yaml:"block_size"`
	Runs      []CopyRun `json:"runs" yaml:"runs"`
}

// Table implements cli.Tabular.
func (r *CopyReport) Table() cli.Table {
	t := cli.Table{
		Title:  "copy " + cli.FormatBytes(r.Size),
		Header: []string{"THREADS", "ELAPSED", "THROUGHPUT"},
		Footer: fmt.Sprintf("threshold %s, block %d", cli.FormatBytes(r.Threshold), r.BlockSize),
	}
	for _, run := range r.Runs {
		t.Rows = append(t.Rows, []string{strconv.Itoa(run.Threads), run.Elapsed, run.Throughput})
	}
	return t
}

var (
	copySize      cli.Size = 64 << 20
	copyThreads   int
	copyThreshold cli.Size
	copyBlockSize int
	copySeed      uint64
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Benchmark serial and parallel buffer copies",
	Long: `Write --size random bytes into a fixed-size buffer once with a single
thread and once with --threads, and report the time taken by each.

Copies larger than --threshold are split across threads in chunks aligned
to --block-size.

Examples:
  memio copy --size 256MiB --threads 4
  memio copy --size 8MiB --threads 8 --threshold 64KiB --format table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}
		threads := prof.MemcopyThreads
		if cmd.Flags().Changed("threads") {
			threads = copyThreads
		}
		threshold := int64(prof.MemcopyThreshold)
		if cmd.Flags().Changed("threshold") {
			threshold = int64(copyThreshold)
		}
		size := int64(copySize)
		if size <= 0 {
			return fmt.Errorf("size must be positive")
		}

		alloc := prof.NewAllocator()
		src, err := memory.AllocateWith(alloc, size)
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewPCG(copySeed, copySeed^0x9e3779b97f4a7c15))
		data := src.MutableBytes()
		for i := range data {
			data[i] = byte(rng.Uint32())
		}

		report := &CopyReport{Size: size, Threshold: threshold, BlockSize: copyBlockSize}
		counts := []int{1}
		if threads > 1 {
			counts = append(counts, threads)
		}
		for _, n := range counts {
			dst, err := memory.AllocateWith(alloc, size)
			if err != nil {
				return err
			}
			w, err := stream.NewFixedSizeBufferWriter(dst)
			if err != nil {
				return err
			}
			w.SetMemcopyThreads(n)
			w.SetMemcopyThreshold(threshold)
			w.SetMemcopyBlockSize(copyBlockSize)

			start := time.Now()
			if _, err := w.Write(data); err != nil {
				return err
			}
			elapsed := time.Since(start)
			if err := w.Close(); err != nil {
				return err
			}
			if !bytes.Equal(dst.Bytes(), data) {
				return fmt.Errorf("copy with %d thread(s) produced different bytes", n)
			}

			report.Runs = append(report.Runs, CopyRun{
				Threads:    n,
				Elapsed:    cli.FormatDuration(elapsed),
				Throughput: throughput(size, elapsed),
			})
		}

		return outputResult(report)
	},
}

func throughput(n int64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return cli.FormatBytes(int64(float64(n)/d.Seconds())) + "/s"
}

func init() {
	copyCmd.Flags().Var(&copySize, "size", "bytes to copy")
	copyCmd.Flags().IntVar(&copyThreads, "threads", 4, "goroutines for the parallel run (default from profile)")
	copyCmd.Flags().Var(&copyThreshold, "threshold", "minimum size for a parallel copy (default from profile)")
	copyCmd.Flags().IntVar(&copyBlockSize, "block-size", stream.DefaultMemcopyBlockSize, "chunk alignment for parallel copies")
	copyCmd.Flags().Uint64Var(&copySeed, "seed", 1, "seed for the random source data")

	rootCmd.AddCommand(copyCmd)
}
