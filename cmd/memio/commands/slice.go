package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
	"github.com/haivivi/memio/pkg/stream"
)

// SliceReport is printed when "memio slice" writes to a destination.
type SliceReport struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Offset      int64  `json:"offset" yaml:"offset"`
	Length      int64  `json:"length" yaml:"length"`
}

// Table implements cli.Tabular.
func (r *SliceReport) Table() cli.Table {
	return cli.Table{
		Title:  r.Source + " -> " + r.Destination,
		Header: []string{"OFFSET", "LENGTH"},
		Rows:   [][]string{{fmt.Sprint(r.Offset), cli.FormatBytes(r.Length)}},
	}
}

var (
	sliceOffset  cli.Size
	sliceLength  cli.Size
	sliceDest    string
	sliceLatency time.Duration
)

var sliceCmd = &cobra.Command{
	Use:   "slice <source>",
	Short: "Extract a byte window from a source",
	Long: `Read the window [offset, offset+length) of a source through a bounded
stream. A window extending past the end of the source is clipped.

Without --dest the bytes are written raw to stdout (or -o).

Examples:
  memio slice data.bin --offset 1KiB --length 512 -o part.bin
  memio slice s3://bucket/data.bin --offset 4096 --dest s3://bucket/part.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		buf, _, err := loadSource(ctx, prof, args[0])
		if err != nil {
			return err
		}

		var file stream.RandomAccessFile = stream.NewBufferReader(buf)
		latency := prof.Latency
		if cmd.Flags().Changed("latency") {
			latency = sliceLatency
		}
		if latency > 0 {
			file = stream.NewSlowRandomAccessFile(file, latency)
		}
		defer file.Close()

		length := int64(sliceLength)
		if !cmd.Flags().Changed("length") {
			length = max(buf.Len()-int64(sliceOffset), 0)
		}
		window, err := stream.NewBoundedStream(file, int64(sliceOffset), length)
		if err != nil {
			return err
		}
		defer window.Close()

		part, err := stream.ReadAll(window)
		if err != nil {
			return err
		}
		printVerbose("window [%d, +%d) holds %d byte(s)", sliceOffset, length, part.Len())

		if sliceDest == "" {
			return cli.Output(part.Bytes(), cli.OutputOptions{
				Format: cli.FormatRaw,
				File:   outputFile,
			})
		}
		dest, err := saveDest(ctx, prof, sliceDest, part)
		if err != nil {
			return err
		}
		return outputResult(&SliceReport{
			Source:      args[0],
			Destination: dest,
			Offset:      int64(sliceOffset),
			Length:      part.Len(),
		})
	},
}

func init() {
	sliceCmd.Flags().Var(&sliceOffset, "offset", "window start")
	sliceCmd.Flags().Var(&sliceLength, "length", "window length (default: to the end)")
	sliceCmd.Flags().StringVar(&sliceDest, "dest", "", "write the window to a local path, s3:// URL or badger:DIR#KEY (a trailing / picks a random name)")
	sliceCmd.Flags().DurationVar(&sliceLatency, "latency", 0, "average latency injected before each read")

	rootCmd.AddCommand(sliceCmd)
}
