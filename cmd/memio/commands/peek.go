package commands

import (
	"encoding/hex"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
	"github.com/haivivi/memio/pkg/stream"
)

// PeekReport is the result of "memio peek".
type PeekReport struct {
	Source   string `json:"source" yaml:"source"`
	Size     int64  `json:"size" yaml:"size"`
	Position int64  `json:"position" yaml:"position"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
	Hex      string `json:"hex" yaml:"hex"`
}

// Table implements cli.Tabular.
func (r *PeekReport) Table() cli.Table {
	return cli.Table{
		Title:  r.Source,
		Header: []string{"SIZE", "POSITION", "PEEKED", "HEX"},
		Rows:   [][]string{{cli.FormatBytes(r.Size), cli.FormatBytes(r.Position), cli.FormatBytes(int64(r.Bytes)), r.Hex}},
	}
}

var (
	peekCount   int
	peekSkip    cli.Size
	peekLatency time.Duration
)

var peekCmd = &cobra.Command{
	Use:   "peek <source>",
	Short: "Show the next bytes of a source without consuming them",
	Long: `Peek at up to -n bytes after --skip. The stream position is reported
after the peek to show that peeking does not advance it.

Examples:
  memio peek data.bin -n 16
  memio peek s3://bucket/data.bin --skip 1KiB -n 8 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}

		buf, _, err := loadSource(cmd.Context(), prof, args[0])
		if err != nil {
			return err
		}

		var in stream.InputStream = stream.NewBufferReader(buf)
		latency := prof.Latency
		if cmd.Flags().Changed("latency") {
			latency = peekLatency
		}
		if latency > 0 {
			in = stream.NewSlowInputStream(in, latency)
		}
		defer in.Close()

		if peekSkip > 0 {
			if _, err := in.ReadBuffer(int64(peekSkip)); err != nil {
				return err
			}
		}
		view, err := in.Peek(peekCount)
		if err != nil {
			return err
		}
		pos, err := in.Tell()
		if err != nil {
			return err
		}

		return outputResult(&PeekReport{
			Source:   args[0],
			Size:     buf.Len(),
			Position: pos,
			Bytes:    len(view),
			Hex:      hex.EncodeToString(view),
		})
	},
}

func init() {
	peekCmd.Flags().IntVarP(&peekCount, "count", "n", 16, "number of bytes to peek")
	peekCmd.Flags().Var(&peekSkip, "skip", "bytes to consume before peeking")
	peekCmd.Flags().DurationVar(&peekLatency, "latency", 0, "average latency injected before each read")

	rootCmd.AddCommand(peekCmd)
}
