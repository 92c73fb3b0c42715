package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
	"github.com/haivivi/memio/pkg/stream"
)

// ConcatReport is printed when "memio concat" writes to a destination.
type ConcatReport struct {
	Sources     []string `json:"sources" yaml:"sources"`
	Destination string   `json:"destination" yaml:"destination"`
	Bytes       int64    `json:"bytes" yaml:"bytes"`
	Allocations int64    `json:"allocations" yaml:"allocations"`
}

// Table implements cli.Tabular.
func (r *ConcatReport) Table() cli.Table {
	t := cli.Table{
		Title:  r.Destination,
		Header: []string{"SOURCE"},
		Footer: fmt.Sprintf("%s in %d allocation(s)", cli.FormatBytes(r.Bytes), r.Allocations),
	}
	for _, s := range r.Sources {
		t.Rows = append(t.Rows, []string{s})
	}
	return t
}

var (
	concatDest     string
	concatCapacity cli.Size
)

var concatCmd = &cobra.Command{
	Use:   "concat <source>...",
	Short: "Concatenate sources into one buffer",
	Long: `Append every source to a growing in-memory output stream, then write the
finished buffer to --dest, or raw to stdout (or -o).

The profile's allocator.max_allocation bounds the output buffer.

Examples:
  memio concat a.bin b.bin --dest ab.bin
  memio concat s3://bucket/a s3://bucket/b --initial-capacity 1MiB -o ab.bin`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		alloc := prof.NewAllocator()
		out, err := stream.CreateBufferOutputStream(int64(concatCapacity), alloc)
		if err != nil {
			return err
		}
		defer out.Close()

		for _, src := range args {
			buf, _, err := loadSource(ctx, prof, src)
			if err != nil {
				return err
			}
			if _, err := out.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("append %s: %w", src, err)
			}
		}
		result, err := out.Finish()
		if err != nil {
			return err
		}
		printVerbose("concatenated %d source(s): %s", len(args), cli.FormatBytes(result.Len()))

		if concatDest == "" {
			return cli.Output(result.Bytes(), cli.OutputOptions{
				Format: cli.FormatRaw,
				File:   outputFile,
			})
		}
		dest, err := saveDest(ctx, prof, concatDest, result)
		if err != nil {
			return err
		}
		return outputResult(&ConcatReport{
			Sources:     args,
			Destination: dest,
			Bytes:       result.Len(),
			Allocations: alloc.Allocations(),
		})
	},
}

func init() {
	concatCmd.Flags().StringVar(&concatDest, "dest", "", "write the result to a local path, s3:// URL or badger:DIR#KEY (a trailing / picks a random name)")
	concatCmd.Flags().Var(&concatCapacity, "initial-capacity", "initial output buffer capacity")

	rootCmd.AddCommand(concatCmd)
}
