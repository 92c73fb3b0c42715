// Package main is the entry point for the memio CLI.
//
// Usage:
//
//	memio [flags] <command> [args]
//
// Commands:
//
//	chunk    - Iterate a source in fixed-size blocks
//	slice    - Extract a byte window from a source
//	peek     - Show the first bytes of a source without consuming them
//	concat   - Concatenate sources into one buffer
//	copy     - Benchmark serial and parallel buffer copies
//	config   - Manage profiles
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/memio/cmd/memio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
