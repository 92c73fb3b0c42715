// Package cli provides common utilities for the memio command-line tool.
//
// This package includes:
//   - Named profiles (YAML config with copy, iteration and storage settings)
//   - Output formatting (YAML, JSON, msgpack, lipgloss tables, raw)
//   - Human-readable byte sizes for flags and config values
//
// Example usage:
//
//	cfg, err := cli.LoadConfigWithPath("memio.yaml")
//	prof, err := cfg.ResolveProfile("")
//
//	// Output result
//	cli.Output(report, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
