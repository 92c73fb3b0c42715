package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
)

// configEnv overrides the default config file location.
const configEnv = "MEMIO_CONFIG"

var (
	// Global flags
	cfgFile      string
	profileName  string
	outputFile   string
	formatOutput string
	verbose      bool

	// Global configuration
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "memio",
	Short: "In-memory stream toolkit",
	Long: `memio - load files or S3 objects into memory buffers and work with them
through in-memory streams.

Sources are local paths, s3://bucket/key URLs or badger:DIR#KEY references
to values in a BadgerDB database.

Configuration is stored in ~/.memio/config.yaml (override with --config or
$MEMIO_CONFIG) and holds named profiles with copy, iteration and S3 settings.

Examples:
  # Split a file into 1 MiB chunks
  memio chunk data.bin -b 1MiB

  # Extract bytes [4096, 4096+512) of an S3 object into a local file
  memio slice s3://bucket/data.bin --offset 4096 --length 512 --dest part.bin

  # Compare serial and parallel copies of 256 MiB
  memio copy --size 256MiB --threads 4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.memio/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "yaml", "output format: yaml, json, msgpack, table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configLoadErr stores the error from LoadConfigWithPath for deferred reporting.
var configLoadErr error

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	path := cfgFile
	if path == "" {
		path = os.Getenv(configEnv)
	}
	globalConfig, configLoadErr = cli.LoadConfigWithPath(path)
}

// getConfig returns the global configuration.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// getProfile returns the profile selected by -p, the current profile, or the
// defaults.
func getProfile() (*cli.Profile, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ResolveProfile(profileName)
}

// outputResult prints a command result in the selected format.
func outputResult(result any) error {
	return cli.Output(result, cli.OutputOptions{
		Format: cli.OutputFormat(formatOutput),
		File:   outputFile,
	})
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
