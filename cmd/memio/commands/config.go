package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/memio/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage memio profiles.

Configuration is stored in ~/.memio/config.yaml. Each profile holds copy,
iteration, latency, allocator and S3 settings. Commands use the profile
given with -p, else the current profile, else built-in defaults.`,
}

var configAddProfileCmd = &cobra.Command{
	Use:   "add-profile <name>",
	Short: "Add or replace a profile",
	Long: `Add or replace a profile.

Examples:
  memio config add-profile bench --memcopy-threads 8 --memcopy-threshold 256KiB
  memio config add-profile minio --s3-endpoint http://localhost:9000 --s3-bucket data`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()

		p := &cli.Profile{}
		p.MemcopyThreads, _ = flags.GetInt("memcopy-threads")
		if v := flags.Lookup("memcopy-threshold"); v.Changed {
			p.MemcopyThreshold = *v.Value.(*cli.Size)
		}
		if v := flags.Lookup("block-size"); v.Changed {
			p.BlockSize = *v.Value.(*cli.Size)
		}
		if v := flags.Lookup("max-allocation"); v.Changed {
			p.Allocator.MaxAllocation = *v.Value.(*cli.Size)
		}
		p.Latency, _ = flags.GetDuration("latency")

		s3 := &cli.S3Profile{}
		s3.Region, _ = flags.GetString("s3-region")
		s3.Endpoint, _ = flags.GetString("s3-endpoint")
		s3.Bucket, _ = flags.GetString("s3-bucket")
		s3.Prefix, _ = flags.GetString("s3-prefix")
		s3.AccessKeyID, _ = flags.GetString("s3-access-key-id")
		s3.SecretAccessKey, _ = flags.GetString("s3-secret-access-key")
		if *s3 != (cli.S3Profile{}) {
			p.S3 = s3
		}

		if err := cfg.AddProfile(args[0], p); err != nil {
			return err
		}
		fmt.Printf("Profile '%s' saved to %s\n", args[0], cfg.Path())
		return nil
	},
}

var configDeleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Profile '%s' deleted\n", args[0])
		return nil
	},
}

var configUseProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to profile '%s'\n", args[0])
		return nil
	},
}

var configListProfilesCmd = &cobra.Command{
	Use:   "list-profiles",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Println("No profiles configured")
			return nil
		}
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, name)
		}
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the resolved profile with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}
		return outputResult(prof.Masked())
	},
}

func init() {
	f := configAddProfileCmd.Flags()
	f.Int("memcopy-threads", 0, "goroutines used for large copies")
	f.Var(new(cli.Size), "memcopy-threshold", "copy size above which copies run in parallel")
	f.Var(new(cli.Size), "block-size", "default iteration block size")
	f.Var(new(cli.Size), "max-allocation", "largest single allocation (0 = unlimited)")
	f.Duration("latency", 0, "average injected read latency")
	f.String("s3-region", "", "S3 region")
	f.String("s3-endpoint", "", "S3-compatible endpoint URL")
	f.String("s3-bucket", "", "default S3 bucket the prefix applies to")
	f.String("s3-prefix", "", "key prefix for S3 objects")
	f.String("s3-access-key-id", "", "S3 access key ID")
	f.String("s3-secret-access-key", "", "S3 secret access key")

	configCmd.AddCommand(configAddProfileCmd)
	configCmd.AddCommand(configDeleteProfileCmd)
	configCmd.AddCommand(configUseProfileCmd)
	configCmd.AddCommand(configListProfilesCmd)
	configCmd.AddCommand(configViewCmd)

	rootCmd.AddCommand(configCmd)
}
