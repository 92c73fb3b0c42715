package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/memio/pkg/memory"
	"github.com/haivivi/memio/pkg/storage"
	"github.com/haivivi/memio/pkg/stream"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".memio"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
	// DefaultBlockSize is the iteration block size used when a profile sets none
	DefaultBlockSize = 64 << 10
)

// Config holds named profiles and the one currently in use.
type Config struct {
	// CurrentProfile is the name of the currently active profile
	CurrentProfile string `yaml:"current_profile,omitempty"`

	// Profiles is a map of profile name to profile settings
	Profiles map[string]*Profile `yaml:"profiles,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Profile groups the tunables applied to streams built by the CLI.
type Profile struct {
	// Name is the profile name
	Name string `yaml:"name"`

	// MemcopyThreads is the number of goroutines used for large copies
	MemcopyThreads int `yaml:"memcopy_threads,omitempty"`

	// MemcopyThreshold is the copy size above which copies run in parallel
	MemcopyThreshold Size `yaml:"memcopy_threshold,omitempty"`

	// BlockSize is the default chunk size for iteration
	BlockSize Size `yaml:"block_size,omitempty"`

	// Latency is the average delay injected by --latency
	Latency time.Duration `yaml:"latency,omitempty"`

	// Allocator limits buffer allocation
	Allocator AllocatorConfig `yaml:"allocator,omitempty"`

	// S3 configures s3:// sources and destinations (optional)
	S3 *S3Profile `yaml:"s3,omitempty"`
}

// AllocatorConfig configures the heap allocator.
type AllocatorConfig struct {
	// MaxAllocation rejects single allocations above this size (0 = unlimited)
	MaxAllocation Size `yaml:"max_allocation,omitempty"`
}

// S3Profile is the S3 endpoint plus an optional default bucket and prefix.
type S3Profile struct {
	storage.S3Config `yaml:",inline"`

	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// DefaultProfile returns the settings used when no profile is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Name:             "default",
		MemcopyThreads:   stream.DefaultMemcopyThreads,
		MemcopyThreshold: stream.DefaultMemcopyThreshold,
		BlockSize:        DefaultBlockSize,
	}
}

// withDefaults returns a copy with zero values replaced by defaults.
func (p *Profile) withDefaults() *Profile {
	out := *p
	def := DefaultProfile()
	if out.MemcopyThreads <= 0 {
		out.MemcopyThreads = def.MemcopyThreads
	}
	if out.MemcopyThreshold <= 0 {
		out.MemcopyThreshold = def.MemcopyThreshold
	}
	if out.BlockSize <= 0 {
		out.BlockSize = def.BlockSize
	}
	return &out
}

// NewAllocator returns a heap allocator honoring the profile's limit.
func (p *Profile) NewAllocator() *memory.HeapAllocator {
	return &memory.HeapAllocator{MaxAllocation: int64(p.Allocator.MaxAllocation)}
}

// LoadConfig loads the configuration from ~/.memio/config.yaml
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path. A missing file
// yields an empty configuration; nothing is written until Save.
func LoadConfigWithPath(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, DefaultConfigFile)
	}

	cfg := &Config{
		Profiles:   make(map[string]*Profile),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	for name, p := range cfg.Profiles {
		if p == nil {
			p = &Profile{}
			cfg.Profiles[name] = p
		}
		p.Name = name
	}
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddProfile adds or replaces a profile
func (c *Config) AddProfile(name string, p *Profile) error {
	p.Name = name
	c.Profiles[name] = p
	return c.Save()
}

// DeleteProfile removes a profile
func (c *Config) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// UseProfile sets the current profile
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	c.CurrentProfile = name
	return c.Save()
}

// GetProfile returns a specific profile with defaults applied
func (c *Config) GetProfile(name string) (*Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return p.withDefaults(), nil
}

// ResolveProfile returns the named profile, else the current one, else
// DefaultProfile.
func (c *Config) ResolveProfile(name string) (*Profile, error) {
	if name != "" {
		return c.GetProfile(name)
	}
	if c.CurrentProfile != "" {
		return c.GetProfile(c.CurrentProfile)
	}
	return DefaultProfile(), nil
}

// ListProfiles returns all profile names in sorted order
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MaskSecret masks a credential for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Masked returns a copy of the profile safe to print.
func (p *Profile) Masked() *Profile {
	out := *p
	if p.S3 != nil {
		s3 := *p.S3
		s3.SecretAccessKey = MaskSecret(s3.SecretAccessKey)
		s3.SessionToken = MaskSecret(s3.SessionToken)
		out.S3 = &s3
	}
	return &out
}
