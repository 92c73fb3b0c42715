package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haivivi/memio/pkg/storage"
	"github.com/haivivi/memio/pkg/stream"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"AKIAABCDEFGHIJ", "AKIA******GHIJ"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := MaskSecret(tt.key); got != tt.want {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadConfigWithPath_Missing(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
	if len(cfg.Profiles) != 0 {
		t.Errorf("Profiles = %v, want empty", cfg.ListProfiles())
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Errorf("loading a missing config should not create it, stat err = %v", err)
	}

	p, err := cfg.ResolveProfile("")
	if err != nil {
		t.Fatalf("ResolveProfile error: %v", err)
	}
	if p.MemcopyThreads != stream.DefaultMemcopyThreads || p.BlockSize != DefaultBlockSize {
		t.Errorf("default profile = %+v", p)
	}
}

func TestLoadConfigWithPath_File(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := `current_profile: bench
profiles:
  bench:
    memcopy_threads: 4
    memcopy_threshold: 256KiB
    latency: 5ms
    allocator:
      max_allocation: 1GiB
    s3:
      region: us-east-1
      endpoint: http://localhost:9000
      bucket: data
      prefix: arrow
  empty:
`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if got := cfg.ListProfiles(); len(got) != 2 || got[0] != "bench" || got[1] != "empty" {
		t.Fatalf("ListProfiles() = %v", got)
	}

	p, err := cfg.ResolveProfile("")
	if err != nil {
		t.Fatalf("ResolveProfile error: %v", err)
	}
	if p.Name != "bench" || p.MemcopyThreads != 4 || p.MemcopyThreshold != 256<<10 {
		t.Errorf("profile = %+v", p)
	}
	if p.Latency != 5*time.Millisecond {
		t.Errorf("Latency = %v", p.Latency)
	}
	if p.BlockSize != DefaultBlockSize {
		t.Errorf("BlockSize = %v, want default", p.BlockSize)
	}
	if p.S3 == nil || p.S3.Bucket != "data" || p.S3.Prefix != "arrow" || p.S3.Region != "us-east-1" {
		t.Fatalf("S3 = %+v", p.S3)
	}
	if got := p.NewAllocator().MaxAllocation; got != 1<<30 {
		t.Errorf("MaxAllocation = %d", got)
	}

	empty, err := cfg.ResolveProfile("empty")
	if err != nil {
		t.Fatalf("ResolveProfile(empty) error: %v", err)
	}
	if empty.MemcopyThreshold != stream.DefaultMemcopyThreshold {
		t.Errorf("empty profile threshold = %v", empty.MemcopyThreshold)
	}

	if _, err := cfg.ResolveProfile("missing"); err == nil {
		t.Error("ResolveProfile(missing) should fail")
	}
}

func TestConfig_Profiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if err := cfg.AddProfile("fast", &Profile{MemcopyThreads: 8}); err != nil {
		t.Fatalf("AddProfile error: %v", err)
	}
	if cfg.Dir() != filepath.Join(tmpDir, "nested") {
		t.Errorf("Dir() = %q", cfg.Dir())
	}
	if err := cfg.UseProfile("slow"); err == nil {
		t.Error("UseProfile(slow) should fail")
	}
	if err := cfg.UseProfile("fast"); err != nil {
		t.Fatalf("UseProfile error: %v", err)
	}

	// Load again
	cfg2, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if cfg2.CurrentProfile != "fast" {
		t.Errorf("CurrentProfile = %q, want %q", cfg2.CurrentProfile, "fast")
	}
	p, err := cfg2.GetProfile("fast")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.MemcopyThreads != 8 {
		t.Errorf("MemcopyThreads = %d, want 8", p.MemcopyThreads)
	}

	if err := cfg2.DeleteProfile("fast"); err != nil {
		t.Fatalf("DeleteProfile error: %v", err)
	}
	if cfg2.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q after delete", cfg2.CurrentProfile)
	}
	if err := cfg2.DeleteProfile("fast"); err == nil {
		t.Error("deleting twice should fail")
	}
}

func TestProfile_Masked(t *testing.T) {
	p := &Profile{S3: &S3Profile{S3Config: storage.S3Config{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMIK7MDENG",
	}}}
	m := p.Masked()
	if m.S3.SecretAccessKey != "wJal************DENG" {
		t.Errorf("SecretAccessKey = %q", m.S3.SecretAccessKey)
	}
	if p.S3.SecretAccessKey != "wJalrXUtnFEMIK7MDENG" {
		t.Error("Masked modified the original")
	}
}
