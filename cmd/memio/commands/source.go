package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/haivivi/memio/pkg/cli"
	"github.com/haivivi/memio/pkg/memory"
	"github.com/haivivi/memio/pkg/storage"
)

const (
	s3Scheme     = "s3://"
	badgerScheme = "badger:"
)

// location is a FileStore plus the path of one file inside it.
type location struct {
	store storage.FileStore
	path  string
	close func() error
}

// Close releases the store if it holds resources.
func (l *location) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// newS3Client is replaced in tests.
var newS3Client = func(cfg storage.S3Config) storage.S3Client {
	return storage.NewS3Client(cfg)
}

// resolveLocation maps a local path, s3://bucket/key URL or badger:DIR#KEY
// reference to a store.
func resolveLocation(prof *cli.Profile, src string) (*location, error) {
	if rest, ok := strings.CutPrefix(src, badgerScheme); ok {
		dir, key, _ := strings.Cut(rest, "#")
		if dir == "" || key == "" {
			return nil, fmt.Errorf("invalid badger reference %q, want badger:DIR#KEY", src)
		}
		db, err := storage.NewBadger(storage.BadgerOptions{
			Dir:       dir,
			Allocator: prof.NewAllocator(),
		})
		if err != nil {
			return nil, err
		}
		return &location{store: db, path: key, close: db.Close}, nil
	}

	if rest, ok := strings.CutPrefix(src, s3Scheme); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid S3 URL %q, want s3://bucket/key", src)
		}
		var cfg storage.S3Config
		prefix := ""
		if prof.S3 != nil {
			cfg = prof.S3.S3Config
			if prof.S3.Bucket == "" || prof.S3.Bucket == bucket {
				prefix = prof.S3.Prefix
			}
		}
		s3cfg := withEnvCredentials(cfg)
		slog.Debug("memio: s3 location", "bucket", bucket, "key", key, "region", s3cfg.Region, "endpoint", s3cfg.Endpoint)
		return &location{
			store: storage.NewS3(newS3Client(s3cfg), bucket, prefix).WithAllocator(prof.NewAllocator()),
			path:  key,
		}, nil
	}

	if src == "" {
		return nil, fmt.Errorf("empty source")
	}
	dir, name := filepath.Split(src)
	if dir == "" {
		dir = "."
	}
	local, err := storage.NewLocal(dir)
	if err != nil {
		return nil, err
	}
	return &location{store: local, path: name}, nil
}

// withEnvCredentials fills unset fields from the standard AWS environment
// variables.
func withEnvCredentials(cfg storage.S3Config) storage.S3Config {
	fill := func(v *string, keys ...string) {
		for _, k := range keys {
			if *v != "" {
				return
			}
			*v = os.Getenv(k)
		}
	}
	fill(&cfg.Region, "AWS_REGION", "AWS_DEFAULT_REGION")
	fill(&cfg.Endpoint, "AWS_ENDPOINT_URL_S3", "AWS_ENDPOINT_URL")
	fill(&cfg.AccessKeyID, "AWS_ACCESS_KEY_ID")
	fill(&cfg.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	fill(&cfg.SessionToken, "AWS_SESSION_TOKEN")
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg
}

// loadSource reads src into one buffer using the profile's allocator.
func loadSource(ctx context.Context, prof *cli.Profile, src string) (*memory.Buffer, *memory.HeapAllocator, error) {
	loc, err := resolveLocation(prof, src)
	if err != nil {
		return nil, nil, err
	}
	defer loc.Close()

	alloc := prof.NewAllocator()
	buf, err := storage.Load(ctx, loc.store, loc.path, alloc)
	if err != nil {
		return nil, nil, err
	}
	printVerbose("loaded %s: %s in %d allocation(s)", src, cli.FormatBytes(buf.Len()), alloc.Allocations())
	return buf, alloc, nil
}

// saveDest writes buf to dest and returns where it went. A dest ending in
// "/" names a directory or key prefix; the file gets a random name.
func saveDest(ctx context.Context, prof *cli.Profile, dest string, buf *memory.Buffer) (string, error) {
	if strings.HasSuffix(dest, "/") {
		dest += uuid.NewString() + ".bin"
	}
	loc, err := resolveLocation(prof, dest)
	if err != nil {
		return "", err
	}
	defer loc.Close()

	if err := storage.Save(ctx, loc.store, loc.path, buf); err != nil {
		return "", err
	}
	slog.Debug("memio: saved", "dest", dest, "bytes", buf.Len())
	return dest, nil
}
