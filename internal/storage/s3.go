package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/config"
)

// NewMinioClient builds a client for the configured endpoint.
func NewMinioClient(cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return client, nil
}

// Syncer mirrors supported images from a bucket prefix into a local
// directory. It only adds or replaces files; it never deletes local ones.
type Syncer struct {
	client *minio.Client
	bucket string
	prefix string
	dir    string
	log    zerolog.Logger
}

func NewSyncer(client *minio.Client, cfg config.StorageConfig, dir string, log zerolog.Logger) *Syncer {
	return &Syncer{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		dir:    dir,
		log:    log.With().Str("component", "bucket_sync").Str("bucket", cfg.Bucket).Logger(),
	}
}

// Sync downloads every object that is missing locally or differs in size,
// and returns how many files were written.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create image directory: %w", err)
	}

	downloaded := 0
	claimed := make(map[string]string)
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true})
	for obj := range objects {
		if obj.Err != nil {
			return downloaded, fmt.Errorf("failed to list bucket objects: %w", obj.Err)
		}
		local, ok := localName(obj.Key)
		if !ok {
			continue
		}
		// keys are flattened, so the first key listed owns the name
		if owner, taken := claimed[local]; taken {
			s.log.Warn().Str("key", obj.Key).Str("owner", owner).Str("file", local).Msg("skipping object with duplicate file name")
			continue
		}
		claimed[local] = obj.Key
		target := filepath.Join(s.dir, local)
		if upToDate(target, obj.Size) {
			continue
		}
		if err := s.client.FGetObject(ctx, s.bucket, obj.Key, target, minio.GetObjectOptions{}); err != nil {
			s.log.Warn().Err(err).Str("key", obj.Key).Msg("failed to download object")
			continue
		}
		downloaded++
	}
	return downloaded, nil
}

// Run syncs immediately and then every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		n, err := s.Sync(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error().Err(err).Msg("bucket sync failed")
		} else if n > 0 {
			s.log.Info().Int("downloaded", n).Dur("duration", time.Since(start)).Msg("bucket sync completed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// localName flattens an object key to a file name inside the image directory
// and reports whether the object is an indexable image.
func localName(key string) (string, bool) {
	name := path.Base(key)
	if name == "." || name == "/" || name == ".." || !catalog.IsSupported(name) {
		return "", false
	}
	return name, true
}

func upToDate(target string, size int64) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() == size
}
