package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Fixed limits that are not exposed through the environment.
const (
	CacheMaxEntries = 100
	PreloadCount    = 10
	DebounceWindow  = 5 * time.Second
)

type Config struct {
	Port             string `env:"PORT" envDefault:"3000"`
	ImagesDirectory  string `env:"IMAGES_DIRECTORY" envDefault:"public/images/images"`
	PublicDirectory  string `env:"PUBLIC_DIRECTORY" envDefault:"public"`
	CacheTTLMillis   int64  `env:"CACHE_TTL" envDefault:"3600000"`
	IndexConcurrency int    `env:"INDEX_CONCURRENCY" envDefault:"8"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`

	Storage StorageConfig `envPrefix:"S3_"`
}

// StorageConfig describes the optional bucket mirrored into the images directory.
type StorageConfig struct {
	Endpoint        string        `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKeyID     string        `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretAccessKey string        `env:"SECRET_KEY" envDefault:"minioadmin"`
	UseSSL          bool          `env:"USE_SSL" envDefault:"false"`
	Region          string        `env:"REGION" envDefault:"us-east-1"`
	Bucket          string        `env:"BUCKET"`
	Prefix          string        `env:"PREFIX"`
	SyncInterval    time.Duration `env:"SYNC_INTERVAL" envDefault:"5m"`
}

// Enabled reports whether a bucket has been configured for mirroring.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CacheTTLMillis <= 0 {
		return errors.New("CACHE_TTL must be a positive number of milliseconds")
	}
	if c.IndexConcurrency <= 0 {
		return errors.New("INDEX_CONCURRENCY must be positive")
	}
	if c.Storage.Enabled() && c.Storage.SyncInterval <= 0 {
		return errors.New("S3_SYNC_INTERVAL must be positive")
	}
	return nil
}

// CacheTTL is the lifetime of a processed image in the store.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMillis) * time.Millisecond
}

// ImagesPath resolves ImagesDirectory against the working directory.
func (c *Config) ImagesPath() (string, error) {
	return resolve(c.ImagesDirectory)
}

// PublicPath resolves PublicDirectory against the working directory.
func (c *Config) PublicPath() (string, error) {
	return resolve(c.PublicDirectory)
}

func resolve(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}
