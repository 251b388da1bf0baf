package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage stores uploaded media such as avatars.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the content with the given key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL clients use to fetch the content.
	PublicURL(key string) string

	// KeyFromURL reverses PublicURL. It reports false for URLs this storage
	// did not produce.
	KeyFromURL(url string) (string, bool)
}

// Config selects the storage backend.
type Config struct {
	Driver string // local, s3
	Local  LocalConfig
	S3     S3Config
}

// New builds the configured storage backend.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.Local)
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
