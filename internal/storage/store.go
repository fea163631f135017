// Package storage keeps uploaded grievance images in a blob store.  Two
// backends exist: a local directory and an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/fair-rice-portal/internal/config"
)

// ErrNotFound is returned by Get when no blob has the given name.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidName is returned for names that could escape the store root.
var ErrInvalidName = errors.New("invalid blob name")

// Store persists blobs under flat names.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// ValidName rejects empty names and names containing path separators or
// parent references.
func ValidName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
