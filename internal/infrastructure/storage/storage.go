// Package storage provides object storage for dashboard exports.
package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	infraconfig "github.com/bizportal/backend/internal/infrastructure/config"
)

// ErrObjectNotFound is returned by Get when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage stores opaque blobs under slash-separated keys
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a link a client can fetch the object from.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// New returns S3 storage when enabled and a local directory store otherwise.
func New(cfg *infraconfig.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Object storage disabled, writing exports locally", zap.String("dir", cfg.LocalDir))
		return NewLocalStorage(cfg.LocalDir)
	}
	return NewS3ObjectStorage(cfg, WithLogger(logger))
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	return nil
}
