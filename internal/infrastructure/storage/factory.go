package storage

import (
	"context"
	"fmt"

	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/school/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns the storage selected by cfg.Provider. For s3 the bucket is
// created when missing.
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (appidentity.ObjectStorageService, error) {
	switch cfg.Provider {
	case "", "stub":
		logger.Info("Using stub object storage")
		return NewStubObjectStorage(), nil
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 object storage", zap.String("bucket", s.Bucket()))
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
