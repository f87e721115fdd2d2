package blobstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photoshare/internal/server/config"
)

var newMinioAPI = func(endpoint, accessKey, secretKey, region string) (minioAPI, error) {
	return NewMinioClient(endpoint, accessKey, secretKey, region)
}

// New builds the blob store selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case config.BlobLocal:
		return NewLocalStore(cfg.UploadDir)

	case config.BlobS3:
		return NewS3Store(ctx, S3Options{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3RootUser,
			SecretAccessKey: cfg.S3RootPassword,
			BaseEndpoint:    cfg.S3BaseEndpoint,
			Bucket:          cfg.S3Bucket,
		})

	case config.BlobMinio:
		client, err := newMinioAPI(cfg.S3BaseEndpoint, cfg.S3RootUser, cfg.S3RootPassword, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		s := NewMinioStore(client, cfg.S3Bucket)
		if err := s.EnsureBucket(ctx, cfg.S3Region); err != nil {
			return nil, err
		}
		return s, nil
	}

	return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}
