package blobstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Local(t *testing.T) {
	cfg := &config.Config{BlobBackend: config.BlobLocal, UploadDir: filepath.Join(t.TempDir(), "up")}

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)
}

func TestNew_MinioEnsuresBucket(t *testing.T) {
	orig := newMinioAPI
	t.Cleanup(func() { newMinioAPI = orig })

	api := &fakeMinio{}
	newMinioAPI = func(endpoint, accessKey, secretKey, region string) (minioAPI, error) {
		assert.Equal(t, "http://127.0.0.1:9000/", endpoint)
		return api, nil
	}

	cfg := &config.Config{BlobBackend: config.BlobMinio, S3BaseEndpoint: "http://127.0.0.1:9000/", S3Bucket: "photos"}
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioStore{}, s)
	assert.Equal(t, []string{"photos"}, api.made)

	var _ Presigner = s.(*MinioStore)
}

func TestNew_MinioClientError(t *testing.T) {
	orig := newMinioAPI
	t.Cleanup(func() { newMinioAPI = orig })
	newMinioAPI = func(endpoint, accessKey, secretKey, region string) (minioAPI, error) {
		return nil, errors.New("bad endpoint")
	}

	_, err := New(context.Background(), &config.Config{BlobBackend: config.BlobMinio})
	assert.ErrorContains(t, err, "bad endpoint")
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(context.Background(), &config.Config{BlobBackend: "ftp"})
	assert.ErrorContains(t, err, "unknown blob backend")
}
