package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	args := []string{
		"-c", "ignored.json",
		"-a", "127.0.0.1:9090", "-s", "secret", "-t", "30",
		"-k", "mongo", "-d", "db", "-m", "mongodb://mongo:27017",
		"-o", "minio", "-f", "/srv/uploads", "-x", "png,webp",
		"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
	}

	cfg := &Config{}
	require.NoError(t, parseFlags(cfg, args))

	want := &Config{
		EndpointAddrHTTP:        "127.0.0.1:9090",
		SecretKey:               "secret",
		SessionValidityDuration: 30 * time.Minute,
		StorageBackend:          "mongo",
		DatabaseDSN:             "db",
		MongoURI:                "mongodb://mongo:27017",
		BlobBackend:             "minio",
		UploadDir:               "/srv/uploads",
		AllowedExtensions:       []string{"png", "webp"},
		S3RootUser:              "user",
		S3RootPassword:          "password",
		S3Bucket:                "bucket",
		S3Region:                "us-west-1",
		S3BaseEndpoint:          "http://endpoint",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseFlags_UnsetKeepsValues(t *testing.T) {
	cfg := &Config{SessionValidityDuration: 90 * time.Second, AllowedExtensions: []string{"gif"}}
	require.NoError(t, parseFlags(cfg, nil))

	assert.Equal(t, 90*time.Second, cfg.SessionValidityDuration)
	assert.Equal(t, []string{"gif"}, cfg.AllowedExtensions)
}

func TestParseFlags_BadValue(t *testing.T) {
	assert.Error(t, parseFlags(&Config{}, []string{"-t", "soon"}))
}
