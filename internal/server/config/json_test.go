package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseJson(t *testing.T) {
	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"blob_backend":      "s3",
			"s3_bucket":         "bucket",
			"s3_region":         "eu-west-1",
			"presign_expiry":    int64(90 * time.Second),
			"max_upload_bytes":  1024,
			"login_rate_burst":  9,
			"unique_filenames":  true,
			"dynamodb_endpoint": "http://localhost:8000",
			"trust_proxy":       true,
		})

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "s3", cfg.BlobBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "eu-west-1", cfg.S3Region)
		assert.Equal(t, 90*time.Second, cfg.PresignExpiry)
		assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
		assert.Equal(t, 9, cfg.LoginRateBurst)
		assert.True(t, cfg.UniqueFilenames)
		assert.Equal(t, "http://localhost:8000", cfg.DynamoEndpoint)
		assert.True(t, cfg.TrustProxy)
	})

	t.Run("no config flag leaves values", func(t *testing.T) {
		cfg := &Config{S3Bucket: "keep"}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, "keep", cfg.S3Bucket)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		assert.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"presign_expiry": "later"})
		assert.Error(t, parseJson(&Config{}, []string{"-c", path}))
	})
}
