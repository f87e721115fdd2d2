package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/flagx"
)

// parseEnv overlays environment variables onto config. The AWS and bucket
// names match the ones used by the previous deployment's .env files.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("SECRET_KEY", &config.SecretKey)

	str("STORAGE_BACKEND", &config.StorageBackend)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("MONGO_URI", &config.MongoURI)
	str("MONGO_DATABASE", &config.MongoDatabase)
	str("DYNAMODB_USERS_TABLE", &config.DynamoUsersTable)
	str("DYNAMODB_PHOTOS_TABLE", &config.DynamoPhotosTable)
	str("DYNAMODB_ENDPOINT", &config.DynamoEndpoint)

	str("BLOB_BACKEND", &config.BlobBackend)
	str("UPLOAD_DIR", &config.UploadDir)
	str("DOWNLOAD_MODE", &config.DownloadMode)

	str("AWS_ACCESS_KEY_ID", &config.S3RootUser)
	str("AWS_SECRET_ACCESS_KEY", &config.S3RootPassword)
	str("S3_BUCKET_NAME", &config.S3Bucket)
	str("AWS_REGION_NAME", &config.S3Region)
	// An empty S3_ENDPOINT selects the AWS regional endpoint.
	if v, ok := lookup("S3_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}

	if v, ok := lookup("ALLOWED_EXTENSIONS"); ok && v != "" {
		config.AllowedExtensions = flagx.SplitList(v)
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_TTL", &config.SessionValidityDuration},
		{"PRESIGN_EXPIRY", &config.PresignExpiry},
	} {
		if v, ok := lookup(d.key); ok && v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"UNIQUE_FILENAMES", &config.UniqueFilenames},
		{"RESTRICT_DELETE", &config.RestrictDeleteToOwner},
		{"SECURE_COOKIES", &config.SecureCookies},
		{"TRUST_PROXY", &config.TrustProxy},
	} {
		if v, ok := lookup(b.key); ok && v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", b.key, err)
			}
			*b.dst = parsed
		}
	}

	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("env MAX_UPLOAD_BYTES: %w", err)
		}
		config.MaxUploadBytes = n
	}
	if v, ok := lookup("LOGIN_RATE"); ok && v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("env LOGIN_RATE: %w", err)
		}
		config.LoginRateLimit = n
	}
	if v, ok := lookup("LOGIN_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env LOGIN_BURST: %w", err)
		}
		config.LoginRateBurst = n
	}

	return nil
}
