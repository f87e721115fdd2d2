package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/flagx"
)

// Duration accepts either a Go duration string ("15m") or an integer number
// of nanoseconds when unmarshalled from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		d.Duration = time.Duration(val)
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is the on-disk shape of the configuration file. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP        string   `json:"endpoint_addr_http"`
	SecretKey               string   `json:"secret_key"`
	SessionValidityDuration Duration `json:"session_validity_duration"`

	StorageBackend    string `json:"storage_backend"`
	DatabaseDSN       string `json:"database_dsn"`
	MongoURI          string `json:"mongo_uri"`
	MongoDatabase     string `json:"mongo_database"`
	DynamoUsersTable  string `json:"dynamodb_users_table"`
	DynamoPhotosTable string `json:"dynamodb_photos_table"`
	DynamoEndpoint    string `json:"dynamodb_endpoint"`

	BlobBackend       string   `json:"blob_backend"`
	UploadDir         string   `json:"upload_dir"`
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxUploadBytes    int64    `json:"max_upload_bytes"`
	DownloadMode      string   `json:"download_mode"`
	PresignExpiry     Duration `json:"presign_expiry"`
	UniqueFilenames   *bool    `json:"unique_filenames"`

	RestrictDeleteToOwner *bool `json:"restrict_delete_to_owner"`
	SecureCookies         *bool `json:"secure_cookies"`
	TrustProxy            *bool `json:"trust_proxy"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	LoginRateLimit float64 `json:"login_rate_limit"`
	LoginRateBurst int     `json:"login_rate_burst"`
}

// parseJson overlays the file named by -c / -config (if any) onto config.
func parseJson(config *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionValidityDuration, c.SessionValidityDuration.Duration)

	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.DynamoUsersTable, c.DynamoUsersTable)
	setString(&config.DynamoPhotosTable, c.DynamoPhotosTable)
	setString(&config.DynamoEndpoint, c.DynamoEndpoint)

	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.UploadDir, c.UploadDir)
	if len(c.AllowedExtensions) > 0 {
		config.AllowedExtensions = c.AllowedExtensions
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	setString(&config.DownloadMode, c.DownloadMode)
	setDuration(&config.PresignExpiry, c.PresignExpiry.Duration)
	if c.UniqueFilenames != nil {
		config.UniqueFilenames = *c.UniqueFilenames
	}
	if c.RestrictDeleteToOwner != nil {
		config.RestrictDeleteToOwner = *c.RestrictDeleteToOwner
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.TrustProxy != nil {
		config.TrustProxy = *c.TrustProxy
	}

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	if c.LoginRateBurst > 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
