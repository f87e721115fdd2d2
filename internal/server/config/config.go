// Package config handles configuration for the photoshare server:
// defaults, a JSON overlay, environment variables (optionally from .env)
// and command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the Credential and Photo Metadata stores.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

// Blob store backends.
const (
	BlobLocal = "local"
	BlobS3    = "s3"
	BlobMinio = "minio"
)

// Download strategies.
const (
	DownloadStream   = "stream"
	DownloadRedirect = "redirect"
)

// Config holds runtime settings for the photoshare server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the web server.
//   - SecretKey: HMAC secret for signing session cookies. Do not use the default in prod.
//   - SessionValidityDuration: lifetime of a login session.
//   - StorageBackend: one of postgres, sqlite, mongo, dynamodb.
//   - DatabaseDSN: DSN for postgres (pgx) or the sqlite file path.
//   - MongoURI / MongoDatabase: document store connection.
//   - DynamoUsersTable / DynamoPhotosTable / DynamoEndpoint: key-value store tables.
//   - BlobBackend: one of local, s3, minio.
//   - UploadDir: directory used by the local blob store.
//   - AllowedExtensions: lower-case upload extensions without the dot.
//   - DownloadMode: stream bytes through the server or redirect to a presigned URL.
//   - UniqueFilenames: prefix stored file names with a uuid so uploads never collide.
//   - SecureCookies: mark the session cookie HTTPS-only.
//   - TrustProxy: take the client address from X-Forwarded-For / X-Real-IP.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
type Config struct {
	EndpointAddrHTTP        string
	SecretKey               string
	SessionValidityDuration time.Duration

	StorageBackend    string
	DatabaseDSN       string
	MongoURI          string
	MongoDatabase     string
	DynamoUsersTable  string
	DynamoPhotosTable string
	DynamoEndpoint    string

	BlobBackend       string
	UploadDir         string
	AllowedExtensions []string
	MaxUploadBytes    int64
	DownloadMode      string
	PresignExpiry     time.Duration
	UniqueFilenames   bool

	RestrictDeleteToOwner bool
	SecureCookies         bool
	TrustProxy            bool

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	LoginRateLimit float64
	LoginRateBurst int
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 24 * time.Hour

	c.StorageBackend = BackendSQLite
	c.DatabaseDSN = "photoshare.db"
	c.MongoURI = "mongodb://127.0.0.1:27017"
	c.MongoDatabase = "photoshare"
	c.DynamoUsersTable = "Users"
	c.DynamoPhotosTable = "Photos"

	c.BlobBackend = BlobLocal
	c.UploadDir = "static/uploads"
	c.AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}
	c.MaxUploadBytes = 32 << 20
	c.DownloadMode = DownloadStream
	c.PresignExpiry = time.Hour
	c.UniqueFilenames = true

	c.RestrictDeleteToOwner = true

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "photos"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"

	c.LoginRateLimit = 1
	c.LoginRateBurst = 5
}

// Load builds a Config from defaults, then the JSON file named by -c/-config
// in args, then the environment, then the remaining flags in args.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads .env (if present) and builds the Config from the process
// arguments and environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.Args[1:], os.LookupEnv)
}

func (c *Config) normalize() {
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, e := range c.AllowedExtensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(exts, e) {
			exts = append(exts, e)
		}
	}
	c.AllowedExtensions = exts
	c.StorageBackend = strings.ToLower(c.StorageBackend)
	c.BlobBackend = strings.ToLower(c.BlobBackend)
	c.DownloadMode = strings.ToLower(c.DownloadMode)
}

// Validate reports the first configuration value that cannot work.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres, BackendSQLite, BackendMongo, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	switch c.BlobBackend {
	case BlobLocal, BlobS3, BlobMinio:
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
	switch c.DownloadMode {
	case DownloadStream, DownloadRedirect:
	default:
		return fmt.Errorf("unknown download mode %q", c.DownloadMode)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed extension is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.SessionValidityDuration <= 0 {
		return fmt.Errorf("session validity must be positive")
	}
	return nil
}

// IsAllowedExtension reports whether ext (with or without the leading dot)
// is in the configured allow-set, ignoring case.
func (c *Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return ext != "" && slices.Contains(c.AllowedExtensions, ext)
}
