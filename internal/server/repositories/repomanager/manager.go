// Package repomanager selects and wires the Credential and Photo Metadata
// store adapters for the configured backend.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photoshare/internal/dbx"
	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
)

// RepositoryManager owns the backend connection and vends the repositories
// built on it.
type RepositoryManager interface {
	Users() users.Repository
	Photos() photos.Repository
	// RunMigrations prepares the backend schema (tables or indexes).
	RunMigrations(ctx context.Context) error
	Close(ctx context.Context) error
}

// New connects to the backend named by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := dbx.Open(ctx, dbx.DriverPostgres, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db, logger), nil

	case config.BackendSQLite:
		db, err := dbx.Open(ctx, dbx.DriverSQLite, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositoryManager(db, logger), nil

	case config.BackendMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)

	case config.BackendDynamoDB:
		client, err := newDynamoClient(ctx, dynamox.Options{
			Region:          cfg.S3Region,
			Endpoint:        cfg.DynamoEndpoint,
			AccessKeyID:     cfg.S3RootUser,
			SecretAccessKey: cfg.S3RootPassword,
		})
		if err != nil {
			return nil, err
		}
		return NewDynamoRepositoryManager(client, cfg.DynamoUsersTable, cfg.DynamoPhotosTable), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

var newDynamoClient = func(ctx context.Context, opts dynamox.Options) (dynamox.API, error) {
	return dynamox.NewClient(ctx, opts)
}
