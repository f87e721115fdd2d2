package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/migrations"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends relational repositories over one pool and
// applies the embedded goose migrations in the matching dialect.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect string
	users   users.Repository
	photos  photos.Repository
	logger  logging.Logger
}

func NewPostgresRepositoryManager(db *sql.DB, logger logging.Logger) *SQLRepositoryManager {
	return &SQLRepositoryManager{
		db:      db,
		dialect: "pgx",
		users:   users.NewPostgresRepository(db),
		photos:  photos.NewPostgresRepository(db),
		logger:  logger,
	}
}

func NewSQLiteRepositoryManager(db *sql.DB, logger logging.Logger) *SQLRepositoryManager {
	return &SQLRepositoryManager{
		db:      db,
		dialect: "sqlite3",
		users:   users.NewSQLiteRepository(db),
		photos:  photos.NewSQLiteRepository(db),
		logger:  logger,
	}
}

func (m *SQLRepositoryManager) Users() users.Repository   { return m.users }
func (m *SQLRepositoryManager) Photos() photos.Repository { return m.photos }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the pool. Goose output goes to the manager's logger.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetLogger(newGooseLogger(ctx, m.logger))
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
