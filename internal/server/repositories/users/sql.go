package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/dbx"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/google/uuid"
)

type queries struct {
	insert  string
	byLogin string
	byID    string
}

var postgresQueries = queries{
	insert: `INSERT INTO users (id, username, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
	byLogin: `SELECT id, username, password_hash, created_at FROM users
		 WHERE username = $1`,
	byID: `SELECT id, username, password_hash, created_at FROM users
		 WHERE id = $1`,
}

var sqliteQueries = queries{
	insert: `INSERT INTO users (id, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
	byLogin: `SELECT id, username, password_hash, created_at FROM users
		 WHERE username = ?`,
	byID: `SELECT id, username, password_hash, created_at FROM users
		 WHERE id = ?`,
}

// SQLRepository stores users in the relational "users" table.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

// NewPostgresRepository returns a repository using PostgreSQL placeholders.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

// NewSQLiteRepository returns a repository using SQLite placeholders.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.q.insert, u.ID, u.UserName, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &u, nil
}

func (r *SQLRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, r.q.byLogin, userName)
}

func (r *SQLRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, r.q.byID, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.UserName, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
