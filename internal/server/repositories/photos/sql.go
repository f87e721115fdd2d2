package photos

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
	insert string
	list   string
	search string
	byID   string
	delete string
}

var postgresQueries = queries{
	insert: `INSERT INTO photos (id, filename, description, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
	list: `SELECT id, filename, description, user_id, created_at FROM photos
		 ORDER BY created_at DESC, id`,
	search: `SELECT id, filename, description, user_id, created_at FROM photos
		 WHERE description ILIKE $1 ESCAPE '\'
		 ORDER BY created_at DESC, id`,
	byID: `SELECT id, filename, description, user_id, created_at FROM photos
		 WHERE id = $1`,
	delete: `DELETE FROM photos WHERE id = $1`,
}

// SQLite LIKE is case-insensitive for ASCII only.
var sqliteQueries = queries{
	insert: `INSERT INTO photos (id, filename, description, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	list: `SELECT id, filename, description, user_id, created_at FROM photos
		 ORDER BY created_at DESC, id`,
	search: `SELECT id, filename, description, user_id, created_at FROM photos
		 WHERE description LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, id`,
	byID: `SELECT id, filename, description, user_id, created_at FROM photos
		 WHERE id = ?`,
	delete: `DELETE FROM photos WHERE id = ?`,
}

// SQLRepository stores photos in the relational "photos" table. Listings
// are newest first.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) Search(ctx context.Context, query string) ([]*models.Photo, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = r.db.QueryContext(ctx, r.q.list)
	} else {
		rows, err = r.db.QueryContext(ctx, r.q.search, "%"+dbx.EscapeLike(query)+"%")
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Photo, 0)
	for rows.Next() {
		p := &models.Photo{}
		if err := rows.Scan(&p.ID, &p.Filename, &p.Description, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	p := *photo
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.q.insert, p.ID, p.Filename, p.Description, p.UserID, p.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &p, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	p := &models.Photo{}
	err := r.db.QueryRowContext(ctx, r.q.byID, id).Scan(&p.ID, &p.Filename, &p.Description, &p.UserID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q.delete, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
