// Package photos holds the Photo Metadata Store adapters.
package photos

import (
	"context"

	"github.com/dmitrijs2005/photoshare/internal/server/models"
)

// Repository stores photo metadata. Search with an empty query lists every
// photo; otherwise it matches query as a case-insensitive substring of the
// description. Result order is backend-defined.
type Repository interface {
	Search(ctx context.Context, query string) ([]*models.Photo, error)
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	Delete(ctx context.Context, id string) error
}
