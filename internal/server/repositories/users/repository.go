// Package users implements the Credential Store over the supported
// backends. Every implementation returns common.ErrorNotFound for missing
// users and common.ErrorAlreadyExists when the backend itself detects a
// duplicate username.
package users

import (
	"context"

	"github.com/dmitrijs2005/photoshare/internal/server/models"
)

type Repository interface {
	// Create stores user, assigning ID and CreatedAt when empty.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
