package repomanager

import (
	"context"

	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
)

// DynamoRepositoryManager vends key-value repositories. Tables are
// provisioned outside the application.
type DynamoRepositoryManager struct {
	users  users.Repository
	photos photos.Repository
}

func NewDynamoRepositoryManager(api dynamox.API, usersTable, photosTable string) *DynamoRepositoryManager {
	return &DynamoRepositoryManager{
		users:  users.NewDynamoRepository(api, usersTable),
		photos: photos.NewDynamoRepository(api, photosTable),
	}
}

func (m *DynamoRepositoryManager) Users() users.Repository   { return m.users }
func (m *DynamoRepositoryManager) Photos() photos.Repository { return m.photos }

func (m *DynamoRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *DynamoRepositoryManager) Close(context.Context) error { return nil }
