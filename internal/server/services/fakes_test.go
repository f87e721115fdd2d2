package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- in-memory fakes ---

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	lookupErr error
	createErr error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, x := range m.byID {
		if x.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	m.byID[c.ID] = &c
	return &c, nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, x := range m.byID {
		if x.UserName == name {
			return x, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memPhotos struct {
	mu        sync.Mutex
	byID      map[string]*models.Photo
	createErr error
	deleteErr error
}

func newMemPhotos() *memPhotos { return &memPhotos{byID: map[string]*models.Photo{}} }

func (m *memPhotos) Search(ctx context.Context, q string) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Photo
	for _, p := range m.byID {
		if q == "" || strings.Contains(strings.ToLower(p.Description), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPhotos) Create(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	c := *p
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	m.byID[c.ID] = &c
	return &c, nil
}

func (m *memPhotos) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memPhotos) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type memBlobs struct {
	mu        sync.Mutex
	data      map[string][]byte
	types     map[string]string
	deleteErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return common.ErrorAlreadyExists
	}
	m.data[key], m.types[key] = b, ct
	return nil
}

func (m *memBlobs) Get(ctx context.Context, key string) (*models.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Blob{Body: io.NopCloser(bytes.NewReader(b)), ContentType: m.types[key], ContentLength: int64(len(b))}, nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.data[key]; !ok {
		return common.ErrorNotFound
	}
	delete(m.data, key)
	return nil
}

type presigningBlobs struct {
	*memBlobs
	expiry time.Duration
}

func (p *presigningBlobs) PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	p.expiry = expiry
	return "https://bucket.example/" + key + "?sig=x", nil
}

type fakeManager struct {
	users  users.Repository
	photos photos.Repository
}

func (f *fakeManager) Users() users.Repository             { return f.users }
func (f *fakeManager) Photos() photos.Repository           { return f.photos }
func (f *fakeManager) RunMigrations(context.Context) error { return nil }
func (f *fakeManager) Close(context.Context) error         { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type fixture struct {
	users  *memUsers
	photos *memPhotos
	blobs  *memBlobs
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{users: newMemUsers(), photos: newMemPhotos(), blobs: newMemBlobs(), cfg: testConfig()}
}

func (f *fixture) manager() *fakeManager {
	return &fakeManager{users: f.users, photos: f.photos}
}
