package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/blobstore"
	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/photos"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
)

// PhotoService implements the gallery, upload, download and delete flows
// over the metadata stores and the blob store.
type PhotoService struct {
	users  users.Repository
	photos photos.Repository
	blobs  blobstore.Store
	config *config.Config
	logger logging.Logger
}

func NewPhotoService(m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *PhotoService {
	return &PhotoService{
		users:  m.Users(),
		photos: m.Photos(),
		blobs:  blobs,
		config: cfg,
		logger: logger.With("module", "photos"),
	}
}

// Search lists photos whose description contains query (all photos for an
// empty query), each with its uploader's username. Owners that no longer
// exist are shown as common.UnknownUsername.
func (s *PhotoService) Search(ctx context.Context, query string) ([]*models.PhotoView, error) {
	found, err := s.photos.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		s.logger.Error(ctx, "photo search failed", "error", err)
		return nil, common.ErrorInternal
	}

	names := make(map[string]string)
	result := make([]*models.PhotoView, 0, len(found))
	for _, p := range found {
		name, ok := names[p.UserID]
		if !ok {
			name, err = s.username(ctx, p.UserID)
			if err != nil {
				return nil, err
			}
			names[p.UserID] = name
		}
		result = append(result, &models.PhotoView{Photo: *p, Username: name})
	}

	return result, nil
}

func (s *PhotoService) username(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return common.UnknownUsername, nil
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.UnknownUsername, nil
		}
		s.logger.Error(ctx, "owner lookup failed", "user_id", userID, "error", err)
		return "", common.ErrorInternal
	}
	return u.UserName, nil
}

// Upload stores the file under a fresh key derived from its sanitized name
// and records it as owned by owner. Names that sanitize to nothing or carry
// an extension outside the allow-set yield ErrorInvalidFile and nothing is
// stored. With unique file names disabled an upload whose name is already
// stored yields ErrorAlreadyExists; existing blobs are never replaced.
func (s *PhotoService) Upload(ctx context.Context, owner *models.User, filename string, r io.Reader, size int64, description string) (*models.Photo, error) {
	key, err := s.blobKey(filename)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, key, r, size, blobstore.ContentTypeFor(key)); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: file name %s is taken", common.ErrorAlreadyExists, key)
		}
		s.logger.Error(ctx, "blob upload failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	p, err := s.photos.Create(ctx, &models.Photo{
		Filename:    key,
		Description: strings.TrimSpace(description),
		UserID:      owner.ID,
	})
	if err != nil {
		s.logger.Error(ctx, "photo record create failed", "key", key, "error", err)
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "orphaned blob left behind", "key", key, "error", delErr)
		}
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "photo uploaded", "photo_id", p.ID, "user_id", owner.ID, "key", key)
	return p, nil
}

func (s *PhotoService) blobKey(filename string) (string, error) {
	if !s.config.IsAllowedExtension(filepath.Ext(filename)) {
		return "", fmt.Errorf("%w: extension not allowed", common.ErrorInvalidFile)
	}

	key := blobstore.SanitizeFilename(filename)
	if key == "" || !s.config.IsAllowedExtension(filepath.Ext(key)) {
		return "", fmt.Errorf("%w: unusable file name", common.ErrorInvalidFile)
	}

	if s.config.UniqueFilenames {
		key = blobstore.UniqueKey(key)
	}
	return key, nil
}

// Open returns the stored bytes of filename. The caller closes the body.
func (s *PhotoService) Open(ctx context.Context, filename string) (*models.Blob, error) {
	if filename == "" || blobstore.SanitizeFilename(filename) != filename {
		return nil, common.ErrorNotFound
	}

	b, err := s.blobs.Get(ctx, filename)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "blob download failed", "key", filename, "error", err)
		return nil, common.ErrorInternal
	}
	return b, nil
}

// RedirectsDownloads reports whether downloads are served as presigned
// URLs rather than streamed through the server.
func (s *PhotoService) RedirectsDownloads() bool {
	_, ok := s.blobs.(blobstore.Presigner)
	return ok && s.config.DownloadMode == config.DownloadRedirect
}

// DownloadURL returns a time-limited URL for filename. The object store,
// not this service, answers for keys that do not exist.
func (s *PhotoService) DownloadURL(ctx context.Context, filename string) (string, error) {
	p, ok := s.blobs.(blobstore.Presigner)
	if !ok {
		return "", fmt.Errorf("%w: blob store cannot presign", common.ErrorInternal)
	}
	if filename == "" || blobstore.SanitizeFilename(filename) != filename {
		return "", common.ErrorNotFound
	}

	u, err := p.PresignGet(ctx, filename, filename, s.config.PresignExpiry)
	if err != nil {
		s.logger.Error(ctx, "presign failed", "key", filename, "error", err)
		return "", common.ErrorInternal
	}
	return u, nil
}

// Delete removes the photo's blob and record. A missing photo is not an
// error. Unless ownership checks are disabled, only the uploader may
// delete (ErrorForbidden otherwise). Blob removal failures are logged and
// do not stop the record from being deleted.
func (s *PhotoService) Delete(ctx context.Context, actor *models.User, photoID string) error {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.logger.Error(ctx, "photo lookup failed", "photo_id", photoID, "error", err)
		return common.ErrorInternal
	}

	if s.config.RestrictDeleteToOwner && p.UserID != actor.ID {
		return common.ErrorForbidden
	}

	if err := s.blobs.Delete(ctx, p.Filename); err != nil {
		s.logger.Warn(ctx, "blob delete failed", "photo_id", p.ID, "key", p.Filename, "error", err)
	}

	if err := s.photos.Delete(ctx, p.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "photo record delete failed", "photo_id", p.ID, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "photo deleted", "photo_id", p.ID, "user_id", actor.ID)
	return nil
}
